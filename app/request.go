package app

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"dbsinterval/domain/core"
	"dbsinterval/domain/interval"
	"dbsinterval/internal/errors"
	"dbsinterval/ports"
)

// DefaultRequest returns the initial calculator state for a variant.
func DefaultRequest(variant interval.Variant) EvaluationRequest {
	return EvaluationRequest{Params: interval.DefaultParameters(), Variant: variant}
}

// RequestFromQuery overlays query values on base. Absent keys keep the base
// value. A confidence label takes precedence over a raw z value.
func RequestFromQuery(values url.Values, base EvaluationRequest) (EvaluationRequest, error) {
	req := base

	if name := values.Get(interval.KeyVariant); name != "" {
		v, err := interval.ParseVariant(name)
		if err != nil {
			return req, errors.Wrap(err, "invalid variant")
		}
		req.Variant = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{interval.KeyZ, &req.Params.Z},
		{interval.KeyTEa, &req.Params.TEa},
		{interval.KeyBias, &req.Params.Bias},
		{interval.KeyCV, &req.Params.CV},
		{interval.KeyFactor, &req.Params.Factor},
		{interval.KeyReference, &req.Params.ReferenceSize},
	}
	for _, f := range floats {
		raw := strings.TrimSpace(values.Get(f.key))
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, errors.Wrap(core.NewValidationError(f.key, fmt.Sprintf("is not a number: %q", raw)), "invalid query")
		}
		*f.dst = n
	}

	if label := values.Get(interval.KeyConfidence); label != "" {
		lvl, ok := interval.LookupConfidence(label)
		if !ok {
			return req, errors.Wrap(core.NewValidationError(interval.KeyConfidence, fmt.Sprintf("unknown level %q", label)), "invalid query")
		}
		req.Params.Z = lvl.Z
	}
	return req, nil
}

// Query encodes req back into query values.
func (r EvaluationRequest) Query() url.Values {
	format := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	v := url.Values{}
	v.Set(interval.KeyVariant, r.Variant.Name)
	v.Set(interval.KeyZ, format(r.Params.Z))
	v.Set(interval.KeyTEa, format(r.Params.TEa))
	v.Set(interval.KeyBias, format(r.Params.Bias))
	v.Set(interval.KeyCV, format(r.Params.CV))
	v.Set(interval.KeyFactor, format(r.Params.Factor))
	v.Set(interval.KeyReference, format(r.Params.ReferenceSize))
	return v
}

// ParseChartFormat accepts "png" or "svg".
func ParseChartFormat(s string) (ports.ChartFormat, error) {
	switch f := ports.ChartFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ports.ChartPNG, ports.ChartSVG:
		return f, nil
	case "":
		return ports.ChartPNG, nil
	}
	return "", errors.Wrap(fmt.Errorf("%w: %q", core.ErrUnknownFormat, s), "invalid chart format")
}

// ParseExportFormat accepts "xlsx" or "csv".
func ParseExportFormat(s string) (ports.ExportFormat, error) {
	switch f := ports.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ports.ExportXLSX, ports.ExportCSV:
		return f, nil
	case "":
		return ports.ExportXLSX, nil
	}
	return "", errors.Wrap(fmt.Errorf("%w: %q", core.ErrUnknownFormat, s), "invalid export format")
}

// ETag identifies a response body rendered from r in the given output
// format. It is quoted for direct use in an HTTP header. Workbooks carry a
// fresh evaluation id and timestamp, so their tag is weak.
func (r EvaluationRequest) ETag(format string) string {
	tag := fmt.Sprintf(`"%s-%s"`, r.Params.Fingerprint(r.Variant), format)
	if format == string(ports.ExportXLSX) {
		return "W/" + tag
	}
	return tag
}

// MatchesETag reports whether an If-None-Match header names etag. The
// comparison is weak and the "*" wildcard is not honoured.
func MatchesETag(ifNoneMatch, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		t := strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if t != "" && t == want {
			return true
		}
	}
	return false
}
