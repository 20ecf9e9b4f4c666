package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a stable 64-bit digest rendered as hex.
type Fingerprint string

// NewFingerprint digests data with xxhash.
func NewFingerprint(data []byte) Fingerprint {
	return Fingerprint(fmt.Sprintf("%016x", xxhash.Sum64(data)))
}

func (f Fingerprint) String() string { return string(f) }

// IsEmpty checks if the fingerprint is empty
func (f Fingerprint) IsEmpty() bool { return f == "" }

// FingerprintFields digests name=value pairs in the given order. Floats are
// formatted with the shortest round-tripping representation so equal inputs
// always produce the same digest.
func FingerprintFields(fields ...Field) Fingerprint {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		switch v := f.Value.(type) {
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return NewFingerprint([]byte(b.String()))
}

// Field is a named value fed into FingerprintFields.
type Field struct {
	Name  string
	Value interface{}
}
