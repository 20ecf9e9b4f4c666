package interval

// Parameter names shared by query strings, CLI flags and exported workbooks.
const (
	KeyVariant    = "variant"
	KeyConfidence = "confidence"
	KeyZ          = "z"
	KeyTEa        = "tea"
	KeyBias       = "bias"
	KeyCV         = "cv"
	KeyFactor     = "factor"
	KeyReference  = "reference"
)
