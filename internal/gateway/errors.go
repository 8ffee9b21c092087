package gateway

import "errors"

var (
	ErrMissingPathParameter     = errors.New("missing path parameter")
	ErrInvalidPathParameterType = errors.New("invalid path parameter type")
	ErrInvalidBase64            = errors.New("invalid base64 string")
	ErrNameParseMismatch        = errors.New("name does not match pattern")
)
