package httpapi

const (
	ErrInvalidJSON = "invalid json"
	ErrBadForm     = "bad form"
	ErrNoFile      = "no file uploaded"
)
