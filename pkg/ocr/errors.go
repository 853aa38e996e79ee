package ocr

import "errors"

// ErrAllPassesFailed is returned by Fuse when the engine failed on every variant.
var ErrAllPassesFailed = errors.New("all ocr passes failed")
