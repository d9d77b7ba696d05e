// Package errs defines the error taxonomy shared by the dataset, chart and
// reduction packages. Callers match with errors.Is; every sentinel is wrapped
// with context at the failure site.
package errs

import "errors"

var (
	// ErrUnknownStrategy reports an unrecognized chart kind or reduction method name.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrMissingParameter reports a required plot parameter that was not supplied.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrMissingColumn reports a column name that is not present in the dataset.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidArgument reports an argument that is present but unusable
	// (fill method without fill value, n_components larger than the feature count).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCapacityExceeded reports more distinct categories than available palette colors.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrUnsupportedFileType reports a file extension no reader handles.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrReductionFailed reports numerical failure inside PCA or UMAP.
	ErrReductionFailed = errors.New("reduction failed")
)
