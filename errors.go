package offerdeck

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the editing session, the export pipeline and the
// adapters around them.
var (
	ErrBusy         = errors.New("offerdeck: operation already in flight")
	ErrAIDisabled   = errors.New("offerdeck: AI features are disabled (no credential configured)")
	ErrExport       = errors.New("offerdeck: export failed")
	ErrPageSize     = errors.New("offerdeck: page surface does not match the output page size")
	ErrInvalidParam = errors.New("offerdeck: invalid parameter")
	ErrNoPages      = errors.New("offerdeck: layout produced no pages")
)

// OpError represents an error that occurred during a specific operation.
// It wraps an underlying error and includes the operation name for context.
type OpError struct {
	Op   string // operation name, e.g. "export", "autofill"
	Page int    // 1-based page number, 0 when not page specific
	Err  error  // underlying error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("offerdeck.%s: unknown error", e.Op)
	}
	if e.Page > 0 {
		return fmt.Sprintf("offerdeck.%s: page %d: %v", e.Op, e.Page, e.Err)
	}
	return fmt.Sprintf("offerdeck.%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError wrapping the given error with operation context.
func NewOpError(op string, page int, err error) *OpError {
	return &OpError{Op: op, Page: page, Err: err}
}
