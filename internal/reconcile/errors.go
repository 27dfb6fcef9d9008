package reconcile

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex   = errors.New("invalid index")
	ErrDecode         = errors.New("decode error")
	ErrAlreadyMutated = errors.New("local state already mutated")
)

// IndexError reports an index outside [0, Len). Index is 0-based. Len is negative when the
// index was rejected before the list was known.
type IndexError struct {
	Target string // "item" or "category"
	Index  int
	Len    int
}

func (e *IndexError) Error() string {
	if e.Len < 0 {
		return fmt.Sprintf("invalid %s index: %d (indexes start at 1)", e.Target, e.Index+1)
	}
	return fmt.Sprintf("invalid %s index: have %d, got %d", e.Target, e.Len, e.Index+1)
}

func (e *IndexError) Is(target error) bool { return target == ErrInvalidIndex }

type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
