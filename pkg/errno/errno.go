package errno

import (
	"errors"
	"fmt"
)

// BizError carries a business code alongside the causing error so that the
// HTTP layer can map failures to a stable code while preserving the chain.
type BizError struct {
	errno *Errno
	cause error
}

func NewBizError(errno *Errno, cause error) *BizError {
	return &BizError{errno: errno, cause: cause}
}

func (e *BizError) Error() string {
	if e.cause == nil {
		return e.errno.Message
	}
	return fmt.Sprintf("%s: %v", e.errno.Message, e.cause)
}

func (e *BizError) Errno() *Errno {
	return e.errno
}

func (e *BizError) Unwrap() error {
	return e.cause
}

func (e *BizError) Is(target error) bool {
	if t, ok := target.(*Errno); ok {
		return e.errno == t
	}
	if t, ok := target.(*BizError); ok {
		return e.errno == t.errno
	}
	return false
}

// DecodeError extracts the business code and message from an error chain,
// falling back to ErrUnknown for plain errors.
func DecodeError(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}
	var biz *BizError
	if errors.As(err, &biz) {
		return biz.errno.Code, biz.Error()
	}
	var typed *Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Message
	}
	return ErrUnknown.Code, err.Error()
}
