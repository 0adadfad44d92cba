package store

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidName       = errors.New("invalid instance name")
	ErrNameCollision     = errors.New("instance name collision")
	ErrAlreadyInstalled  = errors.New("instance already installed")
	ErrInstanceNotFound  = errors.New("instance not found")
	ErrCorruptSelection  = errors.New("corrupt selection")
	ErrIO                = errors.New("io error")
	ErrUnsupportedSource = errors.New("unsupported source")
)

// Error is a coded registry failure. Code is the stable machine-readable
// prefix printed to users, Kind is one of the Err* sentinels above.
type Error struct {
	Code string
	Kind error
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return e.Code + ": " + msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewError(code string, kind error, path, msg string, err error) *Error {
	return &Error{Code: code, Kind: kind, Path: path, Msg: msg, Err: err}
}

// IOError wraps a filesystem failure.
func IOError(code, path string, err error) *Error {
	return &Error{Code: code, Kind: ErrIO, Path: path, Msg: "filesystem operation failed", Err: err}
}
