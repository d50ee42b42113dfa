// Package errors provides the error model for protogen. It includes all of the stdlib's
// functions and types, a Category/Type classification built on github.com/gostdlib/base/errors
// and the sentinel errors returned by the codec and schema packages.
package errors

import (
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/errors"
)

// Category represents the category of the error.
type Category uint32

func (c Category) Category() string {
	return c.String()
}

func (c Category) String() string {
	switch c {
	case CatUser:
		return "User"
	case CatInternal:
		return "Internal"
	}
	return "Unknown"
}

const (
	// CatUnknown represents an unknown category. This should not be used.
	CatUnknown Category = Category(0) // Unknown
	// CatUser represents an error that is caused by bad input, such as a truncated packet
	// or a value the caller supplied that does not fit the structure.
	CatUser Category = Category(1) // User
	// CatInternal represents an internal error.
	CatInternal Category = Category(2) // Internal
)

// Type represents the type of the error.
type Type uint16

func (t Type) Type() string {
	return t.String()
}

func (t Type) String() string {
	switch t {
	case TypeBug:
		return "Bug"
	case TypeParameter:
		return "Parameter"
	case TypeBufferTooShort:
		return "BufferTooShort"
	case TypeConstantMismatch:
		return "ConstantMismatch"
	case TypeBounds:
		return "Bounds"
	case TypeValue:
		return "Value"
	case TypeSchema:
		return "Schema"
	case TypeFS:
		return "FS"
	}
	return "Unknown"
}

const (
	// TypeUnknown represents an unknown type.
	TypeUnknown Type = Type(0) // Unknown
	// TypeBug represents a bug in the calling code. An example would be a switch statement that
	// doesn't cover all cases. The default case should return an error of this type.
	TypeBug Type = Type(1) // Bug
	// TypeParameter represents an error with a parameter that didn't pass validation.
	TypeParameter Type = Type(2) // Parameter
	// TypeFS represents an error with the file system.
	TypeFS Type = Type(5) // FS

	// TypeBufferTooShort is a decode of a buffer shorter than the structure's minimum length.
	TypeBufferTooShort Type = Type(100) // BufferTooShort
	// TypeConstantMismatch is a constant field that decoded to a value other than its constant.
	TypeConstantMismatch Type = Type(101) // ConstantMismatch
	// TypeBounds is a read or write past the end of a buffer. Given correct length
	// computation this is an internal consistency failure.
	TypeBounds Type = Type(102) // Bounds
	// TypeValue is an in-memory value that does not match the field it was set on.
	TypeValue Type = Type(103) // Value
	// TypeSchema is a field tree that could not be built.
	TypeSchema Type = Type(104) // Schema
)

// LogAttrer is an interface that can be implemented by an error to return a list of attributes
// used in logging.
type LogAttrer = errors.LogAttrer

// Error is the error type for this module. Error implements github.com/gostdlib/base/errors.E .
type Error = errors.Error

// EOption is an optional argument for E().
type EOption = errors.EOption

// WithCallNum is used if you need to set the runtime.CallNum() in order to get the correct filename and line.
// This can happen if you create a call wrapper around E(), because you would then need to look up one more stack frame
// for every wrapper. This defaults to 1 which sets to the frame of the caller of E().
func WithCallNum(i int) EOption {
	return errors.WithCallNum(i)
}

// WithStackTrace will add a stack trace to the error. This is not recommended for decode
// failures on hot paths.
func WithStackTrace() EOption {
	return errors.WithStackTrace()
}

// E creates a new Error with the given parameters.
func E(ctx context.Context, c errors.Category, t errors.Type, msg error, options ...errors.EOption) Error {
	// We are a wrapper, so the call number is one deeper. If the caller sets it, theirs wins.
	opts := make([]errors.EOption, 0, len(options)+1)
	opts = append(opts, WithCallNum(2))
	opts = append(opts, options...)

	return errors.E(ctx, c, t, msg, opts...)
}
