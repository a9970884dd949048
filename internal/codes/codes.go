package codes

import (
	"errors"

	errs "github.com/bdlm/errors"
	std "github.com/bdlm/std/error"
)

const (
	// ErrUnspecified - 1000: The error code was unspecified
	ErrUnspecified std.Code = iota + 1000
	// ErrTraceEmpty - 1001: The input contained no stack trace
	ErrTraceEmpty
	// ErrTraceMalformed - 1002: The stack trace could not be parsed
	ErrTraceMalformed
	// ErrUnknownFormat - 1003: No trace format matched the input
	ErrUnknownFormat
	// ErrConfigInvalid - 1004: The project config file is invalid
	ErrConfigInvalid
	// ErrPackageNotFound - 1005: No application package could be determined
	ErrPackageNotFound
)

func init() {
	errs.Codes[ErrUnspecified] = errs.ErrCode{Ext: "An unknown error occurred", Int: "An unknown error occurred", HTTP: 500}
	errs.Codes[ErrTraceEmpty] = errs.ErrCode{Ext: "No stack trace found", Int: "The input contained no stack trace", HTTP: 400}
	errs.Codes[ErrTraceMalformed] = errs.ErrCode{Ext: "Malformed stack trace", Int: "The stack trace could not be parsed", HTTP: 400}
	errs.Codes[ErrUnknownFormat] = errs.ErrCode{Ext: "Unknown trace format", Int: "No trace format matched the input", HTTP: 400}
	errs.Codes[ErrConfigInvalid] = errs.ErrCode{Ext: "Invalid configuration", Int: "The project config file is invalid", HTTP: 500}
	errs.Codes[ErrPackageNotFound] = errs.ErrCode{Ext: "Application package not found", Int: "No application package could be determined", HTTP: 400}
}

type coded interface {
	Code() std.Code
}

// Is reports whether the first coded error in err's chain carries code.
func Is(err error, code std.Code) bool {
	var c coded
	if !errors.As(err, &c) {
		return false
	}
	return c.Code() == code
}
