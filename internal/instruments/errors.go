package instruments

import "errors"

var (
	// ErrUnknownPatch indicates a patch name missing from the registry.
	ErrUnknownPatch = errors.New("instruments: unknown patch")

	// ErrUnknownParam indicates a parameter the patch does not expose.
	ErrUnknownParam = errors.New("instruments: unknown parameter")

	// ErrParamRange indicates a parameter value the patch cannot run with.
	ErrParamRange = errors.New("instruments: parameter out of range")
)
