// Package compile turns a mutable specification into a packed runtime
// model: it flattens the body tree, resolves names and defaults,
// compiles assets, consolidates inertias, fuses static bodies, builds
// bounding-volume hierarchies, assigns dof addresses, computes sizes
// and packs every entity into contiguous arrays.
package compile

import (
	"fmt"
)

// ErrorKind classifies compile failures.
type ErrorKind int

const (
	// ParseOrSpecError: missing name, empty size, duplicate name,
	// invalid enum.
	ParseOrSpecError ErrorKind = iota
	// ReferenceError: dangling reference, wrong kind, repeated object.
	ReferenceError
	// GeometryError: degenerate axis, negative size, NaN size, fromto
	// incompatible with type, flat inertia.
	GeometryError
	// PhysicalError: negative mass, triangle inequality violation,
	// free joint misuse.
	PhysicalError
	// AssetError: file not found, decode failure, dimension mismatch,
	// unsupported content type.
	AssetError
	// PluginError: unknown plugin, missing attribute, capability
	// mismatch.
	PluginError
	// EngineError: propagated from the physics-engine subcall.
	EngineError
	// InternalError: invariant breakage, "SHOULD NOT OCCUR".
	InternalError
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ParseOrSpecError:
		return "spec error"
	case ReferenceError:
		return "reference error"
	case GeometryError:
		return "geometry error"
	case PhysicalError:
		return "physical error"
	case AssetError:
		return "asset error"
	case PluginError:
		return "plugin error"
	case EngineError:
		return "engine error"
	case InternalError:
		return "internal error"
	default:
		return "error"
	}
}

// Error is a structured compile failure. Object name and id identify
// the offending entity when known.
type Error struct {
	Kind    ErrorKind
	Message string
	Object  string
	ID      int32
	Info    string
	Warning bool

	wrapped error
}

// Error formats the failure in the canonical message shape.
func (e *Error) Error() string {
	prefix := "Error"
	if e.Warning {
		prefix = "Warning"
	}
	if e.Object == "" && e.ID < 0 {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	msg := fmt.Sprintf("%s: %s\nObject name=%s, id=%d", prefix, e.Message, e.Object, e.ID)
	if e.Info != "" {
		msg += ", " + e.Info
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.wrapped }

// errorf builds a compile error without an attached object.
func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), ID: -1}
}

// objErrorf builds a compile error attached to a named object.
func objErrorf(kind ErrorKind, name string, id int32, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Object: name, ID: id}
}

// wrap attaches a cause to the error.
func (e *Error) wrap(err error) *Error {
	e.wrapped = err
	return e
}
