package axon

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// Debug validation errors. All are configuration errors: they indicate a
// state type or reducer that must be fixed during development, not handled
// at runtime.
var (
	// ErrNotConstructible indicates the state type cannot be built from
	// outside its package.
	ErrNotConstructible = errors.New("state type is not publicly constructible")

	// ErrMutableState indicates the state type has a member that can be
	// mutated in place.
	ErrMutableState = errors.New("state type is not structurally immutable")

	// ErrRoundTrip indicates the state does not survive a codec round trip.
	ErrRoundTrip = errors.New("state does not survive a codec round trip")

	// ErrImpureReducer indicates a reducer produced unequal results for two
	// applications to the same input state.
	ErrImpureReducer = errors.New("impure reducer: repeated application produced different results")
)

// validateState runs the construction-time debug checks against the initial
// state. It executes on the worker, off the constructing goroutine, ahead
// of any reducer submitted after Debug().
func (c *Container[S]) validateState(s S) {
	t := reflect.TypeOf(s)
	if t == nil {
		c.violation(fmt.Errorf("%w: state is an untyped nil interface", ErrNotConstructible))
		return
	}
	if err := checkImmutable(t, t.String()); err != nil {
		c.violation(err)
		return
	}
	if err := c.roundTrip(s); err != nil {
		c.violation(err)
	}
}

// violation reports a debug check failure through the configured handler.
func (c *Container[S]) violation(err error) {
	capitan.Emit(c.ctx, ValidationFailed,
		KeyError.Field(err.Error()),
	)
	c.onViolation(err)
}

// roundTrip verifies that serializing and reconstructing the state yields a
// value equal to the original.
func (c *Container[S]) roundTrip(s S) error {
	data, err := c.codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrRoundTrip, err)
	}
	var out S
	if err := c.codec.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("%w: unmarshal: %w", ErrRoundTrip, err)
	}
	if !c.equal(s, out) {
		return fmt.Errorf("%w via %s", ErrRoundTrip, c.codec.ContentType())
	}
	return nil
}

// checkImmutable walks a state type and rejects any member that could be
// mutated in place or that prevents public construction. Scalars, strings,
// arrays, and structs of those are immutable; pointers, maps, slices,
// channels, funcs, and interfaces are not.
func checkImmutable(t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return nil

	case reflect.Array:
		return checkImmutable(t.Elem(), path+"[]")

	case reflect.Struct:
		if isKnownImmutable(t) {
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				return fmt.Errorf("%w: unexported field %s.%s", ErrNotConstructible, path, f.Name)
			}
			if err := checkImmutable(f.Type, path+"."+f.Name); err != nil {
				return err
			}
		}
		return nil

	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Errorf("%w: %s member at %s", ErrMutableState, t.Kind(), path)

	case reflect.Interface:
		return fmt.Errorf("%w: interface member at %s cannot be proven immutable", ErrMutableState, path)

	default:
		return fmt.Errorf("%w: unsupported kind %s at %s", ErrMutableState, t.Kind(), path)
	}
}

// isKnownImmutable exempts types whose internals are unexported but whose
// contract is immutable: time.Time and the Async result type.
func isKnownImmutable(t reflect.Type) bool {
	if t == reflect.TypeOf(time.Time{}) {
		return true
	}
	if t.PkgPath() == "github.com/zoobzio/axon" && strings.HasPrefix(t.Name(), "Async[") {
		return true
	}
	return false
}
