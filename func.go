package redcache

import (
	"context"
	"reflect"
	"runtime"
)

// CallFunc is the signature the cache invokes on a miss. Positional
// arguments and keyword arguments are passed through unchanged from Exec.
type CallFunc func(ctx context.Context, args []any, kwds map[string]any) (any, error)

// Func identifies a user callable for caching purposes. The fully qualified
// name participates in the fingerprint, so two distinct functions never
// share cache entries even when called with equal arguments.
type Func struct {
	name   string
	source string
	call   CallFunc
}

// NewFunc builds a Func with an explicit fully qualified name.
func NewFunc(name string, call CallFunc) *Func {
	return &Func{name: name, call: call}
}

// FuncOf builds a Func whose name is derived from fn's symbol via the
// runtime, and whose body adapts fn's untyped form. fn is only used for
// naming; call is what gets invoked.
func FuncOf(fn any, call CallFunc) *Func {
	return &Func{name: nameOf(fn), call: call}
}

// Name returns the fully qualified callable name.
func (f *Func) Name() string { return f.name }

// Source returns the source fingerprint text, if any.
func (f *Func) Source() string { return f.source }

// WithSource returns a copy of f carrying source text (or any other
// implementation-version marker). The runtime cannot surface Go function
// bodies, so callers that want cache entries invalidated on implementation
// changes pin a version string here.
func (f *Func) WithSource(source string) *Func {
	clone := *f
	clone.source = source
	return &clone
}

// Call invokes the underlying callable.
func (f *Func) Call(ctx context.Context, args []any, kwds map[string]any) (any, error) {
	if f == nil || f.call == nil {
		return nil, ErrNotCallable
	}
	return f.call(ctx, args, kwds)
}

// nameOf resolves the fully qualified symbol name of a function value,
// e.g. "github.com/acme/geo.Distance". Anonymous functions resolve to their
// enclosing symbol plus a funcN suffix, which is stable within a build.
func nameOf(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	return rf.Name()
}
