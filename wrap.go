package redcache

import "context"

// The typed wrappers below are the Go rendition of decorating a callable:
// the returned function has the same signature as f and runs the
// cache-aside flow around it. The callable identity entering the
// fingerprint is f's fully qualified symbol name; pass a Func built with
// NewFunc to Exec directly when more control is needed (explicit naming,
// source pinning, keyword arguments).
//
// An optional single options map is forwarded opaquely to the scripts on
// every call.

// Wrap0 caches a nullary callable.
func Wrap0[O any](c *Cache, f func(context.Context) (O, error), options ...map[string]any) func(context.Context) (O, error) {
	fn := FuncOf(f, func(ctx context.Context, _ []any, _ map[string]any) (any, error) {
		return f(ctx)
	})
	opts := firstOption(options)
	return func(ctx context.Context) (O, error) {
		return execTyped[O](ctx, c, fn, nil, opts)
	}
}

// Wrap caches a unary callable. The argument must round-trip through the
// fingerprint serializer.
func Wrap[I, O any](c *Cache, f func(context.Context, I) (O, error), options ...map[string]any) func(context.Context, I) (O, error) {
	fn := FuncOf(f, func(ctx context.Context, args []any, _ map[string]any) (any, error) {
		return f(ctx, args[0].(I))
	})
	opts := firstOption(options)
	return func(ctx context.Context, in I) (O, error) {
		return execTyped[O](ctx, c, fn, []any{in}, opts)
	}
}

// Wrap2 caches a binary callable.
func Wrap2[I1, I2, O any](c *Cache, f func(context.Context, I1, I2) (O, error), options ...map[string]any) func(context.Context, I1, I2) (O, error) {
	fn := FuncOf(f, func(ctx context.Context, args []any, _ map[string]any) (any, error) {
		return f(ctx, args[0].(I1), args[1].(I2))
	})
	opts := firstOption(options)
	return func(ctx context.Context, a I1, b I2) (O, error) {
		return execTyped[O](ctx, c, fn, []any{a, b}, opts)
	}
}

// execTyped runs the shared orchestrator with hit payloads decoded
// directly into O.
func execTyped[O any](ctx context.Context, c *Cache, fn *Func, args []any, options map[string]any) (O, error) {
	v, err := c.exec(ctx, fn, args, nil, options, func(data []byte) (any, error) {
		var out O
		if err := c.serializer.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		var zero O
		return zero, err
	}
	return v.(O), nil
}

func firstOption(options []map[string]any) map[string]any {
	if len(options) > 0 {
		return options[0]
	}
	return nil
}
