package redcache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"sort"
)

// HashFactory produces a fresh digest context for fingerprinting. MD5 is
// the default; it is a keying hash here, not a security primitive, and a
// longer digest is a drop-in swap.
type HashFactory func() hash.Hash

// ArgsMarshalFunc serializes positional or keyword arguments into the byte
// representation fed to the fingerprint digest. It must be canonical: equal
// inputs produce equal bytes regardless of map iteration order.
type ArgsMarshalFunc func(v any) ([]byte, error)

// fingerprinter derives the per-invocation fingerprint of
// (callable, args, kwds). Append order is fixed: fully qualified name,
// source text if present, serialized args, serialized kwds.
type fingerprinter struct {
	newHash HashFactory
	marshal ArgsMarshalFunc
}

func newFingerprinter(newHash HashFactory, marshal ArgsMarshalFunc) fingerprinter {
	if newHash == nil {
		newHash = md5.New
	}
	if marshal == nil {
		marshal = canonicalize
	}
	return fingerprinter{newHash: newHash, marshal: marshal}
}

// fingerprint returns the lowercase hex digest identifying the invocation.
func (fp fingerprinter) fingerprint(f *Func, args []any, kwds map[string]any) (string, error) {
	if f == nil {
		return "", ErrNotCallable
	}
	h := fp.newHash()
	io.WriteString(h, f.Name())
	if source := f.Source(); source != "" {
		io.WriteString(h, source)
	}
	if args != nil {
		b, err := fp.marshal(args)
		if err != nil {
			return "", fmt.Errorf("redcache: serialize args: %w", err)
		}
		h.Write(b)
	}
	if kwds != nil {
		b, err := fp.marshal(kwds)
		if err != nil {
			return "", fmt.Errorf("redcache: serialize kwds: %w", err)
		}
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checksumOf digests (fullname, source) for multiple-keyspace key
// derivation. Always MD5, independent of the invocation fingerprint.
func checksumOf(f *Func) string {
	h := md5.New()
	io.WriteString(h, f.Name())
	if source := f.Source(); source != "" {
		io.WriteString(h, source)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalize produces a deterministic JSON representation of v. Maps are
// emitted with sorted keys so iteration order never leaks into the bytes.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, ']'), nil
}
