// Package redact walks arbitrary nested records and applies removal or
// masking to classified fields, recording which paths were touched.
//
// All walks are depth-first and mutate the tree they are given; callers
// own a private deep copy (see Copy) so the original record is never
// modified. Map keys are visited in sorted order so the recorded paths
// are reproducible and auditable independent of map iteration order.
package redact

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/coachcore/privacyd/internal/domain/classify"
	"github.com/coachcore/privacyd/internal/domain/model"
)

// defaultMaxDepth bounds recursion over caller-supplied trees. Real
// coaching records nest a handful of levels; anything deeper is treated
// as malformed input rather than risking unbounded recursion.
const defaultMaxDepth = 64

// maskPlaceholder is the fixed interior/wholesale replacement used by
// Mask. The scheme is intentionally lossy and irreversible: the
// requirement is de-identification, not later re-identification.
const maskPlaceholder = "***"

// minMaskableLength is the shortest string that keeps its first and
// last character through masking.
const minMaskableLength = 3

// Redactor applies a classification registry to record trees.
type Redactor struct {
	registry *classify.Registry
	maxDepth int
}

// Option applies a configuration option to the Redactor.
type Option func(*Redactor)

// WithMaxDepth overrides the nesting depth bound. Values < 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Redactor) {
		if depth >= 1 {
			r.maxDepth = depth
		}
	}
}

// New creates a Redactor backed by registry.
func New(registry *classify.Registry, opts ...Option) *Redactor {
	r := &Redactor{
		registry: registry,
		maxDepth: defaultMaxDepth,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Copy deep-copies a record tree, normalizing every nested mapping to
// map[string]any and every sequence to []any. The depth bound is
// enforced here, before any mutating walk runs, so a failure can never
// leave a partially redacted tree observable.
func (r *Redactor) Copy(rec model.Record) (model.Record, error) {
	out, err := r.copyValue(rec, 0)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	return m, nil
}

func (r *Redactor) copyValue(v any, depth int) (any, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrTooDeep, depth)
	}
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			c, err := r.copyValue(val, depth+1)
			if err != nil {
				return nil, err
			}
			m[k] = c
		}
		return m, nil
	case []any:
		s := make([]any, len(x))
		for i, val := range x {
			c, err := r.copyValue(val, depth+1)
			if err != nil {
				return nil, err
			}
			s[i] = c
		}
		return s, nil
	default:
		return r.copyOther(v, depth)
	}
}

// copyOther handles values outside the canonical JSON shapes. Decoded
// JSON only ever yields map[string]any and []any, but records built in
// process may carry typed containers such as []map[string]any or
// map[string]string. Those are rewritten into the canonical forms so
// the mutating walks see every nested field; a container that cannot
// represent a record subtree fails as unsupported instead of passing
// through unredacted.
func (r *Redactor) copyOther(v any, depth int) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		b := make([]byte, len(x))
		copy(b, x)
		return b, nil
	case time.Time:
		// Instants are scalars; generalization may rewrite them later.
		return x, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return r.copyValue(rv.Elem().Interface(), depth)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keyed by %s", ErrUnsupportedType, rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			c, err := r.copyValue(iter.Value().Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = c
		}
		return m, nil
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			c, err := r.copyValue(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			s[i] = c
		}
		return s, nil
	case reflect.Struct, reflect.Chan, reflect.Func:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	default:
		// Remaining kinds are scalars and immutable from the tree's
		// perspective.
		return v, nil
	}
}

// RemoveIdentifying deletes every identifying key from the tree at any
// nesting depth and returns the ordered list of removed paths in dotted
// notation with bracketed indices, e.g. "players[2].emergencyContact".
func (r *Redactor) RemoveIdentifying(rec model.Record) []string {
	removed := []string{}
	r.walk(rec, "", func(m map[string]any, key, path string) {
		if r.registry.Classify(key) == classify.Identifying {
			delete(m, key)
			removed = append(removed, path)
		}
	})
	return removed
}

// MaskSensitive replaces the value of every sensitive key with its
// masked representation and returns the ordered list of masked paths.
// Keys that are also identifying never appear here: removal has already
// deleted them, and classification reports them as identifying anyway.
func (r *Redactor) MaskSensitive(rec model.Record) []string {
	masked := []string{}
	r.walk(rec, "", func(m map[string]any, key, path string) {
		if r.registry.Classify(key) == classify.Sensitive {
			m[key] = Mask(m[key])
			masked = append(masked, path)
		}
	})
	return masked
}

// walk performs one depth-first pass over the tree. visit runs for every
// mapping key before recursion, so a visitor may delete or replace the
// key's value; recursion only follows values that survive the visit and
// are themselves mappings or sequences. Scalar sequence elements are
// left untouched: removal and masking apply to named fields only.
func (r *Redactor) walk(m map[string]any, prefix string, visit func(m map[string]any, key, path string)) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		visit(m, k, path)

		switch child := m[k].(type) {
		case map[string]any:
			r.walk(child, path, visit)
		case []any:
			r.walkSeq(child, path, visit)
		}
	}
}

func (r *Redactor) walkSeq(s []any, prefix string, visit func(m map[string]any, key, path string)) {
	for i, el := range s {
		path := fmt.Sprintf("%s[%d]", prefix, i)
		switch child := el.(type) {
		case map[string]any:
			r.walk(child, path, visit)
		case []any:
			r.walkSeq(child, path, visit)
		}
	}
}

// Mask produces the irreversible masked representation of a sensitive
// value. Strings longer than 2 runes keep their first and last rune
// around a fixed placeholder ("J***n"); any other type or length is
// replaced wholesale with the placeholder. The output type is always a
// string regardless of the original value type.
func Mask(v any) string {
	s, ok := v.(string)
	if !ok {
		return maskPlaceholder
	}
	runes := []rune(s)
	if len(runes) < minMaskableLength {
		return maskPlaceholder
	}
	return string(runes[0]) + maskPlaceholder + string(runes[len(runes)-1])
}
