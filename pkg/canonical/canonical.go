package canonical

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/shopspring/decimal"
)

const (
	// SignatureField is the top-level key that never takes part in the canonical form.
	SignatureField = "signature"

	// MaxDepth is the deepest nesting of objects, arrays and pointers accepted.
	MaxDepth = 512

	// MaxSafeInteger is the largest integer an IEEE-754 double holds exactly.
	MaxSafeInteger = 1<<53 - 1
)

var (
	numberType     = reflect.TypeOf(json.Number(""))
	maxSafeDecimal = decimal.NewFromInt(MaxSafeInteger)

	pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
)

// Canonicalize returns the RFC 8785 (JCS) encoding of obj with the top-level
// "signature" key left out. obj is not modified.
//
// Numbers follow one fixed rule: integers (Go integer kinds and json.Number
// literals without fraction or exponent) must lie within ±MaxSafeInteger,
// everything else is read as a finite IEEE-754 double and written with
// ECMAScript formatting.
func Canonicalize(obj map[string]any) ([]byte, error) {
	w := walker{active: make(map[visit]struct{})}

	tree, err := w.object(reflect.ValueOf(obj), "", 0, true)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		tree = map[string]any{}
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, &EncodingError{Err: ErrUnsupportedType, Detail: err.Error()}
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, &EncodingError{Err: ErrUnsupportedType, Detail: err.Error()}
	}
	return out, nil
}

// visit identifies a container on the current path. Slices are keyed by
// length as well so a shorter re-slice of the same array is not a cycle.
type visit struct {
	kind reflect.Kind
	ptr  uintptr
	len  int
}

// walker converts arbitrary Go values into the JSON-shaped tree
// (map[string]any, []any, string, float64, bool, nil) fed to the canonicalizer.
type walker struct {
	active map[visit]struct{}
}

func (w *walker) enter(v visit, path string) error {
	if _, ok := w.active[v]; ok {
		return &EncodingError{Path: path, Err: ErrCycle}
	}
	w.active[v] = struct{}{}
	return nil
}

func (w *walker) leave(v visit) { delete(w.active, v) }

func (w *walker) value(v reflect.Value, path string, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, &EncodingError{Path: path, Err: ErrTooDeep, Detail: fmt.Sprintf("limit is %d", MaxDepth)}
	}
	if !v.IsValid() {
		return nil, nil
	}
	if v.Type() == numberType {
		return number(json.Number(v.String()), path)
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return w.value(v.Elem(), path, depth)
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		id := visit{kind: reflect.Pointer, ptr: v.Pointer()}
		if err := w.enter(id, path); err != nil {
			return nil, err
		}
		defer w.leave(id)
		return w.value(v.Elem(), path, depth+1)
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := v.String()
		if !utf8.ValidString(s) {
			return nil, &EncodingError{Path: path, Err: ErrInvalidString}
		}
		return s, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i > MaxSafeInteger || i < -MaxSafeInteger {
			return nil, &EncodingError{Path: path, Err: ErrNumberOutOfRange, Detail: strconv.FormatInt(i, 10)}
		}
		return float64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > MaxSafeInteger {
			return nil, &EncodingError{Path: path, Err: ErrNumberOutOfRange, Detail: strconv.FormatUint(u, 10)}
		}
		return float64(u), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &EncodingError{Path: path, Err: ErrNumberOutOfRange, Detail: strconv.FormatFloat(f, 'g', -1, 64)}
		}
		return f, nil
	case reflect.Map:
		return w.object(v, path, depth, false)
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil, &EncodingError{Path: path, Err: ErrUnsupportedType, Detail: "byte slices must be passed as strings"}
		}
		if v.Len() > 0 {
			id := visit{kind: reflect.Slice, ptr: v.Pointer(), len: v.Len()}
			if err := w.enter(id, path); err != nil {
				return nil, err
			}
			defer w.leave(id)
		}
		return w.array(v, path, depth)
	case reflect.Array:
		return w.array(v, path, depth)
	default:
		return nil, &EncodingError{Path: path, Err: ErrUnsupportedType, Detail: v.Type().String()}
	}
}

func (w *walker) object(v reflect.Value, path string, depth int, top bool) (any, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, &EncodingError{Path: path, Err: ErrUnsupportedType, Detail: "map keys must be strings"}
	}
	if v.IsNil() {
		return nil, nil
	}

	id := visit{kind: reflect.Map, ptr: v.Pointer()}
	if err := w.enter(id, path); err != nil {
		return nil, err
	}
	defer w.leave(id)

	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		if top && key == SignatureField {
			continue
		}
		childPath := path + "/" + pointerEscaper.Replace(key)
		if !utf8.ValidString(key) {
			return nil, &EncodingError{Path: childPath, Err: ErrInvalidString, Detail: "object key"}
		}
		child, err := w.value(iter.Value(), childPath, depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = child
	}
	return out, nil
}

func (w *walker) array(v reflect.Value, path string, depth int) (any, error) {
	out := make([]any, v.Len())
	for i := range out {
		child, err := w.value(v.Index(i), path+"/"+strconv.Itoa(i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

func number(n json.Number, path string) (any, error) {
	s := string(n)
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) || !json.Valid([]byte(s)) {
		return nil, &EncodingError{Path: path, Err: ErrUnsupportedType, Detail: fmt.Sprintf("malformed number %q", s)}
	}

	if !strings.ContainsAny(s, ".eE") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, &EncodingError{Path: path, Err: ErrUnsupportedType, Detail: fmt.Sprintf("malformed number %q", s)}
		}
		if d.Abs().GreaterThan(maxSafeDecimal) {
			return nil, &EncodingError{Path: path, Err: ErrNumberOutOfRange, Detail: s}
		}
		return d.InexactFloat64(), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, &EncodingError{Path: path, Err: ErrNumberOutOfRange, Detail: s}
	}
	return f, nil
}
