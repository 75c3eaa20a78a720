package spacer

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DecodeFunc is the decode rule for T: it either builds a complete T from a
// RawValue or returns an error.
type DecodeFunc[T any] func(raw RawValue) (T, error)

// Outcome is the result of a fallible decode: a present value or absence.
// Absence is an expected result, not an error.
type Outcome[T any] struct {
	value T
	ok    bool
}

// Present wraps v as a present Outcome.
func Present[T any](v T) Outcome[T] { return Outcome[T]{value: v, ok: true} }

// Absent returns the empty Outcome.
func Absent[T any]() Outcome[T] { return Outcome[T]{} }

// Get returns the value and whether it is present.
func (o Outcome[T]) Get() (T, bool) { return o.value, o.ok }

// IsPresent reports whether a value was decoded.
func (o Outcome[T]) IsPresent() bool { return o.ok }

// OrElse returns the value or def when absent.
func (o Outcome[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// TryDecode applies dec to raw. Errors and panics raised by dec become an
// absent Outcome; nothing escapes.
func TryDecode[T any](raw RawValue, dec DecodeFunc[T]) (out Outcome[T]) {
	if dec == nil {
		return Absent[T]()
	}
	defer func() {
		if r := recover(); r != nil {
			out = Absent[T]()
		}
	}()
	v, err := dec(raw)
	if err != nil {
		return Absent[T]()
	}
	return Present(v)
}

// Validator is implemented by item types that enforce their own invariants
// (required fields, ranges) after structural decoding.
type Validator interface {
	Validate() error
}

// JSON returns a decode rule that maps the RawValue onto T with go-json
// struct tags. null is rejected. When T is a struct the RawValue must be an
// object carrying every field that is neither a pointer nor tagged omitempty
// or omitzero, with a non-null value. When *T or T implements Validator,
// Validate must pass too.
func JSON[T any]() DecodeFunc[T] {
	shape := structShapeOf(reflect.TypeFor[T]())
	return func(raw RawValue) (T, error) {
		var v T
		if raw == nil {
			return v, typeIssue("value", raw)
		}
		if shape != nil {
			if err := shape.check(raw); err != nil {
				return v, err
			}
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return v, err
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return v, err
		}
		if val, ok := any(&v).(Validator); ok {
			if err := val.Validate(); err != nil {
				var zero T
				return zero, err
			}
		}
		return v, nil
	}
}

// structShape lists the JSON names a struct cannot do without.
type structShape struct {
	required []string
}

var (
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// structShapeOf returns nil when t (or what it points to) is not a plain
// struct. Structs that unmarshal themselves, such as time.Time, are left to
// their own UnmarshalJSON or UnmarshalText.
func structShapeOf(t reflect.Type) *structShape {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if pt := reflect.PointerTo(t); pt.Implements(jsonUnmarshalerType) || pt.Implements(textUnmarshalerType) {
		return nil
	}
	s := &structShape{}
	s.collect(t)
	return s
}

func (s *structShape) collect(t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup("json")
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" && opts == "" {
			continue
		}
		if f.Anonymous && !hasTag && f.Type.Kind() == reflect.Struct {
			s.collect(f.Type)
			continue
		}
		if !f.IsExported() || f.Type.Kind() == reflect.Pointer {
			continue
		}
		if hasOption(opts, "omitempty") || hasOption(opts, "omitzero") {
			continue
		}
		if name == "" {
			name = f.Name
		}
		s.required = append(s.required, name)
	}
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

func (s *structShape) check(raw RawValue) error {
	obj, ok := raw.(map[string]any)
	if !ok {
		return typeIssue("object", raw)
	}
	var iss Issues
	for _, name := range s.required {
		if lookupField(obj, name) == nil {
			iss = append(iss, Issue{Code: CodeRequired, Path: "/" + name, Message: "missing required field", Offset: -1})
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// lookupField finds name the way go-json matches keys: exactly, then
// case-insensitively.
func lookupField(obj map[string]any, name string) any {
	if v, ok := obj[name]; ok {
		return v
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// String accepts JSON strings only.
func String(raw RawValue) (string, error) {
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return "", typeIssue("string", raw)
}

// Bool accepts JSON booleans only.
func Bool(raw RawValue) (bool, error) {
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	return false, typeIssue("boolean", raw)
}

// Float64 accepts JSON numbers in either NumberMode.
func Float64(raw RawValue) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	}
	return 0, typeIssue("number", raw)
}

// Int64 accepts JSON numbers with no fractional part.
func Int64(raw RawValue) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case float64:
		return floatToInt(v)
	}
	return 0, typeIssue("integer", raw)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, singleIssue(CodeInvalidType, "/", fmt.Sprintf("%v is not an integer", f))
	}
	return int64(f), nil
}

func typeIssue(want string, got RawValue) Issues {
	return singleIssue(CodeInvalidType, "/", fmt.Sprintf("expected %s, got %s", want, rawKind(got)))
}

func rawKind(v RawValue) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// Codec performs a bidirectional, pure conversion between the wire
// representation A and the domain representation B.
type Codec[A, B any] interface {
	Decode(a A) (B, error)
	Encode(b B) (A, error)
}

// Via chains a wire decode rule with a codec, e.g. String then RFC3339.
func Via[A, B any](dec DecodeFunc[A], c Codec[A, B]) DecodeFunc[B] {
	return func(raw RawValue) (B, error) {
		a, err := dec(raw)
		if err != nil {
			var zero B
			return zero, err
		}
		return c.Decode(a)
	}
}
