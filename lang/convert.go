package lang

import (
	"log/slog"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// ID is a native unique identifier that is not a UUID.
// It converts to and from a UniqueID value.
type ID string

// FromNative converts a Go value into the value algebra.
//
// Booleans, integers, strings, [ID], [uuid.UUID], [Node], slices, arrays and
// maps keyed by strings, [ID] or [uuid.UUID] convert recursively. Structs
// convert to dictionaries through mapstructure, so their "mapstructure" field
// tags name the keys. Anything else, including nil, fails with [ErrType].
func FromNative(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, ErrType.Wrapf("cannot convert nil")
	case Value:
		if !x.IsValid() {
			return Value{}, ErrType.Wrapf("cannot convert invalid value")
		}

		return x, nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(x), nil
	case string:
		return StrValue(x), nil
	case []byte:
		return StrValue(string(x)), nil
	case ID:
		return UniqueIDValue(string(x)), nil
	case uuid.UUID:
		return UniqueIDValue(x.String()), nil
	case Node:
		return MarkupValue(x), nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt || i > math.MaxInt {
			return Value{}, ErrType.Wrapf("integer %d overflows int", i)
		}

		return IntValue(int(i)), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt {
			return Value{}, ErrType.Wrapf("integer %d overflows int", u)
		}

		return IntValue(int(u)), nil

	case reflect.String:
		return StrValue(rv.String()), nil

	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())

		for i := range items {
			item, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, WrapError(err).With(slog.Int("index", i))
			}

			items[i] = item
		}

		return Value{kind: KindList, list: items}, nil

	case reflect.Map:
		return fromMap(rv)

	case reflect.Pointer:
		if rv.IsNil() {
			return Value{}, ErrType.Wrapf("cannot convert nil %T", v)
		}

		return FromNative(rv.Elem().Interface())

	case reflect.Struct:
		var m map[string]any
		if err := mapstructure.Decode(v, &m); err != nil {
			return Value{}, ErrType.Wrap(err)
		}

		return FromNative(m)

	default:
		return Value{}, ErrType.Wrapf("cannot convert %T", v)
	}
}

func fromMap(rv reflect.Value) (Value, error) {
	dict := make(map[Key]Value, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		key, err := keyOf(iter.Key().Interface())
		if err != nil {
			return Value{}, err
		}

		val, err := FromNative(iter.Value().Interface())
		if err != nil {
			return Value{}, WrapError(err).With(slog.String("key", key.Name))
		}

		dict[key] = val
	}

	return Value{kind: KindDict, dict: dict}, nil
}

func keyOf(k any) (Key, error) {
	switch x := k.(type) {
	case string:
		return StrKey(x), nil
	case ID:
		return IDKey(string(x)), nil
	case uuid.UUID:
		return IDKey(x.String()), nil
	}

	if rv := reflect.ValueOf(k); rv.Kind() == reflect.String {
		return StrKey(rv.String()), nil
	}

	return Key{}, ErrType.Wrapf("invalid dictionary key type %T", k)
}

// ToNative converts a value into its native Go representation: bool, int,
// string, [uuid.UUID] (or [ID] for identifiers that are not canonical UUID
// text), [Node], []any or map[string]any. A dictionary with any
// unique-identifier key becomes map[any]any so that [FromNative] restores
// its keys unchanged.
func ToNative(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindStr:
		return v.s
	case KindUniqueID:
		return nativeID(v.s)
	case KindMarkup:
		return v.node
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = ToNative(item)
		}

		return items
	case KindDict:
		if hasIDKey(v.dict) {
			m := make(map[any]any, len(v.dict))
			for k, item := range v.dict {
				if k.Kind == KindUniqueID {
					m[nativeID(k.Name)] = ToNative(item)
				} else {
					m[k.Name] = ToNative(item)
				}
			}

			return m
		}

		m := make(map[string]any, len(v.dict))
		for k, item := range v.dict {
			m[k.Name] = ToNative(item)
		}

		return m
	default:
		return nil
	}
}

func hasIDKey(dict map[Key]Value) bool {
	for k := range dict {
		if k.Kind == KindUniqueID {
			return true
		}
	}

	return false
}

// nativeID returns id as a [uuid.UUID] only when that renders back to the
// same text.
func nativeID(id string) any {
	if u, err := uuid.Parse(id); err == nil && u.String() == id {
		return u
	}

	return ID(id)
}

// Params converts caller-supplied parameters into values. Every entry must
// convert; the first that does not fails with [ErrInvalidParameter].
func Params(params map[string]any) (map[string]Value, error) {
	vars := make(map[string]Value, len(params))

	for _, name := range slices.Sorted(maps.Keys(params)) {
		v, err := FromNative(params[name])
		if err != nil {
			return nil, ErrInvalidParameter.Wrap(err).With(slog.String("name", name))
		}

		vars[name] = v
	}

	return vars, nil
}
