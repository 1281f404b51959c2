package lang

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind int

const (
	KindInvalid  Kind = iota // invalid
	KindBool                 // bool
	KindInt                  // int
	KindStr                  // str
	KindUniqueID             // uuid
	KindMarkup               // markup
	KindList                 // list
	KindDict                 // dict
)

// Value is an immutable runtime value. The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int
	s    string // Str and UniqueID payload
	node Node
	list []Value
	dict map[Key]Value
}

// Key is a dictionary key: either a string or a unique identifier.
type Key struct {
	Kind Kind // KindStr or KindUniqueID
	Name string
}

// StrKey returns a string dictionary key.
func StrKey(name string) Key { return Key{Kind: KindStr, Name: name} }

// IDKey returns a unique-identifier dictionary key.
func IDKey(id string) Key { return Key{Kind: KindUniqueID, Name: id} }

func (k Key) String() string { return k.Name }

func compareKeys(a, b Key) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}

	return cmp.Compare(a.Kind, b.Kind)
}

// BoolValue returns a Bool value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue returns an Int value.
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }

// StrValue returns a Str value.
func StrValue(s string) Value { return Value{kind: KindStr, s: s} }

// UniqueIDValue returns a UniqueID value with the given textual identity.
func UniqueIDValue(id string) Value { return Value{kind: KindUniqueID, s: id} }

// MarkupValue returns a Markup value wrapping node.
func MarkupValue(node Node) Value { return Value{kind: KindMarkup, node: node} }

// ListValue returns a List value holding a copy of items.
func ListValue(items ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// DictValue returns a Dict value holding a copy of entries.
func DictValue(entries map[Key]Value) Value {
	d := make(map[Key]Value, len(entries))
	maps.Copy(d, entries)

	return Value{kind: KindDict, dict: d}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsBool returns the boolean payload of a Bool value.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload of an Int value.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

// AsStr returns the string payload of a Str value.
func (v Value) AsStr() (string, bool) { return v.s, v.kind == KindStr }

// AsUniqueID returns the identifier payload of a UniqueID value.
func (v Value) AsUniqueID() (string, bool) { return v.s, v.kind == KindUniqueID }

// AsMarkup returns the node payload of a Markup value.
func (v Value) AsMarkup() (Node, bool) { return v.node, v.kind == KindMarkup }

// AsList returns a copy of the items of a List value.
func (v Value) AsList() ([]Value, bool) {
	return slices.Clone(v.list), v.kind == KindList
}

// Lookup returns the entry of a Dict value with key k.
func (v Value) Lookup(k Key) (Value, bool) {
	if v.kind != KindDict {
		return Value{}, false
	}

	e, ok := v.dict[k]

	return e, ok
}

// Keys returns the keys of a Dict value in sorted order.
func (v Value) Keys() []Key {
	return slices.SortedFunc(maps.Keys(v.dict), compareKeys)
}

// Len returns the number of items of a List or entries of a Dict,
// the byte length of a Str, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindDict:
		return len(v.dict)
	case KindStr:
		return len(v.s)
	default:
		return 0
	}
}

// Truthy reports whether v counts as true in a condition.
// Bool uses its payload, Int is true when nonzero, Str/List/Dict are true
// when non-empty, and UniqueID and Markup are always true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindStr, KindList, KindDict:
		return v.Len() > 0
	case KindUniqueID, KindMarkup:
		return true
	default:
		return false
	}
}

// String returns a debugging representation of v.
// Use [RenderValue] to serialize a value to HTML.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.Itoa(v.i)
	case KindStr:
		return strconv.Quote(v.s)
	case KindUniqueID:
		return "uuid(" + v.s + ")"
	case KindMarkup:
		if v.node == nil {
			return "<>"
		}

		return v.node.String()
	case KindList:
		items := make([]string, len(v.list))
		for i, e := range v.list {
			items[i] = e.String()
		}

		return "[" + strings.Join(items, ", ") + "]"
	case KindDict:
		keys := v.Keys()
		items := make([]string, len(keys))

		for i, k := range keys {
			items[i] = strconv.Quote(k.Name) + ": " + v.dict[k].String()
		}

		return "{" + strings.Join(items, ", ") + "}"
	default:
		return "<invalid>"
	}
}
