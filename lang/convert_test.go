package lang

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	Name   string   `mapstructure:"username"`
	Age    int      `mapstructure:"age"`
	Tags   []string `mapstructure:"tags"`
	hidden string
}

func TestFromNative_Scalars(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	type level int8

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"bool", true, BoolValue(true)},
		{"int", 7, IntValue(7)},
		{"int64", int64(-7), IntValue(-7)},
		{"uint8", uint8(255), IntValue(255)},
		{"named int", level(3), IntValue(3)},
		{"string", "s", StrValue("s")},
		{"bytes", []byte("b"), StrValue("b")},
		{"id", ID("abc"), UniqueIDValue("abc")},
		{"uuid", id, UniqueIDValue(id.String())},
		{"value", IntValue(1), IntValue(1)},
		{"pointer", new(int), IntValue(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromNative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromNative_Struct(t *testing.T) {
	got, err := FromNative(&user{Name: "ada", Age: 36, Tags: []string{"x"}, hidden: "h"})
	require.NoError(t, err)
	require.Equal(t, KindDict, got.Kind())

	name, ok := got.Lookup(StrKey("username"))
	require.True(t, ok)
	assert.Equal(t, StrValue("ada"), name)

	tags, ok := got.Lookup(StrKey("tags"))
	require.True(t, ok)
	assert.Equal(t, ListValue(StrValue("x")), tags)

	_, ok = got.Lookup(StrKey("hidden"))
	assert.False(t, ok)

	v, err := eval(t, "u.username + u.age * 0", map[string]any{"u": user{Name: "ada"}})
	require.ErrorIs(t, err, ErrType, "str + int is a type error")
	assert.False(t, v.IsValid())

	v, err = eval(t, `u.username + "!"`, map[string]any{"u": user{Name: "ada"}})
	require.NoError(t, err)
	assert.Equal(t, StrValue("ada!"), v)
}

func TestFromNative_Collections(t *testing.T) {
	got, err := FromNative(map[string]any{
		"list": []any{1, "a", []int{2}},
		"map":  map[ID]string{"k": "v"},
	})
	require.NoError(t, err)

	list, ok := got.Lookup(StrKey("list"))
	require.True(t, ok)
	assert.Equal(t, ListValue(IntValue(1), StrValue("a"), ListValue(IntValue(2))), list)

	m, ok := got.Lookup(StrKey("map"))
	require.True(t, ok)

	v, ok := m.Lookup(IDKey("k"))
	require.True(t, ok)
	assert.Equal(t, StrValue("v"), v)
}

func TestFromNative_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"float", 1.5},
		{"nil pointer", (*int)(nil)},
		{"int keys", map[int]string{1: "a"}},
		{"nested float", []any{1, 2.5}},
		{"func", func() {}},
		{"overflow", uint64(math.MaxUint64)},
		{"invalid value", Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNative(tt.in)
			require.ErrorIs(t, err, ErrType)
		})
	}
}

func TestToNative(t *testing.T) {
	id := uuid.New()

	v := DictValue(map[Key]Value{
		StrKey("b"):  BoolValue(true),
		StrKey("l"):  ListValue(IntValue(1), StrValue("s")),
		StrKey("id"): UniqueIDValue(id.String()),
		StrKey("x"):  UniqueIDValue("not-a-uuid"),
	})

	assert.Equal(t, map[string]any{
		"b":  true,
		"l":  []any{1, "s"},
		"id": id,
		"x":  ID("not-a-uuid"),
	}, ToNative(v))
}

func TestToNative_RoundTrip(t *testing.T) {
	id := uuid.New()
	upper := strings.ToUpper(id.String())

	tests := []struct {
		name string
		in   Value
	}{
		{"canonical uuid", UniqueIDValue(id.String())},
		{"upper-case uuid", UniqueIDValue(upper)},
		{"opaque id", UniqueIDValue("user-7")},
		{"id keys", DictValue(map[Key]Value{
			IDKey(id.String()): StrValue("a"),
			IDKey(upper):       StrValue("b"),
			StrKey("name"):     IntValue(1),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromNative(ToNative(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestParams(t *testing.T) {
	vars, err := Params(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]Value{"a": IntValue(1), "b": StrValue("x")}, vars)

	_, err = Params(map[string]any{"ok": 1, "bad": 1.5})
	require.ErrorIs(t, err, ErrInvalidParameter)
	require.ErrorIs(t, err, ErrType)

	var ee *Error
	require.ErrorAs(t, err, &ee)

	name, ok := ee.Attr("name")
	require.True(t, ok)
	assert.Equal(t, "bad", name.String())
}
