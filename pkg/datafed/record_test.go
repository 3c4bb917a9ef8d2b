package datafed

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	tests := map[string]string{
		"123":     "d/123",
		"d/123":   "d/123",
		"  42  ":  "d/42",
		"":        "",
		"   ":     "",
		"abc/def": "d/abc/def",
	}
	for in, want := range tests {
		assert.Equal(t, want, RecordID(in), "RecordID(%q)", in)
	}
}

func TestNormalize(t *testing.T) {
	f := Normalize(`id: "d/1"
title: "run: 7"
size: 1024
locked: false
public: true
huge: 99999999999999999999999
bare: value
no separator here
: empty key
title: "second"
`)

	assert.Equal(t, []string{"id", "title", "size", "locked", "public", "huge", "bare"}, f.Keys)
	assert.Equal(t, "d/1", f.Values["id"])
	assert.Equal(t, "second", f.Values["title"])
	assert.Equal(t, int64(1024), f.Values["size"])
	assert.Equal(t, false, f.Values["locked"])
	assert.Equal(t, true, f.Values["public"])
	assert.Equal(t, "99999999999999999999999", f.Values["huge"])
	assert.Equal(t, "value", f.Values["bare"])
}

func TestNormalizeEmpty(t *testing.T) {
	f := Normalize("")
	assert.Empty(t, f.Keys)
	assert.Empty(t, f.Values)
}

func TestNormalizeFieldsIsIdempotent(t *testing.T) {
	raw := Fields{
		Keys:   []string{"a", "b", "c"},
		Values: map[string]any{"a": Token(`"x"`), "b": Token("12"), "c": "already"},
	}
	once := NormalizeFields(raw)
	twice := NormalizeFields(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, "x", once.Values["a"])
	assert.Equal(t, int64(12), once.Values["b"])
	assert.Equal(t, "already", once.Values["c"])
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, "quoted", Coerce(Token(`"quoted"`)))
	assert.Equal(t, `"`, Coerce(Token(`"`)))
	assert.Equal(t, true, Coerce(Token("true")))
	assert.Equal(t, "True", Coerce(Token("True")))
	assert.Equal(t, int64(7), Coerce(Token("7")))
	assert.Equal(t, "-7", Coerce(Token("-7")))
	assert.Equal(t, 3.5, Coerce(3.5))
}

func TestDumpRoundTripsThroughNormalize(t *testing.T) {
	r := &Record{
		ID:       "d/9",
		Title:    `say "hi"`,
		Metadata: `{"a":1}`,
		ParentID: "c/1",
		Size:     10,
	}
	f := Normalize(r.Dump())

	assert.Equal(t, "d/9", f.GetString("id"))
	assert.Equal(t, `say "hi"`, f.GetString("title"))
	assert.Equal(t, `{"a":1}`, f.GetString("metadata"))
	assert.Equal(t, int64(10), f.Values["size"])
	assert.Equal(t, false, f.Values["locked"])
	_, ok := f.Get("owner")
	assert.False(t, ok)
}

func TestFieldsMarshalKeepsOrder(t *testing.T) {
	f := Normalize("z: 1\na: \"two\"\nm: true\n")
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"two","m":true}`, string(b))
	assert.Equal(t, map[string]any{"z": int64(1), "a": "two", "m": true}, f.Map())
}

func TestUsername(t *testing.T) {
	var nilUser *User
	assert.Equal(t, "", nilUser.Username())
	assert.Equal(t, "alice", (&User{ID: "alice", Name: "Alice A"}).Username())
	assert.Equal(t, "Alice A", (&User{Name: "Alice A"}).Username())
}
