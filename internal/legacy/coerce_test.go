package legacy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceString(t *testing.T) {
	for _, tc := range []struct {
		name    string
		raw     string
		want    string
		wantOK  bool
		wantErr bool
	}{
		{name: "RawText", raw: "Hello", want: "Hello", wantOK: true},
		{name: "JSONString", raw: `"Hello"`, want: "Hello", wantOK: true},
		{name: "PaddedJSONString", raw: `  "Hello"  `, want: "Hello", wantOK: true},
		{name: "TextWithBrackets", raw: "Hello [world]", want: "Hello [world]", wantOK: true},
		{name: "Number", raw: "1.50", want: "1.50", wantOK: true},
		{name: "Bool", raw: "true", want: "true", wantOK: true},
		{name: "Empty", raw: "", wantOK: false},
		{name: "Whitespace", raw: "   ", wantOK: false},
		{name: "EmptyJSONString", raw: `""`, wantOK: false},
		{name: "Null", raw: "null", wantOK: false},
		{name: "TrailingGarbage", raw: `"a" b`, want: `"a" b`, wantOK: true},
		{name: "Object", raw: `{"a":1}`, wantErr: true},
		{name: "List", raw: `["a"]`, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := CoerceString(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnparseable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoerceBool(t *testing.T) {
	for _, tc := range []struct {
		raw     string
		want    bool
		wantOK  bool
		wantErr bool
	}{
		{raw: "true", want: true, wantOK: true},
		{raw: `"false"`, want: false, wantOK: true},
		{raw: "YES", want: true, wantOK: true},
		{raw: "0", want: false, wantOK: true},
		{raw: "1", want: true, wantOK: true},
		{raw: "", wantOK: false},
		{raw: "null", wantOK: false},
		{raw: "maybe", wantErr: true},
		{raw: "2", wantErr: true},
	} {
		got, ok, err := CoerceBool(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, "CoerceBool(%q)", tc.raw)
			continue
		}
		require.NoError(t, err, "CoerceBool(%q)", tc.raw)
		assert.Equal(t, tc.wantOK, ok, "CoerceBool(%q) ok", tc.raw)
		assert.Equal(t, tc.want, got, "CoerceBool(%q)", tc.raw)
	}
}

func TestCoerceList(t *testing.T) {
	list, ok, err := CoerceList(`["a","b"]`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, list, 2)

	// Double-encoded, as written by code that stringified twice.
	list, ok, err = CoerceList(`"[\"a\",\"b\",\"c\"]"`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, list, 3)

	_, ok, err = CoerceList("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = CoerceList(`{"a":1}`)
	assert.ErrorIs(t, err, ErrUnparseable)

	_, _, err = CoerceList(`[broken`)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestCoerceObject(t *testing.T) {
	obj, ok, err := CoerceObject(`{"title":"About"}`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "About", obj["title"])

	obj, ok, err = CoerceObject(`"{\"title\":\"About\"}"`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "About", obj["title"])

	_, _, err = CoerceObject(`[1]`)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestCoerceError(t *testing.T) {
	err := &CoerceError{Key: "heroTitle", Err: ErrUnparseable}
	assert.Contains(t, err.Error(), "heroTitle")
	assert.ErrorIs(t, err, ErrUnparseable)
}
