package jsonedit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParsePointer covers plain keys, pointers and escapes.
func TestParsePointer(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"name"}, ParsePointer("name"))
	require.Equal(t, []string{"a/b"}, ParsePointer("a/b"))
	require.Equal(t, []string{"user", "name"}, ParsePointer("/user/name"))
	require.Equal(t, []string{"a/b", "c~d"}, ParsePointer("/a~1b/c~0d"))
	require.Equal(t, []string{"~1"}, ParsePointer("/~01"))
	require.Equal(t, []string{""}, ParsePointer("/"))
}

func decode(t *testing.T, s string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))

	return v
}

// TestRename covers flat and nested renames and the not-found cases.
func TestRename(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"a":1,"b":2}`)
	require.NoError(t, Rename(v, ParsePointer("a"), "c"))
	require.Equal(t, decode(t, `{"c":1,"b":2}`), v)

	v = decode(t, `{"user":{"name":"x","id":1}}`)
	require.NoError(t, Rename(v, ParsePointer("/user/name"), "login"))
	require.Equal(t, decode(t, `{"user":{"login":"x","id":1}}`), v)

	// The target is overwritten.
	v = decode(t, `{"a":1,"b":2}`)
	require.NoError(t, Rename(v, ParsePointer("a"), "b"))
	require.Equal(t, decode(t, `{"b":1}`), v)

	for _, tc := range []struct {
		doc, pointer string
	}{
		{`{"a":1}`, "missing"},
		{`{"a":1}`, "/a/b"},
		{`{"a":{"b":1}}`, "/b/a"},
		{`[1,2]`, "a"},
		{`"a"`, "a"},
		{`null`, "a"},
	} {
		v = decode(t, tc.doc)
		require.ErrorIs(t, Rename(v, ParsePointer(tc.pointer), "x"), ErrFieldNotFound, tc.doc)
	}
}

// TestRewriteStream checks per-line rewriting and the changed flag.
func TestRewriteStream(t *testing.T) {
	t.Parallel()

	in := []byte("{\"old\":1,\"z\":true}\n{\"other\":2}\n\n{\"old\":{\"x\":null}}\n")

	out, changed, err := RewriteStream(in, ParsePointer("old"), "new")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "{\"new\":1,\"z\":true}\n{\"other\":2}\n{\"new\":{\"x\":null}}\n", string(out))
}

// TestRewriteStream_Unchanged reports no change when no value has the field.
func TestRewriteStream_Unchanged(t *testing.T) {
	t.Parallel()

	out, changed, err := RewriteStream([]byte(`{"b":1,"a":2}`), ParsePointer("c"), "d")
	require.NoError(t, err)
	require.False(t, changed)
	// Keys come back sorted.
	require.Equal(t, "{\"a\":2,\"b\":1}\n", string(out))

	out, changed, err = RewriteStream(nil, ParsePointer("c"), "d")
	require.NoError(t, err)
	require.False(t, changed)
	require.Empty(t, out)
}

// TestRewriteStream_Fidelity keeps number text and does not escape HTML characters.
func TestRewriteStream_Fidelity(t *testing.T) {
	t.Parallel()

	in := []byte(`{"id":12345678901234567890,"ratio":1.50,"html":"<a href='x'>&</a>"}`)

	out, changed, err := RewriteStream(in, ParsePointer("id"), "key")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "{\"html\":\"<a href='x'>&</a>\",\"key\":12345678901234567890,\"ratio\":1.50}\n", string(out))
}

// TestRewriteStream_Invalid returns an error on malformed input.
func TestRewriteStream_Invalid(t *testing.T) {
	t.Parallel()

	_, _, err := RewriteStream([]byte("{\"a\":1}\n{\"a\":"), ParsePointer("a"), "b")
	require.Error(t, err)
	require.Contains(t, err.Error(), "value 2")
}
