package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		token    string
		expected HTTPMethod
	}{
		{"GET", MethodGet},
		{"get", MethodGet},
		{"Post", MethodPost},
		{"PUT", MethodPut},
		{"delete", MethodDelete},
		{"HEAD", MethodHead},
		{"options", MethodOptions},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			m, err := ParseMethod(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestParseMethodRejectsUnknownTokens(t *testing.T) {
	for _, token := range []string{"FOO", "PATCH", "", "GETS"} {
		_, err := ParseMethod(token)
		require.Error(t, err, token)

		var unknown *UnknownMethodError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, token, unknown.Raw)
	}
}

func TestUnknownMethodMessage(t *testing.T) {
	_, err := ParseMethod("FOO")
	require.Error(t, err)
	assert.Equal(t,
		"invalid HTTP method 'FOO'. Valid HTTP method values are GET, POST, PUT, DELETE, HEAD or OPTIONS",
		err.Error())
}

func TestMethodStringRoundTrip(t *testing.T) {
	for _, m := range Methods() {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	assert.Equal(t, "HTTPMethod(42)", HTTPMethod(42).String())
}

func TestMethodTextMarshaling(t *testing.T) {
	text, err := MethodDelete.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "DELETE", string(text))

	var m HTTPMethod
	require.NoError(t, m.UnmarshalText([]byte("head")))
	assert.Equal(t, MethodHead, m)

	assert.Error(t, m.UnmarshalText([]byte("TRACE")))
	_, err = HTTPMethod(-1).MarshalText()
	assert.Error(t, err)
}

func TestRenderMethods(t *testing.T) {
	assert.Equal(t, "GET, POST, PUT, DELETE, HEAD or OPTIONS", RenderMethods())
	assert.Equal(t, "GET or POST", RenderMethods(MethodGet, MethodPost))
	assert.Equal(t, "PUT", RenderMethods(MethodPut))
}

func TestJoinOr(t *testing.T) {
	assert.Equal(t, "", JoinOr(nil))
	assert.Equal(t, "A", JoinOr([]string{"A"}))
	assert.Equal(t, "A or B", JoinOr([]string{"A", "B"}))
	assert.Equal(t, "A, B or C", JoinOr([]string{"A", "B", "C"}))
}
