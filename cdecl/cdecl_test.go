package cdecl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.org/svabi/layout"
)

func TestParseSimpleIntFunction(t *testing.T) {
	sig, err := ParseFunction("int add(int a, int b);", "add")
	require.NoError(t, err)
	require.Len(t, sig.Params, 2)
	for _, p := range sig.Params {
		v, ok := p.(layout.Value)
		require.True(t, ok)
		assert.Equal(t, layout.PrimInteger, v.Class)
	}
	require.NotNil(t, sig.Return)
	retVal, ok := sig.Return.(layout.Value)
	require.True(t, ok)
	assert.Equal(t, layout.PrimInteger, retVal.Class)
}

func TestParseStructByValueFunction(t *testing.T) {
	src := `
struct point { long x; long y; };
void move(struct point p);
`
	sig, err := ParseFunction(src, "move")
	require.NoError(t, err)
	require.Len(t, sig.Params, 1)
	g, ok := sig.Params[0].(layout.Group)
	require.True(t, ok)
	assert.Len(t, g.Members, 2)
	assert.Equal(t, int64(16), g.Size)
}

func TestParseMissingFunctionErrors(t *testing.T) {
	_, err := ParseFunction("int add(int a, int b);", "subtract")
	require.Error(t, err)
}

func TestParseLongDoubleIsRejected(t *testing.T) {
	_, err := ParseFunction("long double scale(long double x);", "scale")
	require.Error(t, err)
}

func TestParseVariadicFunction(t *testing.T) {
	sig, err := ParseFunction("int printf(const char *fmt, ...);", "printf")
	require.NoError(t, err)
	assert.True(t, sig.Variadic)
}
