package amd64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.org/svabi/layout"
)

func TestUnboxPointerEmitsBoxAddressThenMove(t *testing.T) {
	calc := NewStorageCalculator(DirectionArguments)
	ptr := layout.Value{Size: 8, Align: 8, Class: layout.PrimPointer}
	tc, err := Describe(ptr)
	require.NoError(t, err)

	bindings, err := unboxBindings(calc, ptr, tc)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	_, isBox := bindings[0].(BoxAddress)
	assert.True(t, isBox)
	_, isMove := bindings[1].(Move)
	assert.True(t, isMove)
}

func TestBoxPointerEmitsMoveThenBoxAddress(t *testing.T) {
	calc := NewStorageCalculator(DirectionReturn)
	ptr := layout.Value{Size: 8, Align: 8, Class: layout.PrimPointer}
	tc, err := Describe(ptr)
	require.NoError(t, err)

	bindings, err := boxBindings(calc, ptr, tc)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	_, isMove := bindings[0].(Move)
	assert.True(t, isMove)
	_, isBox := bindings[1].(BoxAddress)
	assert.True(t, isBox)
}

func TestBoxStructEmitsAllocateBufferBeforeDereferences(t *testing.T) {
	calc := NewStorageCalculator(DirectionReturn)
	st := layout.Group{
		Size:  16,
		Align: 8,
		Members: []layout.Member{
			{Layout: i64()},
			{Layout: i64()},
		},
	}
	tc, err := Describe(st)
	require.NoError(t, err)

	bindings, err := boxBindings(calc, st, tc)
	require.NoError(t, err)
	require.Len(t, bindings, 3)
	_, isAlloc := bindings[0].(AllocateBuffer)
	assert.True(t, isAlloc)
	_, isDeref1 := bindings[1].(Dereference)
	assert.True(t, isDeref1)
	_, isDeref2 := bindings[2].(Dereference)
	assert.True(t, isDeref2)
}

func TestUnboxIntegerCarrierWidthMatchesSize(t *testing.T) {
	calc := NewStorageCalculator(DirectionArguments)
	small := layout.Value{Size: 1, Align: 1, Class: layout.PrimInteger}
	tc, err := Describe(small)
	require.NoError(t, err)
	bindings, err := unboxBindings(calc, small, tc)
	require.NoError(t, err)
	mv := bindings[0].(Move)
	assert.Equal(t, CarrierInt8, mv.Carrier)
}

func TestUnboxFloatCarrierWidth(t *testing.T) {
	calc := NewStorageCalculator(DirectionArguments)
	f := layout.Value{Size: 4, Align: 4, Class: layout.PrimSSE}
	tc, err := Describe(f)
	require.NoError(t, err)
	bindings, err := unboxBindings(calc, f, tc)
	require.NoError(t, err)
	mv := bindings[0].(Move)
	assert.Equal(t, CarrierFloat32, mv.Carrier)
}
