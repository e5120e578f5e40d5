package amd64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.org/svabi/layout"
)

func int64Layout(name string) layout.Value {
	return layout.Value{Size: 8, Align: 8, Class: layout.PrimInteger, Name: name}
}

func floatLayout(name string) layout.Value {
	return layout.Value{Size: 4, Align: 4, Class: layout.PrimSSE, Name: name}
}

func doubleLayout(name string) layout.Value {
	return layout.Value{Size: 8, Align: 8, Class: layout.PrimSSE, Name: name}
}

func TestClassifyValueInteger(t *testing.T) {
	classes, err := classifyType(int64Layout("x"))
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Integer}, classes)
}

func TestClassifyValuePointer(t *testing.T) {
	classes, err := classifyType(layout.Value{Size: 8, Align: 8, Class: layout.PrimPointer})
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Pointer}, classes)
}

func TestClassifyTwoInt64Struct(t *testing.T) {
	g := layout.Group{
		Size:  16,
		Align: 8,
		Members: []layout.Member{
			{Layout: int64Layout("a")},
			{Layout: int64Layout("b")},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Integer, Integer}, classes)
}

func TestClassifyThreeInt64StructIsMemory(t *testing.T) {
	g := layout.Group{
		Size:  24,
		Align: 8,
		Members: []layout.Member{
			{Layout: int64Layout("a")},
			{Layout: int64Layout("b")},
			{Layout: int64Layout("c")},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Memory, Memory, Memory}, classes)
}

func TestClassifyTwoFloatStructIsSingleSSE(t *testing.T) {
	g := layout.Group{
		Size:  8,
		Align: 4,
		Members: []layout.Member{
			{Layout: floatLayout("a")},
			{Layout: floatLayout("b")},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{SSE}, classes)
}

func TestClassifyUnionDoesNotAdvanceOffset(t *testing.T) {
	// A union of two int64 fields at offset 0 should classify as one
	// eightbyte, not two: the merge loop must not advance offset between
	// members for a union.
	g := layout.Group{
		IsUnion: true,
		Size:    8,
		Align:   8,
		Members: []layout.Member{
			{Layout: int64Layout("a")},
			{Layout: int64Layout("b")},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Integer}, classes)
}

func TestClassifyPaddingMemberSkipped(t *testing.T) {
	g := layout.Group{
		Size:  8,
		Align: 4,
		Members: []layout.Member{
			{Layout: floatLayout("a")},
			{Padding: true, Layout: layout.Value{Size: 4, Align: 4, Class: layout.PrimInteger}},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{SSE}, classes)
}

func TestClassifyPaddingMemberAdvancesOffset(t *testing.T) {
	// struct s { char c; long x; }; (16B, x at offset 8), with x given
	// 1-byte alignment so that only the explicit padding member, not x's
	// own alignment, moves it to offset 8: the padding member
	// representing the 7-byte gap must still occupy space, or x merges
	// back into the char's eightbyte instead of classifying its own.
	g := layout.Group{
		Size:  16,
		Align: 8,
		Members: []layout.Member{
			{Layout: layout.Value{Size: 1, Align: 1, Class: layout.PrimInteger}},
			{Padding: true, Layout: layout.Value{Size: 7, Align: 1, Class: layout.PrimInteger}},
			{Layout: layout.Value{Size: 8, Align: 1, Class: layout.PrimInteger, Name: "x"}},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Integer, Integer}, classes)
}

func TestClassifyStructAlignsMembersWithoutExplicitPadding(t *testing.T) {
	// A hand-built Group{int32; int64} with no explicit padding member:
	// the second member must still align to its own 8-byte alignment
	// rather than packing immediately after the first 4 bytes.
	g := layout.Group{
		Size:  16,
		Align: 8,
		Members: []layout.Member{
			{Layout: layout.Value{Size: 4, Align: 4, Class: layout.PrimInteger}},
			{Layout: int64Layout("x")},
		},
	}
	classes, err := classifyType(g)
	require.NoError(t, err)
	assert.Equal(t, []ArgumentClass{Integer, Integer}, classes)
}

func TestClassifyLeadingX87UpIsMalformed(t *testing.T) {
	_, err := applyPsAbiFixups([]ArgumentClass{X87Up, NoClass})
	require.Error(t, err)
	var malformed *MalformedLayoutError
	assert.ErrorAs(t, err, &malformed)
}

func TestClassifyOverEightWordsIsMemory(t *testing.T) {
	members := make([]layout.Member, 0, 9)
	for i := 0; i < 9; i++ {
		members = append(members, layout.Member{Layout: int64Layout("f")})
	}
	g := layout.Group{Size: 72, Align: 8, Members: members}
	classes, err := classifyType(g)
	require.NoError(t, err)
	for _, c := range classes {
		assert.Equal(t, Memory, c)
	}
	assert.Len(t, classes, 9)
}

func TestClassifyValueMissingAnnotationIsUnsupported(t *testing.T) {
	_, err := classifyType(layout.Value{Size: 8, Align: 8, Class: layout.PrimClass(99)})
	require.Error(t, err)
	var unsupported *UnsupportedLayoutError
	assert.ErrorAs(t, err, &unsupported)
}

func TestDescribeSummarizesStructWithClasses(t *testing.T) {
	g := layout.Group{
		Size:  16,
		Align: 8,
		Members: []layout.Member{
			{Layout: int64Layout("a")},
			{Layout: int64Layout("b")},
		},
	}
	tc, err := Describe(g)
	require.NoError(t, err)
	assert.Equal(t, KindStruct, tc.Kind)
	assert.Equal(t, []ArgumentClass{Integer, Integer}, tc.Classes)
}

func TestDescribeValueKinds(t *testing.T) {
	tc, err := Describe(int64Layout("x"))
	require.NoError(t, err)
	assert.Equal(t, KindInteger, tc.Kind)

	tc, err = Describe(doubleLayout("x"))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, tc.Kind)

	tc, err = Describe(layout.Value{Size: 8, Align: 8, Class: layout.PrimPointer})
	require.NoError(t, err)
	assert.Equal(t, KindPointer, tc.Kind)
}
