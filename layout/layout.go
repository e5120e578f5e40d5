// Package layout defines the MemoryLayout algebra consumed by the amd64
// classifier: scalar values, fixed-length sequences (arrays), and
// structs/unions (groups), each carrying a byte size and alignment.
package layout

// PrimClass is the ABI-class annotation a Value layout must carry so the
// classifier knows which psABI bucket it starts life in.
type PrimClass int

const (
	// PrimInteger covers integral and pointer-sized scalars.
	PrimInteger PrimClass = iota
	// PrimSSE covers 32/64-bit floats.
	PrimSSE
	// PrimX87 covers 80-bit extended precision (long double).
	PrimX87
	// PrimPointer is a distinct annotation from PrimInteger so callers can
	// tell "this eightbyte is an address" apart from "this is an integer":
	// it classifies to POINTER rather than INTEGER, though both take an
	// integer register.
	PrimPointer
	// PrimComplexX87 is _Complex long double. A Group marks that case with
	// its ComplexX87 field; the classifier rejects a Value carrying this
	// annotation.
	PrimComplexX87
)

func (p PrimClass) String() string {
	switch p {
	case PrimInteger:
		return "Integer"
	case PrimSSE:
		return "SSE"
	case PrimX87:
		return "X87"
	case PrimPointer:
		return "Pointer"
	case PrimComplexX87:
		return "ComplexX87"
	default:
		return "Unknown"
	}
}

// MemoryLayout is the closed algebra the classifier walks: a Value, a
// Sequence, or a Group. It is implemented only by the types in this
// package; callers build trees of these, never satisfy the interface
// themselves.
type MemoryLayout interface {
	// ByteSize returns the layout's size in bytes.
	ByteSize() int64
	// Alignment returns the layout's required alignment in bytes.
	Alignment() int64
	isMemoryLayout()
}

// Value is a leaf scalar: an integer, pointer, or floating-point datum
// annotated with the ABI class it starts classification as.
type Value struct {
	Size  int64
	Align int64
	Class PrimClass
	Name  string
}

func (v Value) ByteSize() int64  { return v.Size }
func (v Value) Alignment() int64 { return v.Align }
func (Value) isMemoryLayout()    {}

// Sequence is a fixed-length, fixed-stride array of a single element
// layout.
type Sequence struct {
	Element MemoryLayout
	Count   int64
	Name    string
}

func (s Sequence) ByteSize() int64 {
	return s.Element.ByteSize() * s.Count
}

func (s Sequence) Alignment() int64 { return s.Element.Alignment() }
func (Sequence) isMemoryLayout()    {}

// Member is one element of a Group: either a real field (Layout non-nil,
// Padding false) or a padding run inserted by the caller to make offsets
// explicit (in which case it is skipped during classification).
type Member struct {
	Layout  MemoryLayout
	Padding bool
	Name    string
}

// Group is a struct or union: an ordered list of members sharing a base
// offset (union) or laid out consecutively (struct).
type Group struct {
	Members    []Member
	IsUnion    bool
	Size       int64
	Align      int64
	ComplexX87 bool
	Name       string
}

func (g Group) ByteSize() int64  { return g.Size }
func (g Group) Alignment() int64 { return g.Align }
func (Group) isMemoryLayout()    {}

// AlignUp rounds size up to the next multiple of align. align must be a
// positive power of two.
func AlignUp(size, align int64) int64 {
	return (size + align - 1) &^ (align - 1)
}

// Align computes the offset at which the next member of a group should be
// considered to start, given the running offset and that member's own
// alignment. For a union the offset never advances past 0, since all
// members overlay the base; callers that need that behaviour should not
// call Align and instead keep offset fixed at 0 — this helper exists for
// the struct case and for sequence element strides.
func Align(offset, memberAlign int64) int64 {
	return AlignUp(offset, memberAlign)
}

// IsPadding reports whether a member should be skipped during
// classification.
func IsPadding(m Member) bool {
	return m.Padding
}
