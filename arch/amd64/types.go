// Package amd64 implements the System V AMD64 call arranger: classifying
// MemoryLayout trees into per-eightbyte ABI classes, assigning argument
// and return storages, and emitting the ordered bindings a downcall or
// upcall invoker executes to marshal data between a host carrier and the
// machine's registers and stack.
package amd64

// ArgumentClass is one eightbyte's psABI classification.
type ArgumentClass int

const (
	NoClass ArgumentClass = iota
	Integer
	SSE
	SSEUp
	X87
	X87Up
	ComplexX87
	Pointer
	Memory
)

func (c ArgumentClass) String() string {
	switch c {
	case NoClass:
		return "NO_CLASS"
	case Integer:
		return "INTEGER"
	case SSE:
		return "SSE"
	case SSEUp:
		return "SSEUP"
	case X87:
		return "X87"
	case X87Up:
		return "X87UP"
	case ComplexX87:
		return "COMPLEX_X87"
	case Pointer:
		return "POINTER"
	case Memory:
		return "MEMORY"
	default:
		return "UNKNOWN"
	}
}

// TypeClassKind is the summarized top-level shape of an argument or
// return value, after classification.
type TypeClassKind int

const (
	KindStruct TypeClassKind = iota
	KindPointer
	KindInteger
	KindFloat
)

func (k TypeClassKind) String() string {
	switch k {
	case KindStruct:
		return "STRUCT"
	case KindPointer:
		return "POINTER"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// TypeClass is the summarized descriptor consumed by the binding
// calculator: a top-level Kind plus the raw per-eightbyte class vector
// that produced it (meaningful mainly for KindStruct).
type TypeClass struct {
	Kind    TypeClassKind
	Classes []ArgumentClass
}

// StorageKind discriminates the three places a value piece can live.
type StorageKind int

const (
	StorageInteger StorageKind = iota
	StorageVector
	StorageStack
)

func (k StorageKind) String() string {
	switch k {
	case StorageInteger:
		return "integer"
	case StorageVector:
		return "vector"
	case StorageStack:
		return "stack"
	default:
		return "unknown"
	}
}

// VMStorage is a single allocated location: an integer register index,
// a vector register index, or a stack slot index (8-byte granularity).
type VMStorage struct {
	Kind  StorageKind
	Index int
}
