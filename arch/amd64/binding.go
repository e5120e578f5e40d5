package amd64

import "example.org/svabi/layout"

// CarrierKind describes the width/type of value a Move binding carries,
// driving the move's size.
type CarrierKind int

const (
	CarrierInt8 CarrierKind = iota
	CarrierInt16
	CarrierInt32
	CarrierInt64
	CarrierFloat32
	CarrierFloat64
	CarrierBuffer // the native-buffer carrier, used for STRUCT Dereference chunks
)

// Binding is a closed sum type: every concrete binding below implements
// it, and nothing else may.
type Binding interface {
	isBinding()
}

// Move copies a scalar value directly to or from Storage. Immediate is
// nil for an ordinary argument/return move (the value flows from the
// host carrier or native register); it is non-nil only for the
// synthetic trailing vector-register-count argument, which carries a
// literal known at arrangement time rather than a value supplied by
// either side.
type Move struct {
	Storage   VMStorage
	Carrier   CarrierKind
	Immediate *int64
}

func (Move) isBinding() {}

// Dereference reads or writes an 8-byte-or-smaller chunk of a native
// buffer at Offset, to or from Storage.
type Dereference struct {
	Storage VMStorage
	Offset  int64
	Size    int64
}

func (Dereference) isBinding() {}

// BoxAddress converts between a host address handle and its raw integer
// representation.
type BoxAddress struct{}

func (BoxAddress) isBinding() {}

// AllocateBuffer materialises a native buffer sized for Layout before the
// dereferencing chunk moves that follow it populate it.
type AllocateBuffer struct {
	Layout layout.MemoryLayout
}

func (AllocateBuffer) isBinding() {}

// carrierForSize picks the smallest integer carrier kind that covers
// size bytes, for a non-struct scalar Move.
func carrierForSize(size int64) CarrierKind {
	switch {
	case size <= 1:
		return CarrierInt8
	case size <= 2:
		return CarrierInt16
	case size <= 4:
		return CarrierInt32
	default:
		return CarrierInt64
	}
}

// unboxBindings emits the binding list that moves a host carrier value
// into native storage — used for downcall arguments and upcall returns.
func unboxBindings(calc *StorageCalculator, l layout.MemoryLayout, tc TypeClass) ([]Binding, error) {
	switch tc.Kind {
	case KindPointer:
		storage := calc.nextStorage(StorageInteger)
		return []Binding{
			BoxAddress{},
			Move{Storage: storage, Carrier: CarrierInt64},
		}, nil

	case KindInteger:
		storage := calc.nextStorage(StorageInteger)
		return []Binding{Move{Storage: storage, Carrier: carrierForSize(l.ByteSize())}}, nil

	case KindFloat:
		storage := calc.nextStorage(StorageVector)
		carrier := CarrierFloat64
		if l.ByteSize() <= 4 {
			carrier = CarrierFloat32
		}
		return []Binding{Move{Storage: storage, Carrier: carrier}}, nil

	case KindStruct:
		storages := calc.structStorages(tc)
		return derefChunks(storages, l.ByteSize()), nil

	default:
		return nil, &UnsupportedLayoutError{Detail: "binding calculator cannot unbox TypeClass kind " + tc.Kind.String()}
	}
}

// boxBindings emits the binding list that moves a value out of native
// storage into a host carrier — used for downcall returns and upcall
// arguments. It mirrors unboxBindings with the BoxAddress/Move order
// reversed for pointers, and a leading AllocateBuffer for structs.
func boxBindings(calc *StorageCalculator, l layout.MemoryLayout, tc TypeClass) ([]Binding, error) {
	switch tc.Kind {
	case KindPointer:
		storage := calc.nextStorage(StorageInteger)
		return []Binding{
			Move{Storage: storage, Carrier: CarrierInt64},
			BoxAddress{},
		}, nil

	case KindInteger:
		storage := calc.nextStorage(StorageInteger)
		return []Binding{Move{Storage: storage, Carrier: carrierForSize(l.ByteSize())}}, nil

	case KindFloat:
		storage := calc.nextStorage(StorageVector)
		carrier := CarrierFloat64
		if l.ByteSize() <= 4 {
			carrier = CarrierFloat32
		}
		return []Binding{Move{Storage: storage, Carrier: carrier}}, nil

	case KindStruct:
		storages := calc.structStorages(tc)
		bindings := make([]Binding, 0, len(storages)+1)
		bindings = append(bindings, AllocateBuffer{Layout: l})
		bindings = append(bindings, derefChunks(storages, l.ByteSize())...)
		return bindings, nil

	default:
		return nil, &UnsupportedLayoutError{Detail: "binding calculator cannot box TypeClass kind " + tc.Kind.String()}
	}
}

// derefChunks walks 8-byte-aligned offsets from 0 to byteSize, pairing
// each with its allocated storage.
func derefChunks(storages []VMStorage, byteSize int64) []Binding {
	bindings := make([]Binding, 0, len(storages))
	offset := int64(0)
	for _, storage := range storages {
		size := byteSize - offset
		if size > 8 {
			size = 8
		}
		bindings = append(bindings, Dereference{Storage: storage, Offset: offset, Size: size})
		offset += 8
	}
	return bindings
}
