package amd64

import "example.org/svabi/layout"

// CDescriptor is the native side of a call: the C argument layouts, an
// optional return layout (nil for void), and whether the callee is
// variadic (which only affects whether the trailing vector-count
// argument is meaningful — it is always appended).
type CDescriptor struct {
	Arguments []layout.MemoryLayout
	Return    layout.MemoryLayout
	Variadic  bool
}

// HostSignature is the minimal shape of the host-side call the arranger
// checks the CDescriptor against.
type HostSignature struct {
	Arity     int
	HasReturn bool
}

// CallingSequence is the finished, immutable product of ArrangeDowncall
// or ArrangeUpcall: one binding list per argument (including any
// synthetic ones), an optional return binding list, and whether the
// return is conveyed via a hidden in-memory buffer.
type CallingSequence struct {
	Arguments      [][]Binding
	Return         []Binding
	ReturnInMemory bool
}

// Invoker is the external collaborator that actually performs the native
// CALL given a finished CallingSequence — constructing and executing it
// is explicitly out of scope for this package.
type Invoker interface {
	Invoke(addr uint64, args []interface{}) (interface{}, error)
}

// UpcallHandler is the external collaborator that lets native code call
// back into a host-provided function via an arranged CallingSequence.
type UpcallHandler interface {
	Handle(args []interface{}) (interface{}, error)
}

// CallHandle is a call-site artifact: a finished CallingSequence bound to
// the ABI descriptor and target address it was arranged for. Its
// lifetime is owned by the caller.
type CallHandle struct {
	Addr       uint64
	Descriptor ABIDescriptor
	Sequence   CallingSequence
}

// hiddenReturnPointerLayout is the synthetic layout classified for the
// hidden in-memory-return argument: a plain pointer.
var hiddenReturnPointerLayout = layout.Value{Size: 8, Align: 8, Class: layout.PrimPointer, Name: "<return-buffer>"}

// returnIsInMemory decides whether ret classifies to MEMORY and so must
// be returned via a hidden pointer rather than registers.
func returnIsInMemory(ret layout.MemoryLayout) (bool, error) {
	if ret == nil {
		return false, nil
	}
	if _, ok := ret.(layout.Group); !ok {
		return false, nil
	}
	classes, err := classifyType(ret)
	if err != nil {
		return false, err
	}
	for _, c := range classes {
		if c == Memory {
			return true, nil
		}
	}
	return false, nil
}

// checkPreconditions validates the arity and return-presence agreement
// between a host signature and a C descriptor (spec section 4.5,
// preconditions for arrangeDowncall/arrangeUpcall).
func checkPreconditions(host HostSignature, c CDescriptor) error {
	if host.Arity != len(c.Arguments) {
		return &ArityMismatchError{HostArity: host.Arity, CArity: len(c.Arguments)}
	}
	if host.HasReturn != (c.Return != nil) {
		return &ReturnPresenceMismatchError{HostHasReturn: host.HasReturn, CHasReturn: c.Return != nil}
	}
	return nil
}

// arrangeCallingSequence builds the CallingSequence shared by
// ArrangeDowncall and ArrangeUpcall. argBindings/retBindings select
// unbox or box for each direction: downcalls unbox arguments and box the
// return; upcalls box arguments and unbox the return.
func arrangeCallingSequence(
	c CDescriptor,
	argBindings func(*StorageCalculator, layout.MemoryLayout, TypeClass) ([]Binding, error),
	retBindings func(*StorageCalculator, layout.MemoryLayout, TypeClass) ([]Binding, error),
) (CallingSequence, error) {
	imr, err := returnIsInMemory(c.Return)
	if err != nil {
		return CallingSequence{}, err
	}

	argCalc := NewStorageCalculator(DirectionArguments)

	var arguments [][]Binding

	if imr {
		tc, err := Describe(hiddenReturnPointerLayout)
		if err != nil {
			return CallingSequence{}, err
		}
		b, err := argBindings(argCalc, hiddenReturnPointerLayout, tc)
		if err != nil {
			return CallingSequence{}, err
		}
		arguments = append(arguments, b)
	}

	// If IMR, the return is conveyed through the hidden pointer argument
	// already added above; there are no direct return bindings.
	var retSeq []Binding
	if !imr && c.Return != nil {
		retCalc := NewStorageCalculator(DirectionReturn)
		tc, err := Describe(c.Return)
		if err != nil {
			return CallingSequence{}, err
		}
		retSeq, err = retBindings(retCalc, c.Return, tc)
		if err != nil {
			return CallingSequence{}, err
		}
	}

	for _, argLayout := range c.Arguments {
		tc, err := Describe(argLayout)
		if err != nil {
			return CallingSequence{}, err
		}
		b, err := argBindings(argCalc, argLayout, tc)
		if err != nil {
			return CallingSequence{}, err
		}
		arguments = append(arguments, b)
	}

	// Synthetic trailing argument: the psABI-mandated AL/RAX vector
	// register count, used by variadic calls and harmless otherwise.
	// It is addressed to rax regardless of how many integer argument
	// registers the real arguments consumed — it is not itself drawn
	// from the integer argument storage calculator.
	count := int64(argCalc.VectorRegsUsed())
	arguments = append(arguments, []Binding{
		Move{
			Storage:   VMStorage{Kind: StorageInteger, Index: vectorCountRaxIndex},
			Carrier:   CarrierInt64,
			Immediate: &count,
		},
	})

	return CallingSequence{
		Arguments:      arguments,
		Return:         retSeq,
		ReturnInMemory: imr,
	}, nil
}

// vectorCountRaxIndex is a sentinel integer-register index reserved for
// the AL/RAX vector-count binding; it deliberately falls outside the
// 0..5 range nextStorage ever hands out for ordinary integer arguments,
// so it cannot be confused with a real argument register.
const vectorCountRaxIndex = 6

// ArrangeDowncall builds the calling sequence for a call from the host
// runtime into native code at addr (spec section 4.5).
func ArrangeDowncall(addr uint64, host HostSignature, c CDescriptor) (CallHandle, error) {
	if err := checkPreconditions(host, c); err != nil {
		return CallHandle{}, err
	}
	seq, err := arrangeCallingSequence(c, unboxBindings, boxBindings)
	if err != nil {
		return CallHandle{}, err
	}
	return CallHandle{Addr: addr, Descriptor: NewABIDescriptor(), Sequence: seq}, nil
}

// ArrangeUpcall builds the calling sequence for native code calling back
// into a host-provided function (spec section 4.5). It is symmetric to
// ArrangeDowncall: box for arguments, unbox for the return.
func ArrangeUpcall(target uint64, host HostSignature, c CDescriptor) (CallHandle, error) {
	if err := checkPreconditions(host, c); err != nil {
		return CallHandle{}, err
	}
	seq, err := arrangeCallingSequence(c, boxBindings, unboxBindings)
	if err != nil {
		return CallHandle{}, err
	}
	return CallHandle{Addr: target, Descriptor: NewABIDescriptor(), Sequence: seq}, nil
}
