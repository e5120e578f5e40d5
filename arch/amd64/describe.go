package amd64

import (
	"fmt"
	"strings"
)

// Describe renders a CallHandle's CallingSequence as a human-readable
// summary of where each argument and the return value live, naming the
// concrete register for any binding the descriptor can resolve. It has
// no bearing on the semantics of the sequence.
func (h CallHandle) Describe() string {
	var b strings.Builder
	cs := h.Sequence
	for i, arg := range cs.Arguments {
		fmt.Fprintf(&b, "arg[%d]: %s\n", i, describeBindings(h.Descriptor, arg, false))
	}
	if cs.ReturnInMemory {
		fmt.Fprintf(&b, "return: in-memory (hidden pointer argument)\n")
	} else if cs.Return != nil {
		fmt.Fprintf(&b, "return: %s\n", describeBindings(h.Descriptor, cs.Return, true))
	} else {
		fmt.Fprintf(&b, "return: void\n")
	}
	return b.String()
}

func describeBindings(d ABIDescriptor, bindings []Binding, forReturn bool) string {
	parts := make([]string, 0, len(bindings))
	for _, bnd := range bindings {
		parts = append(parts, describeBinding(d, bnd, forReturn))
	}
	return strings.Join(parts, ", ")
}

func describeBinding(d ABIDescriptor, b Binding, forReturn bool) string {
	switch v := b.(type) {
	case Move:
		loc := describeStorage(d, v.Storage, forReturn)
		if v.Immediate != nil {
			return fmt.Sprintf("Move(%s, imm=%d)", loc, *v.Immediate)
		}
		return fmt.Sprintf("Move(%s)", loc)
	case Dereference:
		return fmt.Sprintf("Dereference(%s, off=%d, size=%d)", describeStorage(d, v.Storage, forReturn), v.Offset, v.Size)
	case BoxAddress:
		return "BoxAddress()"
	case AllocateBuffer:
		return fmt.Sprintf("AllocateBuffer(size=%d)", v.Layout.ByteSize())
	default:
		return "Unknown()"
	}
}

// describeStorage renders a VMStorage as its concrete register name when
// the descriptor has one for it (or "rax" for the sentinel vector-count
// index), falling back to the bare kind#index form for stack slots and
// out-of-range indices.
func describeStorage(d ABIDescriptor, s VMStorage, forReturn bool) string {
	if s.Kind == StorageInteger && s.Index == vectorCountRaxIndex {
		return string(RAX)
	}
	if reg, ok := d.registerFor(s, forReturn); ok {
		return string(reg)
	}
	return fmt.Sprintf("%s#%d", s.Kind, s.Index)
}
