package amd64

import "example.org/svabi/layout"

// imrInvoker wraps an Invoker built for a call whose return is conveyed
// through a hidden pointer argument, so that callers see an ordinary
// "takes the declared arguments, returns the buffer" signature instead
// of having to supply the hidden pointer themselves (spec section 4.5,
// step 7). It allocates the return buffer via alloc, prepends its
// address to args, invokes the wrapped Invoker, and yields the buffer.
type imrInvoker struct {
	inner     Invoker
	alloc     layout.Allocator
	retLayout layout.MemoryLayout
}

// NewInMemoryReturnInvoker adapts inner (built from a CallHandle whose
// Sequence.ReturnInMemory is true) into an Invoker whose Invoke method
// allocates the return buffer itself rather than requiring the caller to
// pass a hidden pointer argument.
func NewInMemoryReturnInvoker(inner Invoker, alloc layout.Allocator, retLayout layout.MemoryLayout) Invoker {
	return &imrInvoker{inner: inner, alloc: alloc, retLayout: retLayout}
}

func (w *imrInvoker) Invoke(addr uint64, args []interface{}) (interface{}, error) {
	buf, err := w.alloc.Allocate(w.retLayout)
	if err != nil {
		return nil, err
	}
	full := make([]interface{}, 0, len(args)+1)
	full = append(full, buf.BaseAddress())
	full = append(full, args...)
	if _, err := w.inner.Invoke(addr, full); err != nil {
		return nil, err
	}
	return buf, nil
}

// imrUpcallHandler is the symmetric wrapper for ArrangeUpcall: the
// target's returned native buffer is copied into the caller-provided
// destination, and the call's surface return is that destination
// pointer.
type imrUpcallHandler struct {
	inner Invoker
	copy  func(dest uint64, src layout.Buffer, size int64)
}

// NewInMemoryReturnUpcallHandler adapts a native-side call target so
// that its buffer-typed result is copied into whatever destination the
// upcall's caller supplied, per spec section 4.5's arrangeUpcall
// symmetry note.
func NewInMemoryReturnUpcallHandler(inner Invoker, copy func(dest uint64, src layout.Buffer, size int64)) UpcallHandler {
	return &imrUpcallHandler{inner: inner, copy: copy}
}

func (w *imrUpcallHandler) Handle(args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, &ArityMismatchError{HostArity: 0, CArity: 1}
	}
	dest, ok := args[0].(uint64)
	if !ok {
		return nil, &UnsupportedLayoutError{Detail: "in-memory-return upcall expects a destination address as its first argument"}
	}
	result, err := w.inner.Invoke(0, args[1:])
	if err != nil {
		return nil, err
	}
	buf, ok := result.(layout.Buffer)
	if !ok {
		return nil, &UnsupportedLayoutError{Detail: "in-memory-return target did not yield a native buffer"}
	}
	w.copy(dest, buf, buf.Layout().ByteSize())
	return dest, nil
}
