package amd64

import (
	"github.com/samber/lo"

	"example.org/svabi/layout"
)

// classifyType walks a layout tree and returns its per-eightbyte psABI
// class vector. This is the classifier at the heart of System V AMD64
// argument passing: see the System V AMD64 ABI, section 3.2.3.
func classifyType(l layout.MemoryLayout) ([]ArgumentClass, error) {
	switch v := l.(type) {
	case layout.Value:
		return classifyValue(v)
	case layout.Sequence:
		return classifySequence(v)
	case layout.Group:
		return classifyGroup(v)
	default:
		return nil, &UnsupportedLayoutError{Detail: "unrecognized layout node kind"}
	}
}

func classifyValue(v layout.Value) ([]ArgumentClass, error) {
	switch v.Class {
	case layout.PrimPointer:
		return []ArgumentClass{Pointer}, nil
	case layout.PrimInteger:
		n := int(layout.AlignUp(v.Size, 8) / 8)
		if n < 1 {
			n = 1
		}
		return lo.RepeatBy(n, func(int) ArgumentClass { return Integer }), nil
	case layout.PrimSSE:
		return []ArgumentClass{SSE}, nil
	case layout.PrimX87:
		return []ArgumentClass{X87, X87Up}, nil
	default:
		return nil, &UnsupportedLayoutError{Detail: "Value layout missing a valid ABI-class annotation"}
	}
}

func classifySequence(s layout.Sequence) ([]ArgumentClass, error) {
	nWords := int(layout.AlignUp(s.ByteSize(), 8) / 8)
	if nWords == 0 {
		nWords = 1
	}
	if nWords > 8 {
		return memoryVector(nWords), nil
	}

	classes := lo.RepeatBy(nWords, func(int) ArgumentClass { return NoClass })

	elemSize := s.Element.ByteSize()
	elemAlign := s.Element.Alignment()
	offset := int64(0)
	for i := int64(0); i < s.Count; i++ {
		offset = layout.Align(offset, elemAlign)
		sub, err := classifyType(s.Element)
		if err != nil {
			return nil, err
		}
		if err := mergeInto(classes, sub, offset); err != nil {
			return nil, err
		}
		offset += elemSize
	}

	return applyPsAbiFixups(classes)
}

func classifyGroup(g layout.Group) ([]ArgumentClass, error) {
	if g.ComplexX87 {
		return []ArgumentClass{X87, X87Up, X87, X87Up}, nil
	}

	nWords := int(layout.AlignUp(g.ByteSize(), 8) / 8)
	if nWords == 0 {
		nWords = 1
	}
	if nWords > 8 {
		return memoryVector(nWords), nil
	}

	classes := lo.RepeatBy(nWords, func(int) ArgumentClass { return NoClass })

	offset := int64(0)
	for _, m := range g.Members {
		if layout.IsPadding(m) {
			// Padding still occupies space for a struct; a union has none
			// to begin with, since every member already overlays offset 0.
			if !g.IsUnion {
				offset += m.Layout.ByteSize()
			}
			continue
		}
		if !g.IsUnion {
			offset = layout.Align(offset, m.Layout.Alignment())
		}
		sub, err := classifyType(m.Layout)
		if err != nil {
			return nil, err
		}
		if err := mergeInto(classes, sub, offset); err != nil {
			return nil, err
		}
		if !g.IsUnion {
			offset += m.Layout.ByteSize()
		}
		// Union members all overlay offset 0; do not advance.
	}

	return applyPsAbiFixups(classes)
}

// mergeInto merges sub's eightbyte classes into classes starting at the
// eightbyte containing byteOffset.
func mergeInto(classes []ArgumentClass, sub []ArgumentClass, byteOffset int64) error {
	base := int(byteOffset / 8)
	for i, c := range sub {
		idx := base + i
		if idx >= len(classes) {
			// A member straddling past the computed word count is a
			// malformed layout — sizes/offsets disagree.
			return &MalformedLayoutError{Detail: "member classification overruns aggregate eightbyte count"}
		}
		classes[idx] = mergeClass(classes[idx], c)
	}
	return nil
}

// mergeClass implements the psABI merge rules (System V AMD64 ABI,
// section 3.2.3, rule (4)(c), sub-rules a-f).
func mergeClass(a, b ArgumentClass) ArgumentClass {
	// (a) If both classes are equal, this is the resulting class.
	if a == b {
		return a
	}

	// (b) If one of the classes is NO_CLASS, the resulting class is the
	// other class.
	if a == NoClass {
		return b
	}
	if b == NoClass {
		return a
	}

	// (c) If one of the classes is MEMORY, the result is MEMORY.
	if a == Memory || b == Memory {
		return Memory
	}

	// (d) If one of the classes is INTEGER, the result is INTEGER. POINTER
	// is treated as part of the same integer-register family: it survives
	// as a distinct class only when merged with NO_CLASS or another
	// POINTER, and merged with any other class reaching this point (SSE,
	// SSEUP or the X87 family) it becomes INTEGER. A pointer-only
	// eightbyte thus stays POINTER all the way to structStorages.
	if a == Integer || b == Integer {
		return Integer
	}
	if a == Pointer && b == Pointer {
		return Pointer
	}
	if a == Pointer || b == Pointer {
		return Integer
	}

	// (e) If one of the classes is X87, X87UP, COMPLEX_X87, MEMORY is
	// used as class.
	if isX87Family(a) || isX87Family(b) {
		return Memory
	}

	// (f) Otherwise class SSE is used.
	return SSE
}

func isX87Family(c ArgumentClass) bool {
	return c == X87 || c == X87Up || c == ComplexX87
}

// applyPsAbiFixups applies the post-classification fixups shared by the
// array and group cases (System V AMD64 ABI, section 3.2.3, rule (5)).
func applyPsAbiFixups(classes []ArgumentClass) ([]ArgumentClass, error) {
	n := len(classes)

	// (1) If any slot is MEMORY, the whole aggregate is MEMORY.
	for _, c := range classes {
		if c == Memory {
			return memoryVector(n), nil
		}
	}

	// (2) If any X87UP is not immediately preceded by X87, the whole
	// aggregate is MEMORY; a leading X87UP is a hard error signalling
	// malformed input rather than a degradation to MEMORY.
	if n > 0 && classes[0] == X87Up {
		return nil, &MalformedLayoutError{Detail: "leading X87UP with no preceding X87"}
	}
	for i := 1; i < n; i++ {
		if classes[i] == X87Up && classes[i-1] != X87 {
			return memoryVector(n), nil
		}
	}

	// (c) If more than two eightbytes, the first must be SSE and all
	// following must be SSEUP, else MEMORY.
	if n > 2 {
		if classes[0] != SSE {
			return memoryVector(n), nil
		}
		for i := 1; i < n; i++ {
			if classes[i] != SSEUp {
				return memoryVector(n), nil
			}
		}
	}

	return classes, nil
}

func memoryVector(n int) []ArgumentClass {
	return lo.RepeatBy(n, func(int) ArgumentClass { return Memory })
}
