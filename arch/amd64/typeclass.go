package amd64

import "example.org/svabi/layout"

// Describe classifies layout l and summarizes the result into a
// TypeClass, combining classifyType and classifyLayout into a single
// convenience entry point for callers that are not the top-level call
// arranger.
func Describe(l layout.MemoryLayout) (TypeClass, error) {
	classes, err := classifyType(l)
	if err != nil {
		return TypeClass{}, err
	}
	return classifyLayout(l, classes)
}

// classifyLayout collapses a layout's raw class vector plus its top-level
// kind into the small discriminated TypeClass the binding calculator
// consumes.
func classifyLayout(l layout.MemoryLayout, classes []ArgumentClass) (TypeClass, error) {
	switch l.(type) {
	case layout.Value:
		if len(classes) != 1 {
			return TypeClass{}, &UnsupportedLayoutError{Detail: "Value layout classified to more than one eightbyte"}
		}
		switch classes[0] {
		case Pointer:
			return TypeClass{Kind: KindPointer, Classes: classes}, nil
		case Integer:
			return TypeClass{Kind: KindInteger, Classes: classes}, nil
		case SSE:
			return TypeClass{Kind: KindFloat, Classes: classes}, nil
		default:
			return TypeClass{}, &UnsupportedLayoutError{Detail: "Value layout classified to an unexpected class " + classes[0].String()}
		}
	case layout.Group:
		return TypeClass{Kind: KindStruct, Classes: classes}, nil
	default:
		// Sequence layouts are not summarised at top level; they only
		// appear nested inside a Group or Sequence member.
		return TypeClass{}, &UnsupportedLayoutError{Detail: "layout kind is not summarisable at top level"}
	}
}
