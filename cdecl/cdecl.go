// Package cdecl turns a real C function prototype, plus the struct and
// union definitions it depends on, into the layout.MemoryLayout trees
// the amd64 classifier consumes. It is the "where do layouts come from"
// front door this repository supplies on top of the core call-arranging
// pipeline: a caller who has C headers, not hand-built layout literals,
// starts here.
package cdecl

import (
	"fmt"
	"runtime"

	cc "modernc.org/cc/v4"

	"example.org/svabi/layout"
)

// FunctionSignature is a parsed C function prototype: its parameter
// layouts in order, its return layout (nil for void), and whether it is
// declared variadic (trailing `...`).
type FunctionSignature struct {
	Name     string
	Params   []layout.MemoryLayout
	Return   layout.MemoryLayout
	Variadic bool
}

// ParseFunction parses source (a C translation unit, typically a
// concatenation of the headers a binding needs plus the one prototype of
// interest) and returns the signature of the function named fn.
func ParseFunction(source, fn string) (*FunctionSignature, error) {
	cfg, err := cc.NewConfig(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("configuring C parser: %w", err)
	}
	ast, err := cc.Parse(cfg, []cc.Source{{Name: "<cdecl>", Value: source}})
	if err != nil {
		return nil, fmt.Errorf("parsing C source: %w", err)
	}

	decl, ok := findFunctionDeclarator(ast, fn)
	if !ok {
		return nil, fmt.Errorf("cdecl: function %q not found in source", fn)
	}

	return signatureFromDeclarator(fn, decl)
}

// declaratorInfo is the minimal shape this package needs out of a
// matched cc.Declarator: its resolved cc.Type, which already carries
// full parameter/return/struct-layout information after cc/v4 has run
// its semantic pass.
type declaratorInfo struct {
	typ cc.Type
}

// findFunctionDeclarator walks the parsed translation unit's top-level
// scope for a function declarator named fn. cc/v4 resolves the full
// function type (parameters, return type, variadic-ness) during
// parsing, so once the declarator is found the rest of this package only
// has to interpret its cc.Type.
func findFunctionDeclarator(ast *cc.AST, fn string) (declaratorInfo, bool) {
	for name, node := range ast.Scope.Nodes {
		if name != fn {
			continue
		}
		for _, n := range node {
			d, ok := n.(*cc.Declarator)
			if !ok {
				continue
			}
			t := d.Type()
			if t != nil && t.Kind() == cc.Function {
				return declaratorInfo{typ: t}, true
			}
		}
	}
	return declaratorInfo{}, false
}

func signatureFromDeclarator(name string, d declaratorInfo) (*FunctionSignature, error) {
	ft := d.typ

	sig := &FunctionSignature{Name: name, Variadic: ft.IsVariadic()}

	if ret := ft.Result(); ret != nil && ret.Kind() != cc.Void {
		retLayout, err := typeToLayout(ret)
		if err != nil {
			return nil, fmt.Errorf("return type of %q: %w", name, err)
		}
		sig.Return = retLayout
	}

	n := ft.NumParam()
	sig.Params = make([]layout.MemoryLayout, 0, n)
	for i := 0; i < n; i++ {
		pt := ft.Parameter(i)
		pl, err := typeToLayout(pt)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %q: %w", i, name, err)
		}
		sig.Params = append(sig.Params, pl)
	}

	return sig, nil
}

// typeToLayout converts a resolved cc.Type into the layout.MemoryLayout
// the amd64 classifier understands. Bit-fields, zero-length arrays, and
// long double are not handled: they are out of scope, or not supported
// by the arranger's binding calculator, and surface as an error here
// rather than a silently wrong or unconsumable layout.
func typeToLayout(t cc.Type) (layout.MemoryLayout, error) {
	size := t.Size()
	align := int64(t.Align())

	switch t.Kind() {
	case cc.Ptr, cc.Function:
		return layout.Value{Size: 8, Align: 8, Class: layout.PrimPointer}, nil

	case cc.Float, cc.Double:
		return layout.Value{Size: size, Align: align, Class: layout.PrimSSE}, nil

	case cc.LongDouble:
		// classifyLayout only accepts a Value that classifies to exactly
		// one eightbyte, but long double classifies to [X87, X87UP] — the
		// arranger has no binding path for it. Reject at the parse
		// boundary rather than handing back a layout that fails later,
		// same as bit-fields and zero-length arrays below.
		return nil, fmt.Errorf("long double parameters and return values are not supported")

	case cc.Array:
		if t.Len() == 0 {
			return nil, fmt.Errorf("zero-length arrays are not supported")
		}
		elem, err := typeToLayout(t.Elem())
		if err != nil {
			return nil, err
		}
		return layout.Sequence{Element: elem, Count: int64(t.Len())}, nil

	case cc.Struct, cc.Union:
		return structToLayout(t)

	default:
		if t.IsIntegerType() {
			return layout.Value{Size: size, Align: align, Class: layout.PrimInteger}, nil
		}
		return nil, fmt.Errorf("unsupported C type kind %v", t.Kind())
	}
}

func structToLayout(t cc.Type) (layout.MemoryLayout, error) {
	n := t.NumField()
	members := make([]layout.Member, 0, n)
	offset := int64(0)

	for i := 0; i < n; i++ {
		f := t.FieldByIndex([]int{i})
		if f.IsBitField() {
			return nil, fmt.Errorf("bit-fields are not supported")
		}

		fieldOffset := int64(f.Offset())
		if fieldOffset > offset {
			members = append(members, layout.Member{
				Padding: true,
				Layout:  layout.Value{Size: fieldOffset - offset, Align: 1, Class: layout.PrimInteger},
			})
			offset = fieldOffset
		}

		fieldName := fmt.Sprint(f.Name())
		fl, err := typeToLayout(f.Type())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fieldName, err)
		}
		members = append(members, layout.Member{Layout: fl, Name: fieldName})
		if t.Kind() != cc.Union {
			offset += fl.ByteSize()
		}
	}

	return layout.Group{
		Members: members,
		IsUnion: t.Kind() == cc.Union,
		Size:    t.Size(),
		Align:   int64(t.Align()),
	}, nil
}
