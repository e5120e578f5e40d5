package amd64

// Register is a named machine register. The rest of the pipeline
// addresses registers purely by VMStorage index; Register exists for the
// ABIDescriptor's register files and for rendering a VMStorage back to
// its concrete register name in diagnostics.
type Register string

const (
	RDI Register = "rdi"
	RSI Register = "rsi"
	RDX Register = "rdx"
	RCX Register = "rcx"
	R8  Register = "r8"
	R9  Register = "r9"
	RAX Register = "rax"
	R10 Register = "r10"
	R11 Register = "r11"

	XMM0  Register = "xmm0"
	XMM1  Register = "xmm1"
	XMM2  Register = "xmm2"
	XMM3  Register = "xmm3"
	XMM4  Register = "xmm4"
	XMM5  Register = "xmm5"
	XMM6  Register = "xmm6"
	XMM7  Register = "xmm7"
	XMM8  Register = "xmm8"
	XMM9  Register = "xmm9"
	XMM10 Register = "xmm10"
	XMM11 Register = "xmm11"
	XMM12 Register = "xmm12"
	XMM13 Register = "xmm13"
	XMM14 Register = "xmm14"
	XMM15 Register = "xmm15"
)

// ABIDescriptor names the register files and stack conventions the call
// arranger targets. It exists as a value (rather than bare package
// constants) so a caller could in principle substitute a different
// descriptor without touching the arranger itself.
type ABIDescriptor struct {
	IntegerArgRegs     []Register
	VectorArgRegs      []Register
	IntegerReturnRegs  []Register
	VectorReturnRegs   []Register
	ScratchIntegerRegs []Register
	ScratchVectorRegs  []Register
	StackAlignment     int
	ShadowSpace        int
}

// NewABIDescriptor returns the System V AMD64 register file and stack
// convention (System V AMD64 ABI, section 3.2.3).
func NewABIDescriptor() ABIDescriptor {
	return ABIDescriptor{
		IntegerArgRegs:     []Register{RDI, RSI, RDX, RCX, R8, R9},
		VectorArgRegs:      []Register{XMM0, XMM1, XMM2, XMM3, XMM4, XMM5, XMM6, XMM7},
		IntegerReturnRegs:  []Register{RAX, RDX},
		VectorReturnRegs:   []Register{XMM0, XMM1},
		ScratchIntegerRegs: []Register{R10, R11},
		ScratchVectorRegs:  []Register{XMM8, XMM9, XMM10, XMM11, XMM12, XMM13, XMM14, XMM15},
		StackAlignment:     16,
		ShadowSpace:        0,
	}
}

// registerFor resolves a VMStorage to the descriptor's concrete register
// name, for diagnostics; it returns ok=false for a stack storage or an
// index past the relevant register file (e.g. the rax vector-count slot,
// which is addressed by the sentinel index rather than this lookup).
func (d ABIDescriptor) registerFor(s VMStorage, forReturn bool) (Register, bool) {
	var regs []Register
	switch {
	case s.Kind == StorageInteger && forReturn:
		regs = d.IntegerReturnRegs
	case s.Kind == StorageInteger:
		regs = d.IntegerArgRegs
	case s.Kind == StorageVector && forReturn:
		regs = d.VectorReturnRegs
	case s.Kind == StorageVector:
		regs = d.VectorArgRegs
	default:
		return "", false
	}
	if s.Index < 0 || s.Index >= len(regs) {
		return "", false
	}
	return regs[s.Index], true
}
