package ir

// ValueRef identifies one value in a Context: either the result of an
// instruction or an inlined constant.
type ValueRef struct{ h handle }

func (r ValueRef) String() string { return "value" + r.h.String() }

// InstructionRef identifies one instruction in a Context's arena. Not every
// InstructionRef corresponds to a ValueRef: WriteOutput and WriteState
// instructions are side-effecting and produce no value.
type InstructionRef struct{ h handle }

func (r InstructionRef) String() string { return "inst" + r.h.String() }

// ConstantRef identifies one literal constant embedded in a Context.
type ConstantRef struct{ h handle }

func (r ConstantRef) String() string { return "const" + r.h.String() }

// StateRef identifies one persistent state slot declared on a Context.
// States are append-only and never retracted, so unlike the other handles
// a StateRef is just a stable dense index.
type StateRef int
