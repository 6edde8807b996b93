// Package patch applies a plug registry to a target module: it rewrites
// matched method bodies via jump stubs or full body transplants, redirects
// field and property references, and enforces the completeness rule for
// extern members.
package patch

import (
	"fmt"

	"ilpatch/internal/il"
)

// Transplant clones src into a fresh body attached to dst. The result is
// behaviorally identical to src with every internal reference renumbered
// into the new body: branch operands, jump tables, exception handler
// boundaries and debug tables all resolve inside the clone, and nothing is
// aliased with src except immutable operand payloads.
//
// An unresolvable branch target or debug offset indicates a corrupt source
// body, not a user mistake; Transplant panics rather than silently dropping
// fidelity.
func Transplant(src *il.Body, dst *il.MethodDecl) *il.Body {
	nb := il.NewBody()
	nb.MaxStack = src.MaxStack
	nb.InitLocals = src.InitLocals

	// First pass: clone every instruction in source order. Operands are
	// copied verbatim except instruction references, which are deferred to
	// the second pass so that forward branches resolve.
	index := make(map[*il.Instruction]*il.Instruction, len(src.Instrs))
	for _, ins := range src.Instrs {
		c := &il.Instruction{Op: ins.Op, Operand: ins.Operand}
		switch c.Operand.Kind {
		case il.OperandTarget:
			c.Operand.Target = nil
		case il.OperandTargets:
			c.Operand.Targets = make([]*il.Instruction, len(ins.Operand.Targets))
		}
		index[ins] = c
		nb.Instrs = append(nb.Instrs, c)
	}

	// Second pass: rewrite instruction-reference operands through the map.
	for _, ins := range src.Instrs {
		c := index[ins]
		switch ins.Operand.Kind {
		case il.OperandTarget:
			c.Operand.Target = mapTarget(index, ins.Operand.Target, dst)
		case il.OperandTargets:
			for i, t := range ins.Operand.Targets {
				c.Operand.Targets[i] = mapTarget(index, t, dst)
			}
		}
	}

	for _, h := range src.Handlers {
		nb.Handlers = append(nb.Handlers, &il.ExceptionHandler{
			Kind:         h.Kind,
			TryStart:     mapBoundary(index, h.TryStart, dst),
			TryEnd:       mapBoundary(index, h.TryEnd, dst),
			HandlerStart: mapBoundary(index, h.HandlerStart, dst),
			HandlerEnd:   mapBoundary(index, h.HandlerEnd, dst),
			FilterStart:  mapBoundary(index, h.FilterStart, dst),
			CatchType:    h.CatchType,
		})
	}

	for _, l := range src.Locals {
		nb.Locals = append(nb.Locals, &il.Local{Index: l.Index, Type: l.Type})
	}

	if err := nb.ComputeOffsets(); err != nil {
		panic(fmt.Sprintf("patch: transplant into %s: %v", dst.Ref(), err))
	}

	if src.Debug != nil {
		nb.Debug = remapDebug(src, index, dst)
	}

	dst.Body = nb
	return nb
}

// remapDebug re-anchors sequence points and state-machine descriptors. The
// lookup goes through the *source* body's recorded offsets: earlier stages
// may have renumbered clone offsets, so each entry is re-resolved by
// scanning the source stream for the instruction whose original offset
// matches, then reading the corresponding clone's fresh offset.
func remapDebug(src *il.Body, index map[*il.Instruction]*il.Instruction, dst *il.MethodDecl) *il.DebugInfo {
	nd := &il.DebugInfo{}
	for _, sp := range src.Debug.SeqPoints {
		mapped := sp
		mapped.Offset = remapOffset(src, index, sp.Offset, dst)
		nd.SeqPoints = append(nd.SeqPoints, mapped)
	}
	if sm := src.Debug.StateMachine; sm != nil {
		nd.StateMachine = &il.StateMachineInfo{
			CatchHandler: remapDebugOffset(src, index, sm.CatchHandler, dst),
			Yields:       remapOffsetList(src, index, sm.Yields, dst),
			Resumes:      remapOffsetList(src, index, sm.Resumes, dst),
		}
	}
	return nd
}

func remapOffsetList(src *il.Body, index map[*il.Instruction]*il.Instruction, offs []int64, dst *il.MethodDecl) []int64 {
	if offs == nil {
		return nil
	}
	out := make([]int64, len(offs))
	for i, off := range offs {
		out[i] = remapDebugOffset(src, index, off, dst)
	}
	return out
}

// remapDebugOffset remaps one state-machine entry, preserving the
// end-of-method sentinel unchanged.
func remapDebugOffset(src *il.Body, index map[*il.Instruction]*il.Instruction, off int64, dst *il.MethodDecl) int64 {
	if off == il.EndOfMethod {
		return il.EndOfMethod
	}
	if off < 0 || off > int64(^uint32(0)) {
		panic(fmt.Sprintf("patch: transplant into %s: state-machine offset %d out of range", dst.Ref(), off))
	}
	return int64(remapOffset(src, index, uint32(off), dst))
}

func remapOffset(src *il.Body, index map[*il.Instruction]*il.Instruction, off uint32, dst *il.MethodDecl) uint32 {
	ins := src.InstrAtOffset(off)
	if ins == nil {
		panic(fmt.Sprintf("patch: transplant into %s: debug table references offset %04X with no instruction", dst.Ref(), off))
	}
	clone := index[ins]
	if clone == nil {
		panic(fmt.Sprintf("patch: transplant into %s: debug offset %04X maps outside the clone", dst.Ref(), off))
	}
	return clone.Offset
}

// mapTarget translates a branch operand. Branch operands are never nil in a
// well-formed body.
func mapTarget(index map[*il.Instruction]*il.Instruction, t *il.Instruction, dst *il.MethodDecl) *il.Instruction {
	if t == nil {
		panic(fmt.Sprintf("patch: transplant into %s: nil branch target", dst.Ref()))
	}
	c := index[t]
	if c == nil {
		panic(fmt.Sprintf("patch: transplant into %s: branch target %04X not owned by source body", dst.Ref(), t.Offset))
	}
	return c
}

// mapBoundary translates an exception handler boundary; nil means the
// synthetic end-of-body marker (or an absent filter) and stays nil.
func mapBoundary(index map[*il.Instruction]*il.Instruction, t *il.Instruction, dst *il.MethodDecl) *il.Instruction {
	if t == nil {
		return nil
	}
	c := index[t]
	if c == nil {
		panic(fmt.Sprintf("patch: transplant into %s: handler boundary %04X not owned by source body", dst.Ref(), t.Offset))
	}
	return c
}
