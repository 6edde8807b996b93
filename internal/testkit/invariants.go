// Package testkit holds invariant checkers shared by package tests.
package testkit

import (
	"fmt"

	"ilpatch/internal/il"
)

// CheckBodyInvariants verifies the structural invariants of a method body:
//  1. every branch operand (single or jump table) resolves to an
//     instruction owned by this body;
//  2. every exception handler boundary resolves in-body (nil means the
//     synthetic end-of-body marker and is allowed everywhere but
//     TryStart/HandlerStart);
//  3. try-start precedes try-end and handler-start precedes handler-end in
//     stream order;
//  4. any two protected regions either nest or are disjoint; partial
//     overlap is invalid;
//  5. every debug entry (sequence point, state-machine offset) resolves to
//     an instruction of this body or is the end-of-method sentinel.
func CheckBodyInvariants(b *il.Body) error {
	if b == nil {
		return fmt.Errorf("nil body")
	}
	for i, ins := range b.Instrs {
		switch ins.Operand.Kind {
		case il.OperandTarget:
			if !b.Owns(ins.Operand.Target) {
				return fmt.Errorf("instr %d (%s): branch target not owned by body", i, ins)
			}
		case il.OperandTargets:
			for j, t := range ins.Operand.Targets {
				if !b.Owns(t) {
					return fmt.Errorf("instr %d (%s): jump table entry %d not owned by body", i, ins, j)
				}
			}
		}
	}
	for i, h := range b.Handlers {
		if err := checkHandler(b, h); err != nil {
			return fmt.Errorf("handler %d (%s): %w", i, h.Kind, err)
		}
	}
	for i := 0; i < len(b.Handlers); i++ {
		for j := i + 1; j < len(b.Handlers); j++ {
			if err := checkHandlerPair(b, b.Handlers[i], b.Handlers[j]); err != nil {
				return fmt.Errorf("handlers %d and %d: %w", i, j, err)
			}
		}
	}
	if b.Debug != nil {
		for _, sp := range b.Debug.SeqPoints {
			if b.InstrAtOffset(sp.Offset) == nil {
				return fmt.Errorf("sequence point at %04X resolves to no instruction", sp.Offset)
			}
		}
		if sm := b.Debug.StateMachine; sm != nil {
			if err := checkDebugOffsets(b, "catch-handler", []int64{sm.CatchHandler}); err != nil {
				return err
			}
			if err := checkDebugOffsets(b, "yield", sm.Yields); err != nil {
				return err
			}
			if err := checkDebugOffsets(b, "resume", sm.Resumes); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkHandler(b *il.Body, h *il.ExceptionHandler) error {
	if h.TryStart == nil || h.HandlerStart == nil {
		return fmt.Errorf("nil try-start or handler-start")
	}
	bounds := []struct {
		name string
		ins  *il.Instruction
	}{
		{"try-start", h.TryStart},
		{"try-end", h.TryEnd},
		{"handler-start", h.HandlerStart},
		{"handler-end", h.HandlerEnd},
		{"filter-start", h.FilterStart},
	}
	pos := make(map[string]int, len(bounds))
	for _, bd := range bounds {
		if bd.ins == nil {
			pos[bd.name] = len(b.Instrs) // end-of-body marker
			continue
		}
		idx := b.IndexOf(bd.ins)
		if idx < 0 {
			return fmt.Errorf("%s not owned by body", bd.name)
		}
		pos[bd.name] = idx
	}
	if pos["try-start"] >= pos["try-end"] {
		return fmt.Errorf("try-start does not precede try-end")
	}
	if pos["handler-start"] >= pos["handler-end"] {
		return fmt.Errorf("handler-start does not precede handler-end")
	}
	if h.Kind == il.HandlerFilter && h.FilterStart == nil {
		return fmt.Errorf("filter handler without filter-start")
	}
	return nil
}

// handlerExtent returns the half-open stream-index range a handler covers,
// from its earliest start boundary to its latest end boundary. Nil end
// boundaries map past the last instruction.
func handlerExtent(b *il.Body, h *il.ExceptionHandler) (lo, hi int) {
	idx := func(ins *il.Instruction) int {
		if ins == nil {
			return len(b.Instrs)
		}
		return b.IndexOf(ins)
	}
	lo = idx(h.TryStart)
	if s := idx(h.HandlerStart); s < lo {
		lo = s
	}
	if h.FilterStart != nil {
		if s := idx(h.FilterStart); s < lo {
			lo = s
		}
	}
	hi = idx(h.TryEnd)
	if e := idx(h.HandlerEnd); e > hi {
		hi = e
	}
	return lo, hi
}

func checkHandlerPair(b *il.Body, x, y *il.ExceptionHandler) error {
	xLo, xHi := handlerExtent(b, x)
	yLo, yHi := handlerExtent(b, y)
	if xHi <= yLo || yHi <= xLo {
		return nil // disjoint
	}
	if (xLo <= yLo && yHi <= xHi) || (yLo <= xLo && xHi <= yHi) {
		return nil // nested
	}
	return fmt.Errorf("regions [%d,%d) and [%d,%d) partially overlap", xLo, xHi, yLo, yHi)
}

func checkDebugOffsets(b *il.Body, what string, offs []int64) error {
	for _, off := range offs {
		if off == il.EndOfMethod {
			continue
		}
		if off < 0 || b.InstrAtOffset(uint32(off)) == nil {
			return fmt.Errorf("%s offset %d resolves to no instruction", what, off)
		}
	}
	return nil
}

// CheckNoAliasing verifies that a cloned body shares no instruction,
// handler or local objects with the original.
func CheckNoAliasing(orig, clone *il.Body) error {
	own := make(map[*il.Instruction]bool, len(orig.Instrs))
	for _, ins := range orig.Instrs {
		own[ins] = true
	}
	for i, ins := range clone.Instrs {
		if own[ins] {
			return fmt.Errorf("clone instr %d aliases the original", i)
		}
	}
	for i, h := range clone.Handlers {
		for j, oh := range orig.Handlers {
			if h == oh {
				return fmt.Errorf("clone handler %d aliases original handler %d", i, j)
			}
		}
	}
	for i, l := range clone.Locals {
		for j, ol := range orig.Locals {
			if l == ol {
				return fmt.Errorf("clone local %d aliases original local %d", i, j)
			}
		}
	}
	return nil
}
