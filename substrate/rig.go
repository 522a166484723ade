package substrate

import (
	"fmt"
	"strings"
)

// Rig is a register-indirect machine: a small register file with
// register-indirect memory access, covering the one computational paradigm
// the other substrates miss (named registers, indirect addressing).
//
// State: pc (starts at 0), four general registers r[0..4) — r[1] starts at
// tape.len()/2, the rest at 0. Instructions are one byte: high 4 bits select
// the opcode, low 4 bits hold two 2-bit register selectors (bits[3:2] = dst,
// bits[1:0] = src). All register arithmetic wraps modulo 256; all tape
// addresses wrap modulo tape length.
type Rig struct{}

type rigState struct {
	pc int
	r  [4]uint8
}

func rigStep(state *rigState, tape []byte) bool {
	n := len(tape)
	if state.pc >= n {
		return false
	}
	instr := tape[state.pc]
	dst := (instr >> 2) & 0x03
	src := instr & 0x03

	switch instr >> 4 {
	case 0x0: // LOAD
		state.r[dst] = tape[int(state.r[src])%n]
	case 0x1: // STORE
		tape[int(state.r[dst])%n] = state.r[src]
	case 0x2: // MOV
		state.r[dst] = state.r[src]
	case 0x3: // ADD
		state.r[dst] += state.r[src]
	case 0x4: // SUB
		state.r[dst] -= state.r[src]
	case 0x5: // XOR
		state.r[dst] ^= state.r[src]
	case 0x6: // INC
		state.r[dst]++
	case 0x7: // DEC
		state.r[dst]--
	case 0x8: // JZ
		if state.r[src] == 0 {
			state.pc = int(state.r[dst])
			return true
		}
	case 0x9: // JNZ
		if state.r[src] != 0 {
			state.pc = int(state.r[dst])
			return true
		}
	case 0xA: // COPY
		s := int(state.r[src]) % n
		d := int(state.r[dst]) % n
		tape[d] = tape[s]
	case 0xB: // HALT
		return false
	default:
		// 0xC-0xF: NOP
	}

	state.pc++
	return true
}

func (Rig) Execute(tape []byte, stepLimit int) int {
	n := len(tape)
	if n == 0 {
		return 0
	}

	state := &rigState{pc: 0, r: [4]uint8{0, uint8(n / 2), 0, 0}}
	steps := 0

	for state.pc < n && steps < stepLimit {
		steps++
		if !rigStep(state, tape) {
			break
		}
	}

	return steps
}

func (Rig) ExecuteBattle(tape []byte, splitPoint, stepLimit int) int {
	n := len(tape)
	if n == 0 {
		return 0
	}

	a := &rigState{pc: 0, r: [4]uint8{0, uint8(splitPoint), 0, 0}}
	b := &rigState{pc: splitPoint, r: [4]uint8{uint8(splitPoint), 0, 0, 0}}
	steps := 0
	haltedA, haltedB := false, false

	for steps < stepLimit && (!haltedA || !haltedB) {
		if !haltedA {
			haltedA = !rigStep(a, tape)
			steps++
			if steps >= stepLimit {
				break
			}
		}
		if !haltedB {
			haltedB = !rigStep(b, tape)
			steps++
		}
	}

	return steps
}

func (Rig) IsInstruction(b byte) bool {
	return (b >> 4) <= 0xB
}

func (Rig) Disassemble(tape []byte) string {
	regName := func(i byte) string {
		return fmt.Sprintf("r%d", i)
	}
	var out strings.Builder
	for addr, b := range tape {
		dst := (b >> 2) & 0x03
		src := b & 0x03
		var desc string
		switch b >> 4 {
		case 0x0:
			desc = fmt.Sprintf("LOAD %s, [%s]", regName(dst), regName(src))
		case 0x1:
			desc = fmt.Sprintf("STORE [%s], %s", regName(dst), regName(src))
		case 0x2:
			desc = fmt.Sprintf("MOV %s, %s", regName(dst), regName(src))
		case 0x3:
			desc = fmt.Sprintf("ADD %s, %s", regName(dst), regName(src))
		case 0x4:
			desc = fmt.Sprintf("SUB %s, %s", regName(dst), regName(src))
		case 0x5:
			desc = fmt.Sprintf("XOR %s, %s", regName(dst), regName(src))
		case 0x6:
			desc = fmt.Sprintf("INC %s", regName(dst))
		case 0x7:
			desc = fmt.Sprintf("DEC %s", regName(dst))
		case 0x8:
			desc = fmt.Sprintf("JZ %s, %s", regName(dst), regName(src))
		case 0x9:
			desc = fmt.Sprintf("JNZ %s, %s", regName(dst), regName(src))
		case 0xA:
			desc = fmt.Sprintf("COPY [%s], [%s]", regName(dst), regName(src))
		case 0xB:
			desc = "HALT"
		default:
			desc = "NOP"
		}
		fmt.Fprintf(&out, "%04X: %02X  %s\n", addr, b, desc)
	}
	return out.String()
}
