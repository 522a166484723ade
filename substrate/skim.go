package substrate

import (
	"fmt"
	"strings"
)

// Skim is a substrate where every byte is simultaneously an opcode and a
// jump distance. There is no sequential PC increment: the low 4 bits of
// each instruction set the next-PC skip, `pc = (pc + lowNibble + 1) % len`.
// Data IS control flow — every byte reached, including data regions,
// redirects execution.
//
// State: pc (starts at 0), acc (u8, starts at 0), wp — the write pointer
// (u8, starts at len/2). All pointer arithmetic wraps modulo tape length.
type Skim struct{}

func (Skim) Execute(tape []byte, stepLimit int) int {
	n := len(tape)
	if n == 0 {
		return 0
	}

	pc := 0
	var acc, wp uint8 = 0, uint8(n / 2)
	steps := 0

	for steps < stepLimit {
		steps++
		instr := tape[pc]
		skip := int(instr&0x0F) + 1

		switch instr >> 4 {
		case 0x0: // LOAD
			acc = tape[int(wp)%n]
		case 0x1: // STORE
			tape[int(wp)%n] = acc
		case 0x2: // COPY_FWD
			tape[int(wp)%n] = tape[pc]
			wp++
		case 0x3: // INC
			acc++
		case 0x4: // DEC
			acc--
		case 0x5: // XOR
			acc ^= tape[int(wp)%n]
		case 0x6: // WP_INC
			wp++
		case 0x7: // WP_DEC
			wp--
		case 0x8: // SET_WP
			wp = acc
		case 0x9: // GET_WP
			acc = wp
		case 0xA: // SKZ
			if acc != 0 {
				pc = (pc + 1) % n
				continue
			}
		case 0xB: // SKNZ
			if acc == 0 {
				pc = (pc + 1) % n
				continue
			}
		case 0xC: // HALT
			return steps
		default:
			// 0xD, 0xE, 0xF: NOP
		}

		pc = (pc + skip) % n
	}

	return steps
}

type skimBattleState struct {
	pc       int
	acc, wp  uint8
}

func skimBattleStep(state *skimBattleState, tape []byte) bool {
	n := len(tape)
	instr := tape[state.pc]
	skip := int(instr&0x0F) + 1

	switch instr >> 4 {
	case 0x0:
		state.acc = tape[int(state.wp)%n]
	case 0x1:
		tape[int(state.wp)%n] = state.acc
	case 0x2:
		tape[int(state.wp)%n] = tape[state.pc]
		state.wp++
	case 0x3:
		state.acc++
	case 0x4:
		state.acc--
	case 0x5:
		state.acc ^= tape[int(state.wp)%n]
	case 0x6:
		state.wp++
	case 0x7:
		state.wp--
	case 0x8:
		state.wp = state.acc
	case 0x9:
		state.acc = state.wp
	case 0xA:
		if state.acc != 0 {
			state.pc = (state.pc + 1) % n
			return true
		}
	case 0xB:
		if state.acc == 0 {
			state.pc = (state.pc + 1) % n
			return true
		}
	case 0xC:
		return false
	default:
	}

	state.pc = (state.pc + skip) % n
	return true
}

func (Skim) ExecuteBattle(tape []byte, splitPoint, stepLimit int) int {
	n := len(tape)
	if n == 0 {
		return 0
	}

	a := &skimBattleState{pc: 0, wp: uint8(splitPoint)}
	b := &skimBattleState{pc: splitPoint, wp: 0}
	steps := 0
	haltedA, haltedB := false, false

	for steps < stepLimit && (!haltedA || !haltedB) {
		if !haltedA {
			haltedA = !skimBattleStep(a, tape)
			steps++
			if steps >= stepLimit {
				break
			}
		}
		if !haltedB {
			haltedB = !skimBattleStep(b, tape)
			steps++
		}
	}

	return steps
}

func (Skim) IsInstruction(b byte) bool {
	return (b >> 4) <= 0xC
}

func (Skim) Disassemble(tape []byte) string {
	n := len(tape)
	var out strings.Builder
	names := [...]string{"LOAD", "STORE", "COPY_FWD", "INC", "DEC", "XOR", "WP_INC", "WP_DEC", "SET_WP", "GET_WP", "SKZ", "SKNZ", "HALT", "NOP", "NOP", "NOP"}
	for addr, b := range tape {
		skip := int(b&0x0F) + 1
		target := (addr + skip) % n
		fmt.Fprintf(&out, "%04X: %02X  %-10s skip %d -> %04X\n", addr, b, names[b>>4], skip, target)
	}
	return out.String()
}
