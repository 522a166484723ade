package substrate

import "fmt"

// Subleq is the single-instruction SUBLEQ substrate: every instruction reads
// three tape positions a, b, c starting at pc and executes
//
//	*a -= *b; if (*a <= 0) goto c else goto pc+3
//
// Addresses wrap modulo the tape length. The comparison treats *a as signed
// (int8). Execution halts once pc would require reading past the tape end.
// Self-replication exists but does not emerge spontaneously from random
// initialization — a hand-crafted replicator needs 60 bytes.
type Subleq struct{}

func (Subleq) Execute(tape []byte, stepLimit int) int {
	n := len(tape)
	if n < 3 {
		return 0
	}

	pc := 0
	steps := 0

	for pc+2 < n && steps < stepLimit {
		steps++

		a := int(tape[pc]) % n
		b := int(tape[pc+1]) % n

		tape[a] -= tape[b]

		if int8(tape[a]) <= 0 {
			// Branch target read after the subtraction: matters when a == pc+2.
			pc = int(tape[pc+2])
		} else {
			pc += 3
		}
	}

	return steps
}

type subleqBattleState struct {
	pc int
}

func subleqBattleStep(state *subleqBattleState, tape []byte) bool {
	n := len(tape)
	if state.pc+2 >= n {
		return false
	}

	a := int(tape[state.pc]) % n
	b := int(tape[state.pc+1]) % n

	tape[a] -= tape[b]

	if int8(tape[a]) <= 0 {
		state.pc = int(tape[state.pc+2])
	} else {
		state.pc += 3
	}

	return true
}

func (Subleq) ExecuteBattle(tape []byte, splitPoint, stepLimit int) int {
	n := len(tape)
	if n < 3 {
		return 0
	}

	a := &subleqBattleState{pc: 0}
	b := &subleqBattleState{pc: splitPoint}
	steps := 0
	haltedA, haltedB := false, false

	for steps < stepLimit && (!haltedA || !haltedB) {
		if !haltedA {
			haltedA = !subleqBattleStep(a, tape)
			steps++
			if steps >= stepLimit {
				break
			}
		}
		if !haltedB {
			haltedB = !subleqBattleStep(b, tape)
			steps++
		}
	}

	return steps
}

func (Subleq) IsInstruction(byte) bool { return true }

func (Subleq) Disassemble(tape []byte) string {
	var out []byte
	pc := 0
	for pc+2 < len(tape) {
		a, b, c := tape[pc], tape[pc+1], tape[pc+2]
		out = append(out, []byte(fmt.Sprintf("%04X: [%02X %02X %02X]  *%d -= *%d; if <=0 goto %d\n", pc, a, b, c, a, b, c))...)
		pc += 3
	}
	for i := pc; i < len(tape); i++ {
		out = append(out, []byte(fmt.Sprintf("%04X: %02X     (trailing)\n", i, tape[i]))...)
	}
	return string(out)
}

// Rsubleq4 is a PC-relative SUBLEQ variant: each instruction reads four
// consecutive bytes a, b, c, d starting at pc and executes
//
//	*(pc+a) = *(pc+b) - *(pc+c); if (*(pc+a) <= 0) goto pc+d else goto pc+4
//
// Data offsets a, b, c are unsigned; the branch offset d is signed (int8).
// Execution halts when pc would require reading past the tape end, or the
// branch target goes negative. This variant admits a 25-byte self-replicator,
// much shorter than plain Subleq's 60.
type Rsubleq4 struct{}

func (Rsubleq4) Execute(tape []byte, stepLimit int) int {
	n := len(tape)
	if n < 4 {
		return 0
	}

	pc := 0
	steps := 0

	for pc+3 < n && steps < stepLimit {
		steps++

		a := int(tape[pc])
		b := int(tape[pc+1])
		c := int(tape[pc+2])

		addrA := (pc + a) % n
		addrB := (pc + b) % n
		addrC := (pc + c) % n

		tape[addrA] = tape[addrB] - tape[addrC]

		if int8(tape[addrA]) <= 0 {
			// Branch offset read after the subtraction: matters when addrA == pc+3.
			d := int8(tape[pc+3])
			newPC := pc + int(d)
			if newPC < 0 {
				break
			}
			pc = newPC
		} else {
			pc += 4
		}
	}

	return steps
}

type rsubleq4BattleState struct {
	pc int
}

func rsubleq4BattleStep(state *rsubleq4BattleState, tape []byte) bool {
	n := len(tape)
	if state.pc+3 >= n {
		return false
	}

	a := int(tape[state.pc])
	b := int(tape[state.pc+1])
	c := int(tape[state.pc+2])

	addrA := (state.pc + a) % n
	addrB := (state.pc + b) % n
	addrC := (state.pc + c) % n

	tape[addrA] = tape[addrB] - tape[addrC]

	if int8(tape[addrA]) <= 0 {
		d := int8(tape[state.pc+3])
		newPC := state.pc + int(d)
		if newPC < 0 {
			return false
		}
		state.pc = newPC
	} else {
		state.pc += 4
	}

	return true
}

func (Rsubleq4) ExecuteBattle(tape []byte, splitPoint, stepLimit int) int {
	n := len(tape)
	if n < 4 {
		return 0
	}

	a := &rsubleq4BattleState{pc: 0}
	b := &rsubleq4BattleState{pc: splitPoint}
	steps := 0
	haltedA, haltedB := false, false

	for steps < stepLimit && (!haltedA || !haltedB) {
		if !haltedA {
			haltedA = !rsubleq4BattleStep(a, tape)
			steps++
			if steps >= stepLimit {
				break
			}
		}
		if !haltedB {
			haltedB = !rsubleq4BattleStep(b, tape)
			steps++
		}
	}

	return steps
}

func (Rsubleq4) IsInstruction(byte) bool { return true }

func (Rsubleq4) Disassemble(tape []byte) string {
	var out []byte
	pc := 0
	for pc+3 < len(tape) {
		a, b, c, d := tape[pc], tape[pc+1], tape[pc+2], int8(tape[pc+3])
		out = append(out, []byte(fmt.Sprintf("%04X: [%02X %02X %02X %02X]  *(pc+%d) = *(pc+%d) - *(pc+%d); if <=0 goto pc%+d\n", pc, a, b, c, tape[pc+3], a, b, c, d))...)
		pc += 4
	}
	for i := pc; i < len(tape); i++ {
		out = append(out, []byte(fmt.Sprintf("%04X: %02X     (trailing)\n", i, tape[i]))...)
	}
	return string(out)
}
