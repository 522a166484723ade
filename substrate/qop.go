package substrate

import (
	"fmt"
	"strings"
)

// Qop (Queue-Operate-Produce) is a queue-based substrate inspired by tag
// systems and pipeline architectures. Data flows one direction through the
// tape via a read head and a write tail; there is no random access by
// default, so programs must process data in order.
//
// State: pc (starts at 0), head — the read pointer (starts at 0), tail — the
// write pointer (starts at tape.len()/2), acc (u8, starts at 0). All pointer
// arithmetic wraps modulo tape length. JMP_REL/JZ/JNZ are the only two-byte
// instructions; most of the byte space (0x10-0xFF) is NOP.
type Qop struct{}

const (
	qopHalt     = 0x00
	qopPass     = 0x01
	qopEat      = 0x02
	qopSpit     = 0x03
	qopSkip     = 0x04
	qopGap      = 0x05
	qopInc      = 0x06
	qopDec      = 0x07
	qopXor      = 0x08
	qopJmpRel   = 0x09
	qopJz       = 0x0A
	qopJnz      = 0x0B
	qopSetHead  = 0x0C
	qopSetTail  = 0x0D
	qopGetHead  = 0x0E
	qopGetTail  = 0x0F
)

func (Qop) Execute(tape []byte, stepLimit int) int {
	n := len(tape)
	if n == 0 {
		return 0
	}

	pc := 0
	var head, tail uint8 = 0, uint8(n / 2)
	var acc uint8
	steps := 0

	for pc < n && steps < stepLimit {
		steps++
		switch tape[pc] {
		case qopHalt:
			return steps
		case qopPass:
			src := int(head) % n
			dst := int(tail) % n
			tape[dst] = tape[src]
			head++
			tail++
		case qopEat:
			acc = tape[int(head)%n]
			head++
		case qopSpit:
			tape[int(tail)%n] = acc
			tail++
		case qopSkip:
			head++
		case qopGap:
			tape[int(tail)%n] = 0
			tail++
		case qopInc:
			acc++
		case qopDec:
			acc--
		case qopXor:
			acc ^= tape[int(head)%n]
		case qopJmpRel:
			if pc+1 >= n {
				return steps
			}
			offset := int8(tape[pc+1])
			newPC := pc + 2 + int(offset)
			if newPC < 0 {
				return steps
			}
			pc = newPC
			continue
		case qopJz:
			if pc+1 >= n {
				return steps
			}
			if acc == 0 {
				offset := int8(tape[pc+1])
				newPC := pc + 2 + int(offset)
				if newPC < 0 {
					return steps
				}
				pc = newPC
				continue
			}
			pc += 2
			continue
		case qopJnz:
			if pc+1 >= n {
				return steps
			}
			if acc != 0 {
				offset := int8(tape[pc+1])
				newPC := pc + 2 + int(offset)
				if newPC < 0 {
					return steps
				}
				pc = newPC
				continue
			}
			pc += 2
			continue
		case qopSetHead:
			head = acc
		case qopSetTail:
			tail = acc
		case qopGetHead:
			acc = head
		case qopGetTail:
			acc = tail
		default:
			// NOP (0x10-0xFF)
		}
		pc++
	}

	return steps
}

func (Qop) IsInstruction(b byte) bool {
	return b <= qopGetTail
}

func (Qop) Disassemble(tape []byte) string {
	var out strings.Builder
	pc := 0
	names := map[byte]string{
		qopHalt: "HALT", qopPass: "PASS", qopEat: "EAT", qopSpit: "SPIT",
		qopSkip: "SKIP", qopGap: "GAP", qopInc: "INC", qopDec: "DEC", qopXor: "XOR",
		qopSetHead: "SET_HEAD", qopSetTail: "SET_TAIL", qopGetHead: "GET_HEAD", qopGetTail: "GET_TAIL",
	}
	for pc < len(tape) {
		b := tape[pc]
		start := pc
		var desc string
		switch b {
		case qopJmpRel, qopJz, qopJnz:
			opName := map[byte]string{qopJmpRel: "JMP_REL", qopJz: "JZ", qopJnz: "JNZ"}[b]
			if pc+1 < len(tape) {
				offset := int8(tape[pc+1])
				target := pc + 2 + int(offset)
				desc = fmt.Sprintf("%s %+d (-> %d)", opName, offset, target)
				pc += 2
			} else {
				desc = opName + " ???"
				pc++
			}
		default:
			if name, ok := names[b]; ok {
				desc = name
			} else {
				desc = "NOP"
			}
			pc++
		}
		fmt.Fprintf(&out, "%04X: %02X  %s\n", start, b, desc)
	}
	return out.String()
}
