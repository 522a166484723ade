package substrate

import (
	"fmt"
	"strings"
)

// BFF is the Brainfuck-family substrate. It carries three pointers over the
// tape: an instruction pointer ip (starts at 0, advances sequentially, halts
// on walking off the end), a read head head0, and a write head head1 (both
// start at 0 and wrap as a byte — mod 256 — before being reduced mod the tape
// length for indexing).
//
// Instructions:
//
//	<  head0--  (wraps mod 256)
//	>  head0++  (wraps mod 256)
//	{  head1--  (wraps mod 256)
//	}  head1++  (wraps mod 256)
//	-  tape[head0]--
//	+  tape[head0]++
//	.  tape[head1] = tape[head0]
//	,  tape[head0] = tape[head1]
//	[  if tape[head0] == 0, jump to matching ]
//	]  if tape[head0] != 0, jump to matching [
//
// Any other byte is a no-op. Jumping via an unmatched bracket halts.
type BFF struct{}

const (
	bffHeadDec    = '<'
	bffHeadInc    = '>'
	bffWriteDec   = '{'
	bffWriteInc   = '}'
	bffDecCell    = '-'
	bffIncCell    = '+'
	bffCopyToTail = '.'
	bffCopyToHead = ','
	bffLoopOpen   = '['
	bffLoopClose  = ']'
)

// buildBracketTable performs a single linear scan with a stack of open-bracket
// positions. Unmatched brackets map to -1, meaning "jumping here halts."
func buildBracketTable(tape []byte) []int {
	match := make([]int, len(tape))
	for i := range match {
		match[i] = -1
	}
	var stack []int
	for i, b := range tape {
		switch b {
		case bffLoopOpen:
			stack = append(stack, i)
		case bffLoopClose:
			if n := len(stack); n > 0 {
				open := stack[n-1]
				stack = stack[:n-1]
				match[open] = i
				match[i] = open
			}
		}
	}
	return match
}

func (BFF) Execute(tape []byte, stepLimit int) int {
	n := len(tape)
	if n == 0 {
		return 0
	}
	match := buildBracketTable(tape)

	var head0, head1 uint8
	ip := 0
	steps := 0

	for ip < n && steps < stepLimit {
		steps++

		switch tape[ip] {
		case bffHeadDec:
			head0--
		case bffHeadInc:
			head0++
		case bffWriteDec:
			head1--
		case bffWriteInc:
			head1++
		case bffDecCell:
			idx := int(head0) % n
			tape[idx]--
		case bffIncCell:
			idx := int(head0) % n
			tape[idx]++
		case bffCopyToTail:
			src, dst := int(head0)%n, int(head1)%n
			tape[dst] = tape[src]
		case bffCopyToHead:
			dst, src := int(head0)%n, int(head1)%n
			tape[dst] = tape[src]
		case bffLoopOpen:
			if tape[int(head0)%n] == 0 {
				target := match[ip]
				if target < 0 {
					return steps
				}
				ip = target
				continue
			}
		case bffLoopClose:
			if tape[int(head0)%n] != 0 {
				target := match[ip]
				if target < 0 {
					return steps
				}
				ip = target
				continue
			}
		}
		ip++
	}
	return steps
}

func (BFF) IsInstruction(b byte) bool {
	switch b {
	case bffHeadDec, bffHeadInc, bffWriteDec, bffWriteInc, bffDecCell, bffIncCell,
		bffCopyToTail, bffCopyToHead, bffLoopOpen, bffLoopClose:
		return true
	default:
		return false
	}
}

func (BFF) Disassemble(tape []byte) string {
	var b strings.Builder
	for i, c := range tape {
		name := "nop"
		switch c {
		case bffHeadDec:
			name = "head0--"
		case bffHeadInc:
			name = "head0++"
		case bffWriteDec:
			name = "head1--"
		case bffWriteInc:
			name = "head1++"
		case bffDecCell:
			name = "cell--"
		case bffIncCell:
			name = "cell++"
		case bffCopyToTail:
			name = "copy head1<-head0"
		case bffCopyToHead:
			name = "copy head0<-head1"
		case bffLoopOpen:
			name = "loop-open"
		case bffLoopClose:
			name = "loop-close"
		}
		fmt.Fprintf(&b, "%04X: %s\n", i, name)
	}
	return b.String()
}
