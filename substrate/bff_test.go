package substrate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBFFSelfModifyingIncrement(t *testing.T) {
	tape := make([]byte, 256)
	tape[0] = '>'
	tape[1] = '+'

	steps := BFF{}.Execute(tape, 10000)
	require.Greater(t, steps, 0)
	require.Equal(t, byte('+'+1), tape[1])
}

func TestBFFNeverPanicsOnRandomTapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(512)
		tape := make([]byte, n)
		rng.Read(tape)
		require.NotPanics(t, func() {
			BFF{}.Execute(tape, 4096)
		})
	}
}

func TestBFFRespectsStepLimit(t *testing.T) {
	tape := []byte{'>', '<'}
	tape = append(tape, make([]byte, 254)...)
	steps := BFF{}.Execute(tape, 37)
	require.LessOrEqual(t, steps, 37)
}

func TestBFFPreservesTapeLength(t *testing.T) {
	tape := make([]byte, 128)
	for i := range tape {
		tape[i] = byte(i)
	}
	before := len(tape)
	BFF{}.Execute(tape, 500)
	require.Equal(t, before, len(tape))
}

func TestBFFDeterministic(t *testing.T) {
	mk := func() []byte {
		tape := make([]byte, 256)
		copy(tape, []byte{'>', '+', '<', '-', '.', ',', '[', ']'})
		return tape
	}

	a := mk()
	b := mk()
	stepsA := BFF{}.Execute(a, 2000)
	stepsB := BFF{}.Execute(b, 2000)
	require.Equal(t, stepsA, stepsB)
	require.Equal(t, a, b)
}

func TestBFFUnmatchedBracketHalts(t *testing.T) {
	tape := make([]byte, 64)
	tape[0] = ']'
	steps := BFF{}.Execute(tape, 1000)
	require.Equal(t, 1, steps)
}

func TestBFFIsInstruction(t *testing.T) {
	require.True(t, BFF{}.IsInstruction('+'))
	require.True(t, BFF{}.IsInstruction('['))
	require.False(t, BFF{}.IsInstruction(0x00))
	require.False(t, BFF{}.IsInstruction('x'))
}
