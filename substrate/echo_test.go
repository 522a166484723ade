package substrate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEchoEmptyTape(t *testing.T) {
	require.Equal(t, 0, Echo{}.Execute(nil, 8192))
}

func TestEchoHalt(t *testing.T) {
	tape := makeForthTape([]byte{echoHalt, echoInc, echoInc}, 128)
	steps := Echo{}.Execute(tape, 8192)
	require.Equal(t, 1, steps)
}

func TestEchoCopiesAtDelay(t *testing.T) {
	tape := makeForthTape([]byte{echoEcho}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(echoEcho), tape[64])
}

func TestEchoAdvancesRP(t *testing.T) {
	tape := makeForthTape([]byte{echoEcho, echoEcho}, 128)
	tape[1] = echoEcho
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(echoEcho), tape[64])
	require.Equal(t, byte(echoEcho), tape[65])
}

func TestEchoSetDelay(t *testing.T) {
	tape := makeForthTape([]byte{echoSetDelay, 10, echoEcho}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(echoSetDelay), tape[10])
}

func TestEchoLoadAndStore(t *testing.T) {
	tape := makeForthTape([]byte{echoLoad, echoStore}, 128)
	tape[0] = echoLoad
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(echoLoad), tape[65])
}

func TestEchoSkipAdvancesRP(t *testing.T) {
	tape := makeForthTape([]byte{echoSkip, echoSkip, echoSkip, echoGetDelay, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(64), tape[67])
}

func TestEchoIncDec(t *testing.T) {
	tape := makeForthTape([]byte{echoInc, echoInc, echoInc, echoDec, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(2), tape[64])
}

func TestEchoXor(t *testing.T) {
	tape := makeForthTape([]byte{echoXor, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(echoXor), tape[64])
}

func TestEchoAdd(t *testing.T) {
	tape := makeForthTape([]byte{echoAdd, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(echoAdd), tape[65])
}

func TestEchoJmpRel(t *testing.T) {
	tape := makeForthTape([]byte{echoJmpRel, 0x01, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(0), tape[64])
}

func TestEchoJzTaken(t *testing.T) {
	tape := makeForthTape([]byte{echoJz, 0x01, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(0), tape[64])
}

func TestEchoJzNotTaken(t *testing.T) {
	tape := makeForthTape([]byte{echoInc, echoJz, 0x01, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(2), tape[64])
}

func TestEchoJnzTaken(t *testing.T) {
	tape := makeForthTape([]byte{echoInc, echoJnz, 0x01, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(1), tape[64])
}

func TestEchoJnzNotTaken(t *testing.T) {
	tape := makeForthTape([]byte{echoJnz, 0x01, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(1), tape[64])
}

func TestEchoSkipEq(t *testing.T) {
	tape := makeForthTape([]byte{echoSkipEq, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(1), tape[64])

	tape2 := makeForthTape([]byte{echoSkipEq, echoInc, echoStore}, 128)
	tape2[64] = echoSkipEq
	Echo{}.Execute(tape2, 8192)
	require.Equal(t, byte(0), tape2[64])
}

func TestEchoGetDelay(t *testing.T) {
	tape := makeForthTape([]byte{echoGetDelay, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(64), tape[64])
}

func TestEchoSetRP(t *testing.T) {
	program := make([]byte, 10)
	for i := range program {
		program[i] = echoInc
	}
	program = append(program, echoSetRP, echoStore)
	tape := makeForthTape(program, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(10), tape[74])
}

func TestEchoNopBytes(t *testing.T) {
	tape := makeForthTape([]byte{0x10, 0x80, 0xFF, echoInc, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(1), tape[64])
}

func TestEchoStepLimit(t *testing.T) {
	tape := makeForthTape([]byte{echoJmpRel, 0xFE}, 128)
	steps := Echo{}.Execute(tape, 100)
	require.Equal(t, 100, steps)
}

func TestEchoNegativeJumpTerminates(t *testing.T) {
	tape := makeForthTape([]byte{echoJmpRel, 0x80}, 128)
	steps := Echo{}.Execute(tape, 8192)
	require.Equal(t, 1, steps)
}

func TestEchoThreeByteSelfReplicator(t *testing.T) {
	replicator := []byte{echoEcho, echoJmpRel, 0xFD}
	tape := make([]byte, 128)
	copy(tape, replicator)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, replicator, tape[64:67])
	require.Equal(t, make([]byte, 61), tape[67:128])
}

func TestEchoReplicatorFixedPoint(t *testing.T) {
	replicator := []byte{echoEcho, echoJmpRel, 0xFD}

	tape1 := make([]byte, 128)
	copy(tape1, replicator)
	Echo{}.Execute(tape1, 8192)
	copy1 := append([]byte(nil), tape1[64:128]...)

	tape2 := make([]byte, 128)
	copy(tape2, copy1[:64])
	Echo{}.Execute(tape2, 8192)
	copy2 := tape2[64:128]

	require.Equal(t, copy1, copy2)
}

func TestEchoWritePointerAlwaysConstrained(t *testing.T) {
	tape := makeForthTape([]byte{echoSetDelay, 10, echoInc, echoInc, echoInc, echoStore, echoSkip, echoStore}, 128)
	Echo{}.Execute(tape, 8192)
	require.Equal(t, byte(3), tape[10])
	require.Equal(t, byte(3), tape[11])
}

func TestEchoNeverPanicsAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(256)
		tape := make([]byte, n)
		rng.Read(tape)
		limit := 1 + rng.Intn(1000)
		before := len(tape)
		require.NotPanics(t, func() {
			steps := Echo{}.Execute(tape, limit)
			require.LessOrEqual(t, steps, limit)
		})
		require.Equal(t, before, len(tape))
	}
}
