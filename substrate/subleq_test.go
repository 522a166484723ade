package substrate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubleqBasicSubtraction(t *testing.T) {
	tape := []byte{3, 4, 99, 10, 3, 0, 0, 0}
	Subleq{}.Execute(tape, 1)
	require.Equal(t, byte(7), tape[3])
}

func TestSubleqBranchOnZero(t *testing.T) {
	tape := []byte{3, 4, 7, 5, 5, 0, 0, 0}
	steps := Subleq{}.Execute(tape, 100)
	require.Equal(t, 1, steps)
	require.Equal(t, byte(0), tape[3])
}

func TestSubleqBranchOnNegative(t *testing.T) {
	tape := []byte{3, 4, 7, 2, 5, 0, 0, 0}
	steps := Subleq{}.Execute(tape, 100)
	require.Equal(t, 1, steps)
	require.Equal(t, byte(253), tape[3])
}

func TestSubleqTerminatesOOB(t *testing.T) {
	tape := []byte{3, 4, 255, 5, 5, 0, 0, 0}
	steps := Subleq{}.Execute(tape, 100)
	require.Equal(t, 1, steps)
}

func TestSubleqEmptyAndSmallTape(t *testing.T) {
	require.Equal(t, 0, Subleq{}.Execute(nil, 100))
	require.Equal(t, 0, Subleq{}.Execute([]byte{0, 0}, 100))
}

func TestSubleqStepLimit(t *testing.T) {
	tape := make([]byte, 8)
	steps := Subleq{}.Execute(tape, 50)
	require.Equal(t, 50, steps)
}

func TestSubleqAddressWraps(t *testing.T) {
	tape := make([]byte, 64)
	tape[0] = 200
	tape[1] = 201
	tape[2] = 63
	tape[8] = 10
	tape[9] = 3
	Subleq{}.Execute(tape, 1)
	require.Equal(t, byte(7), tape[8])
}

func TestSubleqSelfModifying(t *testing.T) {
	tape := []byte{0, 1, 0, 0, 0, 0, 0, 0}
	Subleq{}.Execute(tape, 2)
	require.Equal(t, byte(255), tape[0])
	require.Equal(t, byte(255), tape[7])
}

func TestRsubleq4Basic(t *testing.T) {
	tape := []byte{4, 5, 6, 7, 0, 10, 3, 0}
	steps := Rsubleq4{}.Execute(tape, 100)
	require.Equal(t, 2, steps)
	require.Equal(t, byte(7), tape[4])
}

func TestRsubleq4LargeUnsignedOffset(t *testing.T) {
	tape := []byte{0xFF, 5, 6, 4, 0, 10, 3, 0}
	Rsubleq4{}.Execute(tape, 1)
	require.Equal(t, byte(7), tape[7])
}

func TestRsubleq4BranchTaken(t *testing.T) {
	tape := []byte{4, 5, 6, 0xFC, 0, 3, 5, 0}
	steps := Rsubleq4{}.Execute(tape, 100)
	require.Equal(t, 1, steps)
	require.Equal(t, byte(254), tape[4])
}

func TestRsubleq4StepLimit(t *testing.T) {
	tape := make([]byte, 8)
	steps := Rsubleq4{}.Execute(tape, 50)
	require.Equal(t, 50, steps)
}

func TestRsubleq4PaperSelfReplicator(t *testing.T) {
	replicator := []byte{
		9, 16, 20, 4, 4, 5, 19, 4, 0, 0, 12, 4, 253, 253, 9, 4,
		248, 8, 249, 244,
		0, 255, 255, 192, 183,
	}

	tape := make([]byte, 128)
	copy(tape, replicator)
	Rsubleq4{}.Execute(tape, 8192)

	cp := append([]byte(nil), tape[64:128]...)
	require.Equal(t, replicator[:8], cp[:8])
	require.Equal(t, replicator[10:25], cp[10:25])

	tape2 := make([]byte, 128)
	copy(tape2, cp[:64])
	Rsubleq4{}.Execute(tape2, 8192)
	cp2 := tape2[64:128]

	require.Equal(t, cp[:25], cp2[:25])
}

func TestSubleqAndRsubleq4NeverPanicAndRespectBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(256)
		tape := make([]byte, n)
		rng.Read(tape)
		limit := 1 + rng.Intn(1000)
		require.NotPanics(t, func() {
			steps := Subleq{}.Execute(append([]byte(nil), tape...), limit)
			require.LessOrEqual(t, steps, limit)
		})
		require.NotPanics(t, func() {
			steps := Rsubleq4{}.Execute(append([]byte(nil), tape...), limit)
			require.LessOrEqual(t, steps, limit)
		})
	}
}

func TestSubleqBattleBothHalt(t *testing.T) {
	tape := make([]byte, 16)
	steps := Subleq{}.ExecuteBattle(tape, 8, 100)
	require.LessOrEqual(t, steps, 100)
}
