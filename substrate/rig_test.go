package substrate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRigHalt(t *testing.T) {
	tape := makeForthTape([]byte{0xB0}, 128)
	steps := Rig{}.Execute(tape, 8192)
	require.Equal(t, 1, steps)
}

func TestRigIncR0(t *testing.T) {
	tape := makeForthTape([]byte{0x60, 0x60, 0x14, 0xB0}, 128)
	Rig{}.Execute(tape, 8192)
	require.Equal(t, byte(2), tape[64])
}

func TestRigR1StartsAtHalf(t *testing.T) {
	tape := makeForthTape([]byte{0x15, 0xB0}, 128)
	Rig{}.Execute(tape, 8192)
	require.Equal(t, byte(64), tape[64])
}

func TestRigJzTakenInfiniteLoop(t *testing.T) {
	tape := makeForthTape([]byte{0x8C, 0xB0}, 128)
	steps := Rig{}.Execute(tape, 10)
	require.Equal(t, 10, steps)
}

func TestRigFourByteSelfReplicator(t *testing.T) {
	replicator := []byte{0xA4, 0x60, 0x64, 0x9C}
	tape := make([]byte, 128)
	copy(tape, replicator)
	Rig{}.Execute(tape, 8192)
	require.Equal(t, replicator, tape[64:68])
	require.Equal(t, make([]byte, 60), tape[68:128])
}

func TestRigReplicatorFixedPoint(t *testing.T) {
	replicator := []byte{0xA4, 0x60, 0x64, 0x9C}

	tape1 := make([]byte, 128)
	copy(tape1, replicator)
	Rig{}.Execute(tape1, 8192)
	copy1 := append([]byte(nil), tape1[64:128]...)

	tape2 := make([]byte, 128)
	copy(tape2, copy1[:64])
	Rig{}.Execute(tape2, 8192)
	copy2 := tape2[64:128]

	require.Equal(t, copy1, copy2)
}

func TestRigEmptyTape(t *testing.T) {
	require.Equal(t, 0, Rig{}.Execute(nil, 8192))
}

func TestRigNeverPanicsAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(256)
		tape := make([]byte, n)
		rng.Read(tape)
		limit := 1 + rng.Intn(1000)
		before := len(tape)
		require.NotPanics(t, func() {
			steps := Rig{}.Execute(tape, limit)
			require.LessOrEqual(t, steps, limit)
		})
		require.Equal(t, before, len(tape))
	}
}
