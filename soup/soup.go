// Package soup implements the well-mixed primordial soup: a flat population
// of byte programs that interact pairwise under a substrate and drift under
// background point mutation.
package soup

import (
	"math"
	"math/rand"

	"complife/substrate"
)

// geometricSkip draws the number of bytes to advance before the next
// mutation site, via inverse-CDF sampling of a geometric distribution.
// invLog must be 1 / ln(1 - mutationRate), precomputed by the caller.
func geometricSkip(rng *rand.Rand, invLog float64) int {
	u := rng.Float64()
	if u < 1e-300 {
		return math.MaxInt
	}
	return int(math.Log(u) * invLog)
}

// Config holds the tunable parameters of a well-mixed soup.
type Config struct {
	// PopulationSize is the number of programs in the population.
	PopulationSize int
	// ProgramSize is the number of bytes per program.
	ProgramSize int
	// StepLimit bounds every substrate execution.
	StepLimit int
	// MutationRate is the per-byte, per-epoch probability of a single bit
	// flip. Zero disables mutation entirely.
	MutationRate float64
}

// DefaultConfig mirrors the scale used for full-length soup runs.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 1 << 17,
		ProgramSize:    64,
		StepLimit:      1 << 13,
		MutationRate:   0.00024,
	}
}

// Soup holds a population of programs, each ProgramSize bytes, paired
// uniformly at random and executed under S.
type Soup[S substrate.Substrate] struct {
	Programs [][]byte
	Config   Config
	Rng      *rand.Rand
}

// New creates a soup with every program byte filled from a seeded RNG.
func New[S substrate.Substrate](config Config, seed int64) *Soup[S] {
	rng := rand.New(rand.NewSource(seed))
	programs := make([][]byte, config.PopulationSize)
	for i := range programs {
		prog := make([]byte, config.ProgramSize)
		rng.Read(prog)
		programs[i] = prog
	}
	return &Soup[S]{Programs: programs, Config: config, Rng: rng}
}

// InteractionStep picks two distinct programs, concatenates them in a
// randomly chosen order, runs the substrate over the combined tape, and
// writes the two halves back in place.
func (s *Soup[S]) InteractionStep() {
	n := len(s.Programs)
	if n < 2 {
		return
	}

	i := s.Rng.Intn(n)
	j := s.Rng.Intn(n - 1)
	if j >= i {
		j++
	}

	first, second := i, j
	if s.Rng.Intn(2) == 0 {
		first, second = j, i
	}

	ps := s.Config.ProgramSize
	tape := make([]byte, ps*2)
	copy(tape[:ps], s.Programs[first])
	copy(tape[ps:], s.Programs[second])

	var sub S
	sub.Execute(tape, s.Config.StepLimit)

	s.Programs[first] = append(s.Programs[first][:0], tape[:ps]...)
	s.Programs[second] = append(s.Programs[second][:0], tape[ps:]...)
}

// RunEpoch performs exactly PopulationSize interaction steps.
func (s *Soup[S]) RunEpoch() {
	n := s.Config.PopulationSize
	for i := 0; i < n; i++ {
		s.InteractionStep()
	}
}

// Mutate applies background point mutation: with probability MutationRate
// per byte, one uniformly-chosen bit in that byte is flipped. Uses
// geometric-skip sampling so the expected RNG draw count is
// O(total bytes * MutationRate) rather than O(total bytes).
func (s *Soup[S]) Mutate() {
	if s.Config.MutationRate <= 0.0 {
		return
	}
	ps := s.Config.ProgramSize
	totalBytes := len(s.Programs) * ps
	invLog := 1.0 / math.Log(1.0-s.Config.MutationRate)

	pos := geometricSkip(s.Rng, invLog)
	for pos < totalBytes {
		progIdx := pos / ps
		byteIdx := pos % ps
		bit := byte(1) << s.Rng.Intn(8)
		s.Programs[progIdx][byteIdx] ^= bit
		pos += 1 + geometricSkip(s.Rng, invLog)
	}
}

// PopulationBytesInto concatenates every program into buf, which is
// truncated and reused to avoid reallocating on repeated calls.
func (s *Soup[S]) PopulationBytesInto(buf *[]byte) {
	*buf = (*buf)[:0]
	for _, prog := range s.Programs {
		*buf = append(*buf, prog...)
	}
}

// PopulationBytes returns the entire population as one flat byte slice.
func (s *Soup[S]) PopulationBytes() []byte {
	var buf []byte
	s.PopulationBytesInto(&buf)
	return buf
}
