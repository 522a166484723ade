// Package meshsoup implements the spatial primordial soup: one program lives
// on each face of a surface mesh, and each epoch pairs every cell with a
// randomly chosen geodesic neighbor instead of a uniformly-random stranger.
package meshsoup

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"complife/mesh"
	"complife/substrate"
)

// geometricSkip draws the number of bytes to advance before the next
// mutation site. Duplicated from the well-mixed soup rather than shared,
// since the two soups otherwise have no common dependency.
func geometricSkip(rng *rand.Rand, invLog float64) int {
	u := rng.Float64()
	if u < 1e-300 {
		return math.MaxInt
	}
	return int(math.Log(u) * invLog)
}

// Config holds the tunable parameters of a spatial soup. Population size is
// implicit: it's the face count of the mesh.
type Config struct {
	ProgramSize  int
	StepLimit    int
	MutationRate float64
}

// Soup runs a population of programs, one per mesh face, paired each epoch
// with a random geodesic neighbor and executed under S.
type Soup[S substrate.Substrate] struct {
	Programs [][]byte
	Config   Config
	Mesh     *mesh.SurfaceMesh
	Rng      *rand.Rand

	order    []int
	taken    []bool
	pairs    [][2]int
	tapePool []byte
}

// New creates a spatial soup over mesh m, with every program byte filled
// from a seeded RNG.
func New[S substrate.Substrate](m *mesh.SurfaceMesh, config Config, seed int64) *Soup[S] {
	rng := rand.New(rand.NewSource(seed))
	total := m.NumCells()

	programs := make([][]byte, total)
	for i := range programs {
		prog := make([]byte, config.ProgramSize)
		rng.Read(prog)
		programs[i] = prog
	}

	order := make([]int, total)
	for i := range order {
		order[i] = i
	}

	return &Soup[S]{
		Programs: programs,
		Config:   config,
		Mesh:     m,
		Rng:      rng,
		order:    order,
		taken:    make([]bool, total),
	}
}

// RunEpoch pairs each cell with a random geodesic neighbor (phase 1,
// sequential — pairing decisions share the RNG and a taken-set) and then
// executes every pair concurrently (phase 2, parallel — pairs are
// independent once chosen).
func (s *Soup[S]) RunEpoch() {
	total := s.Mesh.NumCells()
	ps := s.Config.ProgramSize
	stepLimit := s.Config.StepLimit

	// Phase 1: build pairs.
	for i := 0; i < total; i++ {
		s.order[i] = i
	}
	s.Rng.Shuffle(total, func(i, j int) { s.order[i], s.order[j] = s.order[j], s.order[i] })

	if len(s.taken) != total {
		s.taken = make([]bool, total)
	} else {
		for i := range s.taken {
			s.taken[i] = false
		}
	}
	s.pairs = s.pairs[:0]

	for i := 0; i < total; i++ {
		pIdx := s.order[i]
		if s.taken[pIdx] {
			continue
		}

		rng := s.Mesh.NeighborRanges[pIdx]
		start, end := rng[0], rng[1]
		neighborCount := end - start
		if neighborCount == 0 {
			continue
		}

		nIdx := s.Mesh.NeighborIndices[start+s.Rng.Intn(neighborCount)]
		if s.taken[nIdx] {
			continue
		}

		s.taken[pIdx] = true
		s.taken[nIdx] = true

		first, second := pIdx, nIdx
		if s.Rng.Intn(2) == 0 {
			first, second = nIdx, pIdx
		}
		s.pairs = append(s.pairs, [2]int{first, second})
	}

	// Phase 2: execute all pairs concurrently.
	numPairs := len(s.pairs)
	tapeSize := ps * 2
	needed := numPairs * tapeSize
	if cap(s.tapePool) < needed {
		s.tapePool = make([]byte, needed)
	} else {
		s.tapePool = s.tapePool[:needed]
	}

	for i, pair := range s.pairs {
		base := i * tapeSize
		copy(s.tapePool[base:base+ps], s.Programs[pair[0]])
		copy(s.tapePool[base+ps:base+tapeSize], s.Programs[pair[1]])
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < numPairs; i++ {
		i := i
		g.Go(func() error {
			base := i * tapeSize
			var sub S
			sub.Execute(s.tapePool[base:base+tapeSize], stepLimit)
			return nil
		})
	}
	_ = g.Wait()

	for i, pair := range s.pairs {
		base := i * tapeSize
		copy(s.Programs[pair[0]], s.tapePool[base:base+ps])
		copy(s.Programs[pair[1]], s.tapePool[base+ps:base+tapeSize])
	}
}

// Mutate applies background point mutation across the whole population, with
// the same geometric-skip technique the well-mixed soup uses.
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
