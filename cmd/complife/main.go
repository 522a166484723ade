// Command complife drives a primordial soup simulation from the command
// line: a well-mixed soup by default, or a spatial soup running on a
// generated or loaded mesh when --mesh is given.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"complife/mesh"
	"complife/meshsoup"
	"complife/metrics"
	"complife/soup"
	"complife/substrate"
)

type cliFlags struct {
	seed            int64
	epochs          int
	populationSize  int
	programSize     int
	stepLimit       int
	mutationRate    float64
	substrateName   string
	metricsInterval int
	benchmark       bool

	mesh             string
	meshSubdivisions int
	meshMajor        int
	meshMinor        int
	meshWidth        int
	meshHeight       int
	meshObj          string
}

func main() {
	f := &cliFlags{}

	root := &cobra.Command{
		Use:   "complife",
		Short: "Computational Life: primordial soup simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
		SilenceUsage: true,
	}

	flags := root.Flags()
	flags.Int64Var(&f.seed, "seed", 0, "random seed for reproducibility")
	flags.IntVar(&f.epochs, "epochs", 0, "number of epochs to run")
	flags.IntVar(&f.populationSize, "population-size", 1<<17, "number of programs in the population (well-mixed soup only)")
	flags.IntVar(&f.programSize, "program-size", 64, "bytes per program")
	flags.IntVar(&f.stepLimit, "step-limit", 1<<13, "max steps per program execution")
	flags.Float64Var(&f.mutationRate, "mutation-rate", 0.00024, "per-byte mutation probability per epoch (0 to disable)")
	flags.StringVar(&f.substrateName, "substrate", "bff", "instruction set to run")
	flags.IntVar(&f.metricsInterval, "metrics-interval", 1, "compute and output metrics every N epochs")
	flags.BoolVar(&f.benchmark, "benchmark", false, "run in benchmark mode: suppress CSV, print throughput stats")

	flags.StringVar(&f.mesh, "mesh", "", "run the spatial soup on a mesh: sphere, torus, grid, obj, tunnel (unset = well-mixed soup)")
	flags.IntVar(&f.meshSubdivisions, "mesh-subdivisions", 2, "icosphere subdivision level (mesh=sphere)")
	flags.IntVar(&f.meshMajor, "mesh-major", 24, "major segment/sphere count (mesh=torus, mesh=tunnel)")
	flags.IntVar(&f.meshMinor, "mesh-minor", 12, "minor segment count (mesh=torus, mesh=tunnel)")
	flags.IntVar(&f.meshWidth, "mesh-width", 16, "grid width (mesh=grid)")
	flags.IntVar(&f.meshHeight, "mesh-height", 16, "grid height (mesh=grid)")
	flags.StringVar(&f.meshObj, "mesh-obj", "", "path to a Wavefront OBJ file (mesh=obj)")

	if err := root.MarkFlagRequired("epochs"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f *cliFlags) error {
	if f.mesh != "" {
		return runMeshSimulation(f)
	}
	return runWellMixedSimulation(f)
}

func runWellMixedSimulation(f *cliFlags) error {
	switch f.substrateName {
	case "bff":
		return runWellMixed[substrate.BFF](f)
	case "forth":
		return runWellMixed[substrate.Forth](f)
	case "subleq":
		return runWellMixed[substrate.Subleq](f)
	case "rsubleq4":
		return runWellMixed[substrate.Rsubleq4](f)
	case "skim":
		return runWellMixed[substrate.Skim](f)
	case "bits":
		return runWellMixed[substrate.Bits](f)
	case "rig":
		return runWellMixed[substrate.Rig](f)
	case "qop":
		return runWellMixed[substrate.Qop](f)
	case "echo":
		return runWellMixed[substrate.Echo](f)
	case "ias":
		return runWellMixed[substrate.Ias](f)
	case "edsac":
		return runWellMixed[substrate.Edsac](f)
	case "edvac":
		return runWellMixed[substrate.Edvac](f)
	case "ssem":
		return runWellMixed[substrate.Ssem](f)
	case "pdp1":
		return runWellMixed[substrate.Pdp1](f)
	case "z3":
		return runWellMixed[substrate.Z3](f)
	case "z80":
		return runWellMixed[substrate.Z80](f)
	case "i8080":
		return runWellMixed[substrate.I8080](f)
	case "mos6502":
		return runWellMixed[substrate.Mos6502](f)
	case "uxn":
		return runWellMixed[substrate.Uxn](f)
	default:
		return fmt.Errorf("unknown substrate: %s", f.substrateName)
	}
}

func runMeshSimulation(f *cliFlags) error {
	m, err := buildMesh(f)
	if err != nil {
		return err
	}
	m.ComputeNeighbors(nil)

	switch f.substrateName {
	case "bff":
		return runMesh[substrate.BFF](f, m)
	case "forth":
		return runMesh[substrate.Forth](f, m)
	case "subleq":
		return runMesh[substrate.Subleq](f, m)
	case "rsubleq4":
		return runMesh[substrate.Rsubleq4](f, m)
	case "skim":
		return runMesh[substrate.Skim](f, m)
	case "bits":
		return runMesh[substrate.Bits](f, m)
	case "rig":
		return runMesh[substrate.Rig](f, m)
	case "qop":
		return runMesh[substrate.Qop](f, m)
	case "echo":
		return runMesh[substrate.Echo](f, m)
	case "ias":
		return runMesh[substrate.Ias](f, m)
	case "edsac":
		return runMesh[substrate.Edsac](f, m)
	case "edvac":
		return runMesh[substrate.Edvac](f, m)
	case "ssem":
		return runMesh[substrate.Ssem](f, m)
	case "pdp1":
		return runMesh[substrate.Pdp1](f, m)
	case "z3":
		return runMesh[substrate.Z3](f, m)
	case "z80":
		return runMesh[substrate.Z80](f, m)
	case "i8080":
		return runMesh[substrate.I8080](f, m)
	case "mos6502":
		return runMesh[substrate.Mos6502](f, m)
	case "uxn":
		return runMesh[substrate.Uxn](f, m)
	default:
		return fmt.Errorf("unknown substrate: %s", f.substrateName)
	}
}

func buildMesh(f *cliFlags) (*mesh.SurfaceMesh, error) {
	switch f.mesh {
	case "sphere":
		return mesh.Icosphere(f.meshSubdivisions)
	case "torus":
		return mesh.Torus(f.meshMajor, f.meshMinor)
	case "grid":
		return mesh.FlatGrid(f.meshWidth, f.meshHeight)
	case "obj":
		if f.meshObj == "" {
			return nil, fmt.Errorf("--mesh-obj is required when --mesh=obj")
		}
		return mesh.FromOBJ(f.meshObj)
	case "tunnel":
		return mesh.HamsterTunnel(f.meshMajor, f.meshMinor, f.seed)
	default:
		return nil, fmt.Errorf("unknown mesh kind: %s (expected sphere, torus, grid, obj, tunnel)", f.mesh)
	}
}

func runWellMixed[S substrate.Substrate](f *cliFlags) error {
	config := soup.Config{
		PopulationSize: f.populationSize,
		ProgramSize:    f.programSize,
		StepLimit:      f.stepLimit,
		MutationRate:   f.mutationRate,
	}
	s := soup.New[S](config, f.seed)

	if f.benchmark {
		runBenchmark(func() { s.RunEpoch(); s.Mutate() }, f.epochs, f.populationSize)
		return nil
	}

	fmt.Println("epoch,hoe")
	fmt.Printf("0,%.6f\n", metrics.HighOrderEntropy(s.PopulationBytes()))

	for epoch := 1; epoch <= f.epochs; epoch++ {
		s.RunEpoch()
		s.Mutate()

		if epoch%f.metricsInterval == 0 {
			fmt.Printf("%d,%.6f\n", epoch, metrics.HighOrderEntropy(s.PopulationBytes()))
		}
		if epoch%100 == 0 || epoch == f.epochs {
			fmt.Fprintf(os.Stderr, "\repoch %d/%d", epoch, f.epochs)
		}
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func runMesh[S substrate.Substrate](f *cliFlags, m *mesh.SurfaceMesh) error {
	config := meshsoup.Config{
		ProgramSize:  f.programSize,
		StepLimit:    f.stepLimit,
		MutationRate: f.mutationRate,
	}
	s := meshsoup.New[S](m, config, f.seed)
	populationSize := m.NumCells()

	if f.benchmark {
		runBenchmark(func() { s.RunEpoch(); s.Mutate() }, f.epochs, populationSize)
		return nil
	}

	fmt.Println("epoch,hoe")
	fmt.Printf("0,%.6f\n", metrics.HighOrderEntropy(s.PopulationBytes()))

	for epoch := 1; epoch <= f.epochs; epoch++ {
		s.RunEpoch()
		s.Mutate()

		if epoch%f.metricsInterval == 0 {
			fmt.Printf("%d,%.6f\n", epoch, metrics.HighOrderEntropy(s.PopulationBytes()))
		}
		if epoch%100 == 0 || epoch == f.epochs {
			fmt.Fprintf(os.Stderr, "\repoch %d/%d", epoch, f.epochs)
		}
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func runBenchmark(step func(), epochs, populationSize int) {
	start := time.Now()
	for i := 0; i < epochs; i++ {
		step()
	}
	elapsed := time.Since(start)

	totalInteractions := int64(epochs) * int64(populationSize)
	epochsPerSec := float64(epochs) / elapsed.Seconds()
	interactionsPerSec := float64(totalInteractions) / elapsed.Seconds()

	fmt.Fprintln(os.Stderr, "Benchmark results:")
	fmt.Fprintf(os.Stderr, "  Epochs:             %d\n", epochs)
	fmt.Fprintf(os.Stderr, "  Population size:    %d\n", populationSize)
	fmt.Fprintf(os.Stderr, "  Total interactions: %d\n", totalInteractions)
	fmt.Fprintf(os.Stderr, "  Elapsed:            %s\n", elapsed)
	fmt.Fprintf(os.Stderr, "  Epochs/sec:         %.1f\n", epochsPerSec)
	fmt.Fprintf(os.Stderr, "  Interactions/sec:   %.0f\n", interactionsPerSec)
}
