package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rhartert/yalis/internal/branching"
	"github.com/rhartert/yalis/internal/solver"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

var flagTimeout = flag.Duration(
	"timeout",
	0,
	"stop search after this much time and report unknown (0 disables the limit)",
)

var flagLubyRestarts = flag.Bool(
	"luby-restarts",
	false,
	"enable Luby-sequence restarts",
)

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	return &config{
		instanceFile: flag.Arg(0),
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
		timeout:      *flagTimeout,
		lubyRestarts: *flagLubyRestarts,
	}, nil
}

type config struct {
	instanceFile string
	memProfile   bool
	cpuProfile   bool
	timeout      time.Duration
	lubyRestarts bool
}

func run(cfg *config) error {
	opts := solver.DefaultOptions
	opts.LubyRestarts = cfg.lubyRestarts
	s := solver.New(opts, nil)

	in, err := loadInstance(cfg.instanceFile, s)
	if err != nil {
		return fmt.Errorf("could not load instance: %w", err)
	}

	fmt.Printf("c variables: %d\n", len(in.vars))

	brancher := branching.NewMaxRegret(in.vars)
	var term solver.Termination = solver.Indefinite{}
	if cfg.timeout > 0 {
		term = solver.TimeLimit{Deadline: time.Now().Add(cfg.timeout)}
	}

	t := time.Now()
	status, err := s.Satisfy(brancher, term)
	elapsed := time.Since(t)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d\n", s.TotalConflicts)
	fmt.Printf("c restarts:   %d\n", s.TotalRestarts)
	fmt.Printf("c status:     %s\n", status)

	if status == solver.StatusSatisfiable {
		for i, x := range in.vars {
			fmt.Printf("x%d = %d;\n", i, s.IntegerValue(x))
		}
	}

	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
		return
	}
}
