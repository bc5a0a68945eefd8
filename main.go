package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/jmercer/expsat/internal/sat"
	"github.com/jmercer/expsat/parsers"
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

var flagGzip = flag.Bool(
	"gzip",
	false,
	"treat the instance file as gzip-compressed",
)

var flagTimeout = flag.Duration(
	"timeout",
	0,
	"abort the search and report UNKNOWN after this long (0 disables)",
)

var flagProof = flag.String(
	"proof",
	"",
	"write a DRAT refutation proof to this file on UNSAT",
)

var flagProofBinary = flag.Bool(
	"proof-binary",
	false,
	"emit the DRAT proof in the binary variable-byte format",
)

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	return &config{
		instanceFile: flag.Arg(0),
		gzipped:      *flagGzip,
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
		timeout:      *flagTimeout,
		proofFile:    *flagProof,
		proofBinary:  *flagProofBinary,
	}, nil
}

type config struct {
	instanceFile string
	gzipped      bool
	memProfile   bool
	cpuProfile   bool
	timeout      time.Duration
	proofFile    string
	proofBinary  bool
}

// exit codes follow the CLI-collaborator contract: 10 SAT, 20 UNSAT, 0
// UNKNOWN (interrupted, timed out, or resource-limited).
const (
	exitSAT     = 10
	exitUNSAT   = 20
	exitUnknown = 0
)

func run(cfg *config) (int, error) {
	opts := sat.DefaultOptions
	opts.Progress = os.Stdout

	var proofFile *os.File
	if cfg.proofFile != "" {
		f, err := os.Create(cfg.proofFile)
		if err != nil {
			return exitUnknown, fmt.Errorf("could not create proof file: %s", err)
		}
		proofFile = f
		opts.ProofWriter = f
		opts.ProofBinary = cfg.proofBinary
	}

	s := sat.NewSolver(opts)

	if err := parsers.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s); err != nil {
		return exitUnknown, fmt.Errorf("could not parse instance: %s", err)
	}

	fmt.Printf("c variables:  %d\n", s.NumVariables())
	fmt.Printf("c clauses:    %d\n", s.NumConstraints())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			s.Interrupt()
		}
	}()

	if cfg.timeout > 0 {
		timer := time.AfterFunc(cfg.timeout, s.Interrupt)
		defer timer.Stop()
	}

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	if proofFile != nil {
		proofFile.Close()
	}

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())
	fmt.Printf("c restarts:   %d\n", s.TotalRestarts)
	fmt.Printf("c status:     %s\n", status.String())

	switch status {
	case sat.True:
		return exitSAT, nil
	case sat.False:
		return exitUNSAT, nil
	default:
		return exitUnknown, nil
	}
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
	}

	code, err := run(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		pprof.StopCPUProfile()
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

	os.Exit(code)
}
