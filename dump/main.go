package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/kataras/golog"
	"github.com/xor-shift/simdpcg/common"
	"github.com/xor-shift/simdpcg/util/rng"
)

type Globals struct {
	Backend string `name:"backend" short:"b" enum:"${backends}" default:"${backend}" help:"Lane arithmetic backend (${backends})"`
	Seed    string `name:"seed" xor:"seed" help:"Seed as 128 hex digits: four states followed by four increments"`
	From    string `name:"from" xor:"seed" help:"Expand a 64-bit integer into a seed"`
}

var errBadFrom = errors.New("--from expects an unsigned 64-bit integer")

// seed resolves the seed flags, falling back to entropy.
func (g *Globals) seed(entropy io.Reader) (rng.Seed, error) {
	switch {
	case g.Seed != "":
		return rng.ParseSeed(g.Seed)
	case g.From != "":
		from, err := strconv.ParseUint(g.From, 0, 64)
		if err != nil {
			return rng.Seed{}, fmt.Errorf("%w: %s", errBadFrom, err)
		}
		return rng.SeedFromUint64(from), nil
	default:
		return rng.ReadSeed(entropy)
	}
}

func (g *Globals) generator(entropy io.Reader) (*rng.PCG32x4, error) {
	backend, err := rng.BackendByName(g.Backend)
	if err != nil {
		return nil, err
	}

	seed, err := g.seed(entropy)
	if err != nil {
		return nil, err
	}

	golog.Debugf("seed %s", seed)

	return rng.FromSeed(backend, seed), nil
}

type seedCmd struct{}

func (c *seedCmd) Run(g *Globals) error {
	seed, err := g.seed(rand.Reader)
	if err != nil {
		return err
	}

	_, err = fmt.Println(seed)
	return err
}

type wordsCmd struct {
	Steps  uint64 `name:"steps" short:"n" default:"16" help:"Number of steps to output"`
	Skip   uint64 `name:"skip" default:"0" help:"Number of steps to jump over first"`
	Out    string `name:"out" short:"o" default:"-" help:"File to output to (templated, - for stdout)"`
	Format string `name:"format" short:"f" enum:"hex,csv,json,raw" default:"hex" help:"Output format"`

	ExportColumnTitles bool `name:"export_column_titles" negatable:"" default:"true" help:"(applicable only to CSV outputs) whether to include column titles"`
}

func (c *wordsCmd) Run(g *Globals) error {
	gen, err := g.generator(rand.Reader)
	if err != nil {
		return err
	}

	name := outputArguments{
		Seed:    gen.Seed().String()[:16],
		Backend: g.Backend,
		Format:  c.Format,
	}

	gen.Advance(c.Skip)

	words := make([][4]uint32, c.Steps)
	for i := range words {
		words[i] = gen.Next()
	}

	out, err := openOutput(c.Out, name)
	if err != nil {
		return err
	}

	return closeOutput(out, exporters[c.Format](out, c.Skip, words, c.ExportColumnTitles))
}

type bytesCmd struct {
	Count int64  `name:"count" short:"n" default:"64" help:"Number of bytes to output"`
	Out   string `name:"out" short:"o" default:"-" help:"File to output to (templated, - for stdout)"`
}

func (c *bytesCmd) Run(g *Globals) error {
	gen, err := g.generator(rand.Reader)
	if err != nil {
		return err
	}

	out, err := openOutput(c.Out, outputArguments{
		Seed:    gen.Seed().String()[:16],
		Backend: g.Backend,
		Format:  "raw",
	})
	if err != nil {
		return err
	}

	_, err = io.CopyN(out, rng.NewSource(gen), c.Count)
	return closeOutput(out, err)
}

type benchCmd struct {
	Steps   uint64 `name:"steps" short:"n" default:"10000000" help:"Steps per engine"`
	Engines []int  `name:"engines" default:"1,2,4,8" help:"Numbers of interleaved engines to time"`
}

func (c *benchCmd) Run(g *Globals) error {
	backend, err := rng.BackendByName(g.Backend)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "generator\tengines\tns/word\tMword/s")

	report := func(name string, engines int, words uint64, elapsed time.Duration) {
		perWord := float64(elapsed.Nanoseconds()) / float64(words)
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.1f\n", name, engines, perWord, 1e3/perWord)
	}

	for _, engines := range c.Engines {
		if engines <= 0 {
			return fmt.Errorf("engine count must be positive, got %d", engines)
		}

		elapsed, sink := benchVector(backend, engines, c.Steps)
		report(g.Backend, engines, 4*uint64(engines)*c.Steps, elapsed)

		elapsedRef, sinkRef := benchReference(engines, c.Steps)
		report("reference", engines, 4*uint64(engines)*c.Steps, elapsedRef)

		golog.Debugf("sinks: %08x %08x", sink, sinkRef)
	}

	return w.Flush()
}

func benchVector(backend rng.Backend, engines int, steps uint64) (time.Duration, uint32) {
	gens := make([]*rng.PCG32x4, engines)
	for i := range gens {
		gens[i] = rng.FromSeed(backend, rng.SeedFromUint64(uint64(i)))
	}

	var sink uint32
	start := time.Now()

	for s := uint64(0); s < steps; s++ {
		for _, gen := range gens {
			words := gen.Next()
			sink ^= words[0] ^ words[1] ^ words[2] ^ words[3]
		}
	}

	return time.Since(start), sink
}

func benchReference(engines int, steps uint64) (time.Duration, uint32) {
	lanes := make([]rng.PCG32, 4*engines)
	for i := 0; i < engines; i++ {
		seed := rng.SeedFromUint64(uint64(i))
		for j := 0; j < 4; j++ {
			lanes[4*i+j] = rng.NewPCG32(seed.State[j], seed.Increment[j])
		}
	}

	var sink uint32
	start := time.Now()

	for s := uint64(0); s < steps; s++ {
		for i := range lanes {
			sink ^= lanes[i].Next()
		}
	}

	return time.Since(start), sink
}

type cli struct {
	Globals

	LogLevel string `name:"log_level" default:"${log_level}" help:"golog level"`

	PrintSeed seedCmd  `cmd:"" name:"print-seed" help:"Print the resolved seed"`
	Words     wordsCmd `cmd:"" help:"Dump 32-bit outputs, four lanes per step"`
	Bytes     bytesCmd `cmd:"" help:"Dump the output as a byte stream"`
	Bench     benchCmd `cmd:"" help:"Time the vector generator against four scalar generators"`
}

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		golog.Fatalf("loading config failed: %s", err)
	}

	args := cli{}

	ctx := kong.Parse(&args,
		kong.Name("dump"),
		kong.Description("Four-lane PCG32 output dumper"),
		kong.UsageOnError(),
		kong.Vars{
			"backends":  strings.Join(rng.BackendNames(), ","),
			"backend":   cfg.RNGBackend,
			"log_level": cfg.LogLevel,
		})

	golog.SetLevel(args.LogLevel)

	ctx.FatalIfErrorf(ctx.Run(&args.Globals))
}
