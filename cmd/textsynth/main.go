// Command textsynth writes a directory of synthetic text-line images and a
// labels.tsv file mapping each image to its text.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/textsynth"
	"github.com/gogpu/textsynth/corpus"
	"github.com/gogpu/textsynth/fontindex"
	"github.com/gogpu/textsynth/internal/randx"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "YAML configuration file")
		outDir     = flag.String("out", "out", "output directory")
		count      = flag.Int("n", 100, "number of images")
		minLen     = flag.Int("min", 5, "minimum characters per line")
		maxLen     = flag.Int("max", 10, "maximum characters per line")
		symbol     = flag.Bool("symbol", false, "insert an extra symbol into sampled lines")
		latin      = flag.Bool("latin", false, "sample from the Latin corpus instead of ideographs")
		effect     = flag.Bool("effect", true, "apply background blending and degradation effects")
		seed       = flag.Uint64("seed", 0, "random seed, 0 picks one; the dataset also depends on -workers")
		workers    = flag.Int("workers", runtime.GOMAXPROCS(0), "parallel generators")
		text       = flag.String("text", "", "render this text once instead of sampling")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	textsynth.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := textsynth.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	var opts []textsynth.Option
	if *seed != 0 {
		opts = append(opts, textsynth.WithSeed(*seed))
	}
	g, err := textsynth.NewGenerator(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to build generator: %v", err)
	}
	defer g.Close()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", *outDir, err)
	}

	if *text != "" {
		img, err := g.Generate(*text, *effect)
		if err != nil {
			log.Fatalf("Failed to render %q: %v", *text, err)
		}
		out := filepath.Join(*outDir, "text.png")
		if err := img.SavePNG(out); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Saved %s (%dx%d)\n", out, img.Width(), img.Height())
		return
	}

	j := job{
		dir:    *outDir,
		minLen: *minLen,
		maxLen: *maxLen,
		symbol: *symbol,
		latin:  *latin,
		effect: *effect,
	}
	labels, err := run(context.Background(), g, j, *count, max(*workers, 1))
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
	if err := writeLabels(filepath.Join(*outDir, "labels.tsv"), labels); err != nil {
		log.Fatalf("Failed to write labels: %v", err)
	}
	log.Printf("Generated %d images in %s (seed %d, %d workers)\n", *count, *outDir, g.Seed(), max(*workers, 1))
}

type job struct {
	dir            string
	minLen, maxLen int
	symbol, latin  bool
	effect         bool
}

type label struct {
	file, text string
}

// run splits n images over workers forked generators. Worker w draws
// from a seed derived from the base seed and w, and image i is always
// produced by worker i%workers, so the same seed and the same -workers
// value give the same dataset; changing -workers reshuffles it.
func run(ctx context.Context, g *textsynth.Generator, j job, n, workers int) ([]label, error) {
	forks := make([]*textsynth.Generator, workers)
	for w := range forks {
		fg, err := g.Fork(randx.DeriveSeed(g.Seed(), w))
		if err != nil {
			for _, f := range forks[:w] {
				_ = f.Close()
			}
			return nil, err
		}
		forks[w] = fg
	}

	labels := make([]label, n)
	eg, ctx := errgroup.WithContext(ctx)
	for w, fg := range forks {
		eg.Go(func() error {
			defer fg.Close()
			for i := w; i < n; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				l, err := one(fg, j, i)
				if err != nil {
					return fmt.Errorf("image %d: %w", i, err)
				}
				labels[i] = l
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}

func one(g *textsynth.Generator, j job, i int) (label, error) {
	var (
		segs []fontindex.Binding
		err  error
	)
	if j.latin {
		segs, err = g.RandomLatin(j.minLen, j.maxLen)
	} else {
		segs, err = g.RandomChinese(j.minLen, j.maxLen, j.symbol)
	}
	if err != nil {
		return label{}, err
	}
	img, err := g.GenImageFromTextWithFontList(segs, textsynth.Black, textsynth.White, j.effect)
	if err != nil {
		return label{}, err
	}
	name := fmt.Sprintf("%06d.png", i)
	if err := img.SavePNG(filepath.Join(j.dir, name)); err != nil {
		return label{}, err
	}
	return label{file: name, text: corpus.Text(segs)}, nil
}

func writeLabels(path string, labels []label) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range labels {
		fmt.Fprintf(w, "%s\t%s\n", l.file, l.text)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
