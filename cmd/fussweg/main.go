package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yyyoichi/fussweg"
	"github.com/yyyoichi/fussweg/annot"
	"github.com/yyyoichi/fussweg/coco"
	"github.com/yyyoichi/fussweg/config"
	"github.com/yyyoichi/fussweg/internal/logger"
	"github.com/yyyoichi/fussweg/via"
)

const usage = `usage: fussweg <command> [flags] <file or directory>...

commands:
  tsv      write one row per image and fault category
  stats    write per-image counters as CSV
  summary  print corpus wide totals
  coco     join with an EXIF feed and write a COCO-style JSON document

directories are expanded to the *.csv and *.json files they contain.
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd := args[0]
	switch cmd {
	case "tsv", "stats", "summary", "coco":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	envPath := fs.String("env", ".env", "dotenv file")
	output := fs.String("o", "", "output file (default stdout)")
	prefix := fs.String("prefix", "", "prefix column value, overrides the config")
	workers := fs.Int("workers", 0, "documents read in parallel, overrides the config")
	policy := fs.String("policy", "", "condition policy first|last|strict, overrides the config")
	exifPath := fs.String("exif", "", "coco: tab separated EXIF feed")
	fromTSV := fs.Bool("from-tsv", false, "coco: inputs are TSV exports instead of VIA files")
	allImages := fs.Bool("all-images", false, "coco: keep images without annotations")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: no input", errUsage)
	}

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		return err
	}
	if *prefix != "" {
		cfg.Prefix = *prefix
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *policy != "" {
		cfg.ConditionPolicy = *policy
	}
	if *allImages {
		cfg.COCO.AllImages = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer lg.Sync()

	p, err := newPipeline(cfg, lg)
	if err != nil {
		return err
	}

	if cmd == "coco" && *exifPath == "" {
		return fmt.Errorf("%w: coco needs -exif", errUsage)
	}
	return emit(stdout, *output, func(w io.Writer) error {
		if cmd == "coco" {
			return runCOCO(ctx, p, *exifPath, *fromTSV, fs.Args(), w)
		}
		docs, err := documents(fs.Args())
		if err != nil {
			return err
		}
		groups, err := p.Ingest(ctx, docs...)
		if err != nil {
			return err
		}
		switch cmd {
		case "tsv":
			return p.WriteTSV(w, groups)
		case "stats":
			return p.WriteStats(w, groups)
		default:
			return p.WriteSummary(w, groups)
		}
	})
}

// emit runs produce against stdout, or, when path is set, buffers the
// output and writes the file only once produce succeeded.
func emit(stdout io.Writer, path string, produce func(io.Writer) error) error {
	if path == "" {
		return produce(stdout)
	}
	var buf bytes.Buffer
	if err := produce(&buf); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func newPipeline(cfg *config.Config, lg *logger.Logger) (*fussweg.Pipeline, error) {
	policy, err := via.ParseConditionPolicy(cfg.ConditionPolicy)
	if err != nil {
		return nil, err
	}
	opts := []fussweg.Option{
		fussweg.WithPrefix(cfg.Prefix),
		fussweg.WithWorkers(cfg.Workers),
		fussweg.WithConditionPolicy(policy),
		fussweg.WithLogger(lg.SugaredLogger.Desugar()),
	}
	if cfg.COCO.AllImages {
		opts = append(opts, fussweg.WithAllImages())
	}
	return fussweg.New(opts...)
}

func runCOCO(ctx context.Context, p *fussweg.Pipeline, exifPath string, fromTSV bool, inputs []string, w io.Writer) error {
	f, err := os.Open(exifPath)
	if err != nil {
		return err
	}
	exif, err := coco.ReadExifTSV(f)
	f.Close()
	if err != nil {
		return err
	}

	if !fromTSV {
		docs, err := documents(inputs)
		if err != nil {
			return err
		}
		groups, err := p.Ingest(ctx, docs...)
		if err != nil {
			return err
		}
		return p.COCO(ctx, groups, exif, w)
	}

	var rows []annot.Row
	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		rs, err := annot.ReadTSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rows = append(rows, rs...)
	}
	return p.COCOFromRows(ctx, rows, exif, w)
}

// documents expands directories to their VIA exports, sorted by name.
func documents(paths []string) ([]fussweg.Document, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".csv" && ext != ".json") {
				continue
			}
			found = append(found, filepath.Join(path, e.Name()))
		}
		slices.Sort(found)
		files = append(files, found...)
	}

	docs := make([]fussweg.Document, 0, len(files))
	for _, path := range files {
		doc, err := fussweg.File(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
