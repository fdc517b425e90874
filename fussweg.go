// Package fussweg turns VIA pavement defect labels into per-image fault
// codes and writes them as TSV rows, per-image counters or a COCO-style
// document.
package fussweg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yyyoichi/fussweg/annot"
	"github.com/yyyoichi/fussweg/coco"
	"github.com/yyyoichi/fussweg/fault"
	"github.com/yyyoichi/fussweg/internal/logger"
	"github.com/yyyoichi/fussweg/via"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoDocuments   = errors.New("no documents")
	ErrUnknownFormat = errors.New("unknown document format")
)

type (
	Code             = fault.Code
	Defect           = annot.Defect
	ImageAnnotations = annot.ImageAnnotations
	Exif             = coco.Exif
)

// Format is the shape of a VIA export.
type Format int

const (
	CSV Format = iota + 1
	JSON
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSON:
		return "json"
	}
	return "unknown"
}

// FormatOf guesses the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Document is one VIA export to ingest.
type Document struct {
	Name   string
	Format Format
	Open   func() (io.ReadCloser, error)
}

// File returns a document read from path. The format follows the extension.
func File(path string) (Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:   path,
		Format: f,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Bytes returns a document backed by data.
func Bytes(name string, format Format, data []byte) Document {
	return Document{
		Name:   name,
		Format: format,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Pipeline ingests VIA exports and writes the derived outputs.
type Pipeline struct {
	workers   int
	prefix    string
	policy    via.ConditionPolicy
	allImages bool
	zap       *zap.Logger
	log       *logger.Logger
}

// New returns a Pipeline. By default documents are read with one worker
// per CPU and the first condition key wins.
func New(opts ...Option) (*Pipeline, error) {
	p := new(Pipeline)
	if err := p.init(opts...); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return err
		}
	}
	if p.workers == 0 {
		p.workers = runtime.NumCPU()
	}
	if p.zap == nil {
		p.zap = zap.NewNop()
	}
	p.log = logger.FromZap(p.zap)
	return nil
}

// Prefix returns the value written to the prefix column.
func (p *Pipeline) Prefix() string { return p.prefix }

// Ingest reads every document and groups the defects by image. Images are
// sorted by name and images without a fault are dropped. Any document that
// cannot be opened or is not structurally valid fails the whole call.
func (p *Pipeline) Ingest(ctx context.Context, docs ...Document) ([]ImageAnnotations, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	log := p.log.With("run", uuid.NewString())
	start := time.Now()

	results := make([][]Defect, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defects, err := p.read(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", doc.Name, err)
			}
			log.Debug("read document", "name", doc.Name, "format", doc.Format.String(), "defects", len(defects))
			results[i] = defects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("ingest failed", "error", err)
		return nil, err
	}

	groups := annot.Group(results...)
	log.Info("ingested", "documents", len(docs), "images", len(groups), "elapsed", time.Since(start))
	return groups, nil
}

// Ingest reads docs with a default Pipeline.
func Ingest(ctx context.Context, docs ...Document) ([]ImageAnnotations, error) {
	p, err := New()
	if err != nil {
		return nil, err
	}
	return p.Ingest(ctx, docs...)
}

func (p *Pipeline) read(doc Document) ([]Defect, error) {
	if doc.Open == nil {
		return nil, errors.New("document has no Open func")
	}
	rc, err := doc.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	opts := []via.Option{
		via.WithConditionPolicy(p.policy),
		via.WithLogger(p.zap.With(zap.String("document", doc.Name))),
	}
	switch doc.Format {
	case CSV:
		return via.ReadCSV(rc, opts...)
	case JSON:
		return via.ReadJSON(rc, opts...)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, doc.Format)
}

// WriteTSV writes one row per (image, fault category) under the header row.
func (p *Pipeline) WriteTSV(w io.Writer, groups []ImageAnnotations) error {
	return annot.WriteTSV(w, p.prefix, groups)
}

// WriteStats writes the per-image counter table.
func (p *Pipeline) WriteStats(w io.Writer, groups []ImageAnnotations) error {
	return annot.WriteStats(w, groups)
}

// WriteSummary writes the corpus wide totals.
func (p *Pipeline) WriteSummary(w io.Writer, groups []ImageAnnotations) error {
	return annot.Summarize(groups).WriteText(w)
}

// COCO joins the grouped defects with the image metadata feed and writes the
// COCO-style document. Rows are joined on (prefix, image) so exif must carry
// the same prefix as the pipeline.
func (p *Pipeline) COCO(ctx context.Context, groups []ImageAnnotations, exif []Exif, w io.Writer) error {
	return p.COCOFromRows(ctx, slices.Collect(annot.Rows(p.prefix, groups)), exif, w)
}

// COCOFromRows is COCO for rows read back from a TSV export.
func (p *Pipeline) COCOFromRows(ctx context.Context, rows []annot.Row, exif []Exif, w io.Writer) error {
	tables, err := coco.Normalize(ctx, rows, exif)
	if err != nil {
		return err
	}
	if tables.Unmatched > 0 {
		p.log.Warn("annotations without image metadata", "count", tables.Unmatched)
	}
	var opts []coco.Option
	if p.allImages {
		opts = append(opts, coco.WithAllImages())
	}
	doc := coco.Build(tables, opts...)
	p.log.Info("coco", "images", len(doc.Images), "annotations", len(doc.Annotations), "categories", len(doc.Categories))
	return doc.Encode(w)
}
