// Package coco builds the relational form of a batch of annotations and
// exports it as a COCO-style document.
package coco

import (
	"context"
	"errors"
	"fmt"

	"github.com/yyyoichi/fussweg/annot"
	"github.com/yyyoichi/fussweg/fault"
	"github.com/yyyoichi/fussweg/internal/store"
)

var (
	ErrStore = errors.New("annotation store failed")
)

type (
	Category struct {
		ID   int
		Name string
	}

	Image struct {
		ID     int
		Prefix string
		Image  string
		Height int
		Width  int
		Date   string
		Time   string
	}

	Annotation struct {
		ID         int
		ImageID    int
		CategoryID int
		Rect       annot.Rect
	}

	// Tables is the normalized batch. Every slice is ordered by id and
	// ids run from 1 without gaps.
	Tables struct {
		Categories  []Category
		Images      []Image
		Annotations []Annotation

		// Unmatched counts annotation rows dropped because no image
		// metadata matched their (prefix, image).
		Unmatched int
	}
)

// Normalize deduplicates categories and images into id keyed tables and
// joins the annotation rows against them.
//
// Process:
//  1. Categories: distinct names of rows with a known category and a
//     non-zero severity, ids in ascending name order.
//  2. Images: distinct metadata rows, ids in ascending
//     (prefix, image, height, width, date, time) order.
//  3. Annotations: distinct (image, category, box) inner-join rows, ids in
//     ascending (image_id, category_id, x, y, w, h) order.
//
// Rows that fail the join are dropped. Errors come only from the store.
func Normalize(ctx context.Context, rows []annot.Row, exif []Exif) (*Tables, error) {
	db, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	defer db.Close()

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	t, err := normalize(ctx, tx, rows, exif)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return t, nil
}

func normalize(ctx context.Context, tx *store.Tx, rows []annot.Row, exif []Exif) (*Tables, error) {
	raw := make([]store.RawAnnotation, 0, len(rows))
	for _, r := range rows {
		if _, ok := fault.ParseCategory(r.Category); !ok {
			continue
		}
		if _, ok := fault.ParseSeverity(r.Severity); !ok {
			continue
		}
		raw = append(raw, store.RawAnnotation{
			Prefix: r.Prefix, Image: r.Image,
			Category: r.Category, Severity: r.Severity,
			X: r.Rect.X, Y: r.Rect.Y, W: r.Rect.W, H: r.Rect.H,
		})
	}
	rawExif := make([]store.RawExif, len(exif))
	for i, e := range exif {
		rawExif[i] = store.RawExif(e)
	}

	if err := tx.InsertAnnotations(ctx, raw); err != nil {
		return nil, err
	}
	if err := tx.InsertExif(ctx, rawExif); err != nil {
		return nil, err
	}
	if err := tx.Materialize(ctx); err != nil {
		return nil, err
	}

	cats, err := tx.Categories(ctx)
	if err != nil {
		return nil, err
	}
	imgs, err := tx.Images(ctx)
	if err != nil {
		return nil, err
	}
	anns, err := tx.Annotations(ctx)
	if err != nil {
		return nil, err
	}

	t := &Tables{
		Categories:  make([]Category, len(cats)),
		Images:      make([]Image, len(imgs)),
		Annotations: make([]Annotation, len(anns)),
	}
	for i, c := range cats {
		t.Categories[i] = Category{ID: int(c.ID), Name: c.Name}
	}
	type key struct{ prefix, image string }
	known := make(map[key]bool, len(imgs))
	for i, img := range imgs {
		t.Images[i] = Image{
			ID:     int(img.ID),
			Prefix: img.Prefix,
			Image:  img.Image,
			Height: img.Height,
			Width:  img.Width,
			Date:   img.Date,
			Time:   img.Time,
		}
		known[key{img.Prefix, img.Image}] = true
	}
	for i, a := range anns {
		t.Annotations[i] = Annotation{
			ID:         int(a.ID),
			ImageID:    int(a.ImageID),
			CategoryID: int(a.CategoryID),
			Rect:       annot.Rect{X: a.X, Y: a.Y, W: a.W, H: a.H},
		}
	}
	for _, r := range raw {
		if !known[key{r.Prefix, r.Image}] {
			t.Unmatched++
		}
	}
	return t, nil
}
