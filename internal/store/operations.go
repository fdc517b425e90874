package store

import (
	"context"
	"fmt"
)

// InsertAnnotations bulk loads raw annotation rows
func (t *Tx) InsertAnnotations(ctx context.Context, rows []RawAnnotation) error {
	stmt, err := t.tx.PrepareContext(ctx, insertAnnot)
	if err != nil {
		return fmt.Errorf("failed to prepare annotation insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Prefix, r.Image, r.Category, r.Severity, r.X, r.Y, r.W, r.H); err != nil {
			return fmt.Errorf("failed to insert annotation: %w", err)
		}
	}
	return nil
}

// InsertExif bulk loads raw metadata rows
func (t *Tx) InsertExif(ctx context.Context, rows []RawExif) error {
	stmt, err := t.tx.PrepareContext(ctx, insertExif)
	if err != nil {
		return fmt.Errorf("failed to prepare exif insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Prefix, r.Image, r.Height, r.Width, r.Timestamp); err != nil {
			return fmt.Errorf("failed to insert exif: %w", err)
		}
	}
	return nil
}

// Materialize fills categories, images and annotations from the raw
// tables, then drops the raw tables.
func (t *Tx) Materialize(ctx context.Context) error {
	for _, step := range []struct {
		name string
		sql  string
	}{
		{"categories", fillCategories},
		{"images", fillImages},
		{"annotations", fillAnnotations},
		{"raw cleanup", dropRaw},
	} {
		if _, err := t.tx.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("failed to materialize %s: %w", step.name, err)
		}
	}
	return nil
}
