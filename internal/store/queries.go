package store

import (
	"context"
	"fmt"
)

// Categories returns every category ordered by id
func (t *Tx) Categories(ctx context.Context) ([]Category, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Images returns every image ordered by id
func (t *Tx) Images(ctx context.Context) ([]Image, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, prefix, image, height, width, date, time
		  FROM images
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		var i Image
		if err := rows.Scan(&i.ID, &i.Prefix, &i.Image, &i.Height, &i.Width, &i.Date, &i.Time); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Annotations returns every annotation ordered by id
func (t *Tx) Annotations(ctx context.Context) ([]Annotation, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, image_id, category_id, x, y, w, h
		  FROM annotations
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		var a Annotation
		if err := rows.Scan(&a.ID, &a.ImageID, &a.CategoryID, &a.X, &a.Y, &a.W, &a.H); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
