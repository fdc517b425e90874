package coco

import (
	"encoding/json"
	"io"
)

type (
	// Document is the COCO-style export. Object keys are declared in
	// alphabetical order, matching the layout of earlier exports.
	Document struct {
		Annotations []DocAnnotation `json:"annotations"`
		Categories  []DocCategory   `json:"categories"`
		Images      []DocImage      `json:"images"`
	}

	DocAnnotation struct {
		BBox       [4]int `json:"bbox"`
		CategoryID int    `json:"category_id"`
		ID         int    `json:"id"`
		ImageID    int    `json:"image_id"`
		IsCrowd    int    `json:"iscrowd"`
	}

	DocCategory struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	DocImage struct {
		DateCaptured string `json:"date_captured"`
		FileName     string `json:"file_name"`
		Height       int    `json:"height"`
		ID           int    `json:"id"`
		Width        int    `json:"width"`
	}
)

type (
	// Option configures Build.
	Option  func(*builder)
	builder struct {
		allImages bool
	}
)

// WithAllImages keeps images that no annotation refers to.
func WithAllImages() Option {
	return func(b *builder) {
		b.allImages = true
	}
}

// Build assembles the document from normalized tables. By default only
// images referenced by an annotation are listed; ids are kept as assigned.
func Build(t *Tables, opts ...Option) Document {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	doc := Document{
		Annotations: make([]DocAnnotation, 0, len(t.Annotations)),
		Categories:  make([]DocCategory, 0, len(t.Categories)),
		Images:      make([]DocImage, 0, len(t.Images)),
	}
	referenced := make(map[int]bool, len(t.Images))
	for _, a := range t.Annotations {
		referenced[a.ImageID] = true
		doc.Annotations = append(doc.Annotations, DocAnnotation{
			BBox:       [4]int{a.Rect.X, a.Rect.Y, a.Rect.W, a.Rect.H},
			CategoryID: a.CategoryID,
			ID:         a.ID,
			ImageID:    a.ImageID,
		})
	}
	for _, c := range t.Categories {
		doc.Categories = append(doc.Categories, DocCategory{ID: c.ID, Name: c.Name})
	}
	for _, img := range t.Images {
		if !b.allImages && !referenced[img.ID] {
			continue
		}
		doc.Images = append(doc.Images, DocImage{
			DateCaptured: img.Date + " " + img.Time,
			FileName:     img.Prefix + "/" + img.Image,
			Height:       img.Height,
			ID:           img.ID,
			Width:        img.Width,
		})
	}
	return doc
}

// Encode writes the document as UTF-8 JSON indented by four spaces.
func (d Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(d)
}
