package coco

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yyyoichi/fussweg/internal/tsv"
)

var (
	ErrMissingColumn = errors.New("missing exif column")
)

// Exif is one row of the image metadata feed. Timestamp is expected as
// "YYYY:MM:DD HH:MM:SS"; only its fixed-width date and time parts are used.
type Exif struct {
	Prefix    string
	Image     string
	Height    int
	Width     int
	Timestamp string
}

var exifColumns = []string{"prefix", "image", "height", "width", "timestamp"}

// ReadExifTSV reads a tab separated metadata feed with the header
// prefix, image, height, width, timestamp (in any order).
// Rows whose height or width is not an integer are skipped.
func ReadExifTSV(r io.Reader) ([]Exif, error) {
	cr := tsv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read exif header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range exifColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var out []Exif
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read exif: %w", err)
		}
		get := func(name string) string {
			if i := col[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		height, err := strconv.Atoi(get("height"))
		if err != nil {
			continue
		}
		width, err := strconv.Atoi(get("width"))
		if err != nil {
			continue
		}
		out = append(out, Exif{
			Prefix:    get("prefix"),
			Image:     get("image"),
			Height:    height,
			Width:     width,
			Timestamp: get("timestamp"),
		})
	}
	return out, nil
}
