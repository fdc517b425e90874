// Package annot holds the canonical annotation model and its TSV and
// statistics projections.
package annot

import (
	"slices"
	"strings"

	"github.com/yyyoichi/fussweg/fault"
)

type (
	// Rect is a box in image pixel coordinates.
	Rect struct {
		X, Y, W, H int
	}

	// Defect is one annotated box on an image.
	Defect struct {
		Image string
		Rect  Rect
		Fault fault.Code
	}

	// ImageAnnotations holds every surviving defect of one image.
	ImageAnnotations struct {
		Image   string
		Defects []Defect
	}
)

// Fault folds the codes of all defects with fault.Combine.
func (ia ImageAnnotations) Fault() fault.Code {
	var c fault.Code
	for _, d := range ia.Defects {
		c = c.Combine(d.Fault)
	}
	return c
}

// Group groups defects by image name. Defects with an empty code are
// dropped, and so is an image left without defects.
// Groups are sorted by image name; defects keep their input order.
// The image name is used as is, so every slice passed in one call
// belongs to the same batch.
func Group(batches ...[]Defect) []ImageAnnotations {
	index := make(map[string]int)
	var groups []ImageAnnotations
	for _, defects := range batches {
		for _, d := range defects {
			if d.Fault.IsEmpty() {
				continue
			}
			i, ok := index[d.Image]
			if !ok {
				i = len(groups)
				index[d.Image] = i
				groups = append(groups, ImageAnnotations{Image: d.Image})
			}
			groups[i].Defects = append(groups[i].Defects, d)
		}
	}
	slices.SortStableFunc(groups, func(a, b ImageAnnotations) int {
		return strings.Compare(a.Image, b.Image)
	})
	return groups
}
