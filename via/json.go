package via

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/yyyoichi/fussweg/annot"
)

type (
	project struct {
		Metadata json.RawMessage `json:"_via_img_metadata"`
	}

	image struct {
		Filename any             `json:"filename"`
		Regions  json.RawMessage `json:"regions"`
	}

	region struct {
		ShapeAttributes  any `json:"shape_attributes"`
		RegionAttributes any `json:"region_attributes"`
	}
)

// ReadJSON reads a VIA JSON project and returns one defect per valid region.
func ReadJSON(r io.Reader, opts ...Option) ([]annot.Defect, error) {
	regions, err := DecodeJSON(r, opts...)
	if err != nil {
		return nil, err
	}
	return defects(regions), nil
}

// DecodeJSON reads a VIA JSON project:
//
//	{"_via_img_metadata": {"G0021000.JPG3116288": {
//	    "filename": "G0021000.JPG", "size": 3116288, "file_attributes": {},
//	    "regions": [{"shape_attributes": {...}, "region_attributes": {...}}]}}}
//
// Images are visited in key order. An image without regions yields nothing.
// Entries and regions that are not objects are skipped one by one. Only a
// document that is not JSON returns ErrMalformedDocument.
func DecodeJSON(r io.Reader, opts ...Option) ([]Region, error) {
	rd := newReader(opts...)
	var p project
	if err := json.NewDecoder(utf8Reader(r)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if len(p.Metadata) == 0 {
		rd.log.Warn("no _via_img_metadata in document")
		return nil, nil
	}
	var metadata map[string]json.RawMessage
	if err := json.Unmarshal(p.Metadata, &metadata); err != nil {
		rd.log.Warn("_via_img_metadata is not an object", "error", err)
		return nil, nil
	}

	var out []Region
	for _, key := range slices.Sorted(maps.Keys(metadata)) {
		var img image
		if err := json.Unmarshal(metadata[key], &img); err != nil {
			rd.log.Debug("skip image", "key", key, "error", err)
			continue
		}
		for _, raw := range regionList(img.Regions) {
			var rg region
			if err := json.Unmarshal(raw, &rg); err != nil {
				rd.log.Debug("skip region", "filename", img.Filename, "reason", "region is not an object")
				continue
			}
			rec := map[string]any{
				"filename":                img.Filename,
				"region_attributes":       rg.RegionAttributes,
				"region_shape_attributes": rg.ShapeAttributes,
			}
			if region, ok := rd.decode(rec); ok {
				out = append(out, region)
			}
		}
	}
	return out, nil
}

// regionList accepts both the array form and the older object form keyed
// by region index. Elements are left raw so one bad element only loses
// itself.
func regionList(raw json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var byIndex map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byIndex); err != nil {
		return nil
	}
	keys := slices.SortedFunc(maps.Keys(byIndex), func(a, b string) int {
		ia, erra := strconv.Atoi(a)
		ib, errb := strconv.Atoi(b)
		if erra == nil && errb == nil {
			return cmp.Compare(ia, ib)
		}
		return cmp.Compare(a, b)
	})
	for _, k := range keys {
		list = append(list, byIndex[k])
	}
	return list
}
