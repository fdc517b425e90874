package via

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yyyoichi/fussweg/annot"
	"github.com/yyyoichi/fussweg/internal/csvline"
)

// columns holding a JSON object
var jsonColumns = map[string]bool{
	"region_shape_attributes": true,
	"region_attributes":       true,
}

const maxLineSize = 1 << 20

// ReadCSV reads a VIA CSV export and returns one defect per valid region.
func ReadCSV(r io.Reader, opts ...Option) ([]annot.Defect, error) {
	regions, err := DecodeCSV(r, opts...)
	if err != nil {
		return nil, err
	}
	return defects(regions), nil
}

// DecodeCSV reads a VIA CSV export:
//
//	filename,file_size,file_attributes,region_count,region_id,region_shape_attributes,region_attributes
//	G0019580.JPG,3117257,"{}",3,2,"{""name"":""rect"",""x"":2744,...}","{""fault"":{""crack"":true},...}"
//
// Rows whose JSON cells do not parse are skipped.
func DecodeCSV(r io.Reader, opts ...Option) ([]Region, error) {
	rd := newReader(opts...)
	sc := bufio.NewScanner(utf8Reader(r))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read csv header: %w", err)
		}
		return nil, nil
	}
	header := csvline.Split(strings.TrimSuffix(sc.Text(), "\r"))

	var regions []Region
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}
		rec, err := csvRecord(header, csvline.Split(text))
		if err != nil {
			rd.log.Debug("skip csv row", "line", line, "error", err)
			continue
		}
		if region, ok := rd.decode(rec); ok {
			regions = append(regions, region)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return regions, nil
}

func csvRecord(header, cells []string) (map[string]any, error) {
	rec := make(map[string]any, len(header))
	for i := 0; i < len(header) && i < len(cells); i++ {
		if !jsonColumns[header[i]] {
			rec[header[i]] = cells[i]
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(cells[i]), &v); err != nil {
			return nil, fmt.Errorf("column %s: %w", header[i], err)
		}
		rec[header[i]] = v
	}
	return rec, nil
}
