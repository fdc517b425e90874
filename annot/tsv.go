package annot

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/yyyoichi/fussweg/fault"
	"github.com/yyyoichi/fussweg/internal/tsv"
)

var (
	ErrMissingColumn = errors.New("missing tsv column")
)

// TSVHeader is the column order of WriteTSV.
var TSVHeader = []string{"prefix", "image", "category", "severity", "x", "y", "w", "h"}

// older exports named the columns "cate" and "level"
var tsvAliases = map[string]string{
	"cate":  "category",
	"level": "severity",
}

// Row is one (defect, category) pair, the flat TSV form of a defect.
type Row struct {
	Prefix   string
	Image    string
	Category string
	Severity string
	Rect     Rect
}

func (r Row) record() []string {
	return []string{
		r.Prefix, r.Image, r.Category, r.Severity,
		strconv.Itoa(r.Rect.X), strconv.Itoa(r.Rect.Y),
		strconv.Itoa(r.Rect.W), strconv.Itoa(r.Rect.H),
	}
}

// Rows yields one row per defect per non-zero category slot.
func Rows(prefix string, groups []ImageAnnotations) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, g := range groups {
			for _, d := range g.Defects {
				for cat, sev := range d.Fault.Pairs() {
					r := Row{
						Prefix:   prefix,
						Image:    d.Image,
						Category: cat.String(),
						Severity: sev.String(),
						Rect:     d.Rect,
					}
					if !yield(r) {
						return
					}
				}
			}
		}
	}
}

// WriteTSV writes the header and Rows(prefix, groups) as plain tab
// separated values. Fields are never quoted; tabs and line breaks inside a
// field become spaces.
func WriteTSV(w io.Writer, prefix string, groups []ImageAnnotations) error {
	tw := tsv.NewWriter(w)
	if err := tw.Write(TSVHeader); err != nil {
		return err
	}
	for r := range Rows(prefix, groups) {
		if err := tw.Write(r.record()); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// ReadTSV reads rows written by WriteTSV. Columns are matched by header
// name, so their order may differ. Rows whose coordinates are not
// integers are skipped.
func ReadTSV(r io.Reader) ([]Row, error) {
	cr := tsv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tsv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if alias, ok := tsvAliases[h]; ok {
			h = alias
		}
		col[h] = i
	}
	for _, name := range TSVHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tsv: %w", err)
		}
		get := func(name string) string {
			if i := col[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		var rect Rect
		var ok = true
		for _, f := range []struct {
			name string
			dst  *int
		}{{"x", &rect.X}, {"y", &rect.Y}, {"w", &rect.W}, {"h", &rect.H}} {
			v, err := strconv.Atoi(get(f.name))
			if err != nil {
				ok = false
				break
			}
			*f.dst = v
		}
		if !ok {
			continue
		}
		rows = append(rows, Row{
			Prefix:   get("prefix"),
			Image:    get("image"),
			Category: get("category"),
			Severity: get("severity"),
			Rect:     rect,
		})
	}
	return rows, nil
}

// Fault returns the code of a single row. Unknown names give an empty code.
func (r Row) Fault() fault.Code {
	cat, ok := fault.ParseCategory(r.Category)
	if !ok {
		return fault.Code{}
	}
	sev, ok := fault.ParseSeverity(r.Severity)
	if !ok {
		return fault.Code{}
	}
	return fault.Code{}.Set(cat, sev)
}

// FromRows turns TSV rows back into grouped annotations. Each row becomes
// one single-category defect, rows with unknown names are dropped.
func FromRows(rows []Row) []ImageAnnotations {
	defects := make([]Defect, 0, len(rows))
	for _, r := range rows {
		defects = append(defects, Defect{Image: r.Image, Rect: r.Rect, Fault: r.Fault()})
	}
	return Group(defects)
}
