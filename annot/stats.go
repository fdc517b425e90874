package annot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/yyyoichi/fussweg/fault"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NumCounters is the number of (category, severity) counters.
const NumCounters = fault.NumCategories * fault.NumSeverities

// Stats counts defects per (category, severity). A defect adds one to the
// counter of each category it has set, at that category's severity.
type Stats [NumCounters]int

func counterIndex(cat fault.Category, sev fault.Severity) int {
	return int(cat)*fault.NumSeverities + int(sev) - 1
}

// Add counts one defect code.
func (s *Stats) Add(c fault.Code) {
	for cat, sev := range c.Pairs() {
		s[counterIndex(cat, sev)]++
	}
}

// Get returns the counter of (cat, sev). None and invalid values give 0.
func (s Stats) Get(cat fault.Category, sev fault.Severity) int {
	if !cat.Valid() || sev == fault.None || !sev.Valid() {
		return 0
	}
	return s[counterIndex(cat, sev)]
}

// Merge adds every counter of o to s.
func (s *Stats) Merge(o Stats) {
	for i := range s {
		s[i] += o[i]
	}
}

// Count returns the counters of one image.
func Count(ia ImageAnnotations) Stats {
	var s Stats
	for _, d := range ia.Defects {
		s.Add(d.Fault)
	}
	return s
}

// StatsHeader returns "image" followed by "<category>_<severity>" for every
// counter in slot order.
func StatsHeader() []string {
	header := make([]string, 0, NumCounters+1)
	header = append(header, "image")
	for _, cat := range fault.Categories {
		for _, sev := range fault.Severities {
			header = append(header, cat.String()+"_"+sev.String())
		}
	}
	return header
}

// WriteStats writes one CSV row of counters per image.
func WriteStats(w io.Writer, groups []ImageAnnotations) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StatsHeader()); err != nil {
		return err
	}
	rec := make([]string, NumCounters+1)
	for _, g := range groups {
		s := Count(g)
		rec[0] = g.Image
		for i, v := range s {
			rec[i+1] = strconv.Itoa(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary aggregates a whole batch.
type Summary struct {
	Images  int
	Defects int
	Totals  Stats

	// defects per image
	MeanDefects   float64
	StdDevDefects float64
}

// Summarize counts every defect of every image.
func Summarize(groups []ImageAnnotations) Summary {
	s := Summary{Images: len(groups)}
	perImage := make([]float64, len(groups))
	for i, g := range groups {
		s.Totals.Merge(Count(g))
		perImage[i] = float64(len(g.Defects))
	}
	s.Defects = int(floats.Sum(perImage))
	switch len(perImage) {
	case 0:
	case 1:
		s.MeanDefects = perImage[0]
	default:
		s.MeanDefects, s.StdDevDefects = stat.MeanStdDev(perImage, nil)
	}
	return s
}

// WriteText prints the summary as "name: value" lines.
func (s Summary) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "images: %d\ndefects: %d\ndefects_per_image: %.2f (sd %.2f)\n",
		s.Images, s.Defects, s.MeanDefects, s.StdDevDefects); err != nil {
		return err
	}
	header := StatsHeader()[1:]
	for i, v := range s.Totals {
		if _, err := fmt.Fprintf(w, "%s: %d\n", header[i], v); err != nil {
			return err
		}
	}
	return nil
}
