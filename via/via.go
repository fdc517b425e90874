// Package via reads VGG Image Annotator (VIA) exports of pavement defect
// labels, in either the CSV or the JSON project shape.
//
// Each region carries
//
//	region_attributes:       {"fault": {"crack": true}, "condition": {"poor": true}}
//	region_shape_attributes: {"name": "rect", "x": 2744, "y": 390, "width": 86, "height": 503}
//
// Only the keys of "fault" and "condition" carry information. A region is
// skipped when a required key is missing or one of the two maps is empty.
package via

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/yyyoichi/fussweg/annot"
	"github.com/yyyoichi/fussweg/fault"
	"github.com/yyyoichi/fussweg/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrMalformedDocument = errors.New("malformed annotation document")
)

// ConditionPolicy selects the severity when "condition" lists several keys.
type ConditionPolicy int

const (
	// FirstCondition uses the smallest key.
	FirstCondition ConditionPolicy = iota
	// LastCondition uses the largest key.
	LastCondition
	// StrictCondition skips regions with more than one condition key.
	StrictCondition
)

var policyNames = map[string]ConditionPolicy{
	"first":  FirstCondition,
	"last":   LastCondition,
	"strict": StrictCondition,
}

// ParseConditionPolicy parses "first", "last" or "strict".
func ParseConditionPolicy(s string) (ConditionPolicy, error) {
	p, ok := policyNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown condition policy %q", s)
	}
	return p, nil
}

func (p ConditionPolicy) String() string {
	for name, v := range policyNames {
		if v == p {
			return name
		}
	}
	return ""
}

type (
	// Option configures the readers.
	Option func(*reader)

	reader struct {
		policy ConditionPolicy
		log    *logger.Logger
	}
)

// WithConditionPolicy sets how multiple condition keys are resolved.
// The default is FirstCondition.
func WithConditionPolicy(p ConditionPolicy) Option {
	return func(r *reader) {
		r.policy = p
	}
}

// WithLogger logs skipped regions at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *reader) {
		if l != nil {
			r.log = logger.FromZap(l)
		}
	}
}

func newReader(opts ...Option) *reader {
	r := &reader{log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Region is one valid labeled box before its keys are resolved against the
// fault vocabulary.
type Region struct {
	Image     string
	Rect      annot.Rect
	Faults    []string
	Condition string
}

// Defect resolves the region keys. Unknown fault names are ignored; an
// unknown condition gives an empty code.
func (r Region) Defect() annot.Defect {
	d := annot.Defect{Image: r.Image, Rect: r.Rect}
	sev, ok := fault.ParseSeverity(r.Condition)
	if !ok {
		return d
	}
	for _, name := range r.Faults {
		if cat, ok := fault.ParseCategory(name); ok {
			d.Fault = d.Fault.Set(cat, sev)
		}
	}
	return d
}

// decode validates one flat record holding "filename", "region_attributes"
// and "region_shape_attributes".
func (rd *reader) decode(rec map[string]any) (Region, bool) {
	image, ok := rec["filename"].(string)
	if !ok {
		rd.skip(rec, "no filename")
		return Region{}, false
	}
	attrs, ok := rec["region_attributes"].(map[string]any)
	if !ok {
		rd.skip(rec, "no region_attributes")
		return Region{}, false
	}
	shape, ok := rec["region_shape_attributes"].(map[string]any)
	if !ok {
		rd.skip(rec, "no region_shape_attributes")
		return Region{}, false
	}
	cond, _ := attrs["condition"].(map[string]any)
	faults, _ := attrs["fault"].(map[string]any)
	if len(cond) == 0 || len(faults) == 0 {
		rd.skip(rec, "empty condition or fault")
		return Region{}, false
	}

	keys := slices.Sorted(maps.Keys(cond))
	var condition string
	switch rd.policy {
	case LastCondition:
		condition = keys[len(keys)-1]
	case StrictCondition:
		if len(keys) > 1 {
			rd.skip(rec, "multiple conditions")
			return Region{}, false
		}
		condition = keys[0]
	default:
		condition = keys[0]
	}
	if _, ok := fault.ParseSeverity(condition); !ok {
		rd.skip(rec, "unknown condition "+condition)
		return Region{}, false
	}

	r := Region{
		Image:     image,
		Condition: condition,
		Rect: annot.Rect{
			X: intValue(shape, "x"),
			Y: intValue(shape, "y"),
			W: intValue(shape, "width"),
			H: intValue(shape, "height"),
		},
	}
	for _, k := range slices.Sorted(maps.Keys(faults)) {
		if v, _ := faults[k].(bool); v {
			r.Faults = append(r.Faults, k)
		}
	}
	return r, true
}

func (rd *reader) skip(rec map[string]any, reason string) {
	rd.log.Debug("skip region", "filename", rec["filename"], "reason", reason)
}

// intValue returns m[key] as an int, or -1 when it is missing or not a number.
func intValue(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return -1
}

func defects(regions []Region) []annot.Defect {
	out := make([]annot.Defect, len(regions))
	for i, r := range regions {
		out[i] = r.Defect()
	}
	return out
}

// utf8Reader strips a UTF-8 BOM and transcodes BOM-marked UTF-16 input.
func utf8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}
