// Package fault implements the packed defect code: seven categories with a
// 2-bit severity slot each.
package fault

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	ErrUnknownToken = errors.New("unknown fault token")
)

const slotMask = 0b11

// Code holds one severity per category. Slot i occupies bits 2i and 2i+1.
// The zero value is the empty code.
type Code struct {
	bits uint16
}

// Set returns a copy of c with the slot of cat replaced by sev.
// The previous severity is overwritten even if it was higher, use Combine
// to fold codes together.
// Invalid categories or severities leave the code unchanged.
func (c Code) Set(cat Category, sev Severity) Code {
	if !cat.Valid() || !sev.Valid() {
		return c
	}
	shift := 2 * uint16(cat)
	c.bits = c.bits&^(slotMask<<shift) | uint16(sev)<<shift
	return c
}

// Severity returns the severity stored for cat.
func (c Code) Severity(cat Category) Severity {
	if !cat.Valid() {
		return None
	}
	return Severity(c.bits >> (2 * uint16(cat)) & slotMask)
}

// Combine returns the per-slot maximum of c and o.
func (c Code) Combine(o Code) Code {
	return Combine(c, o)
}

// Combine returns the per-slot maximum of a and b.
func Combine(a, b Code) Code {
	var r Code
	for _, cat := range Categories {
		r = r.Set(cat, max(a.Severity(cat), b.Severity(cat)))
	}
	return r
}

// IsEmpty reports whether every slot is None.
func (c Code) IsEmpty() bool {
	return c.bits == 0
}

// MaxSeverity returns the highest severity across all categories.
func (c Code) MaxSeverity() Severity {
	var m Severity
	for _, cat := range Categories {
		m = max(m, c.Severity(cat))
	}
	return m
}

// Pairs yields every category with a non-zero severity, in slot order.
func (c Code) Pairs() iter.Seq2[Category, Severity] {
	return func(yield func(Category, Severity) bool) {
		for _, cat := range Categories {
			sev := c.Severity(cat)
			if sev == None {
				continue
			}
			if !yield(cat, sev) {
				return
			}
		}
	}
}

// Render writes "<category><pairSep><severity>" for each non-zero slot,
// joined by itemSep.
func (c Code) Render(itemSep, pairSep string) string {
	var b strings.Builder
	for cat, sev := range c.Pairs() {
		if b.Len() > 0 {
			b.WriteString(itemSep)
		}
		b.WriteString(cat.String())
		b.WriteString(pairSep)
		b.WriteString(sev.String())
	}
	return b.String()
}

// String renders the code as an image label, e.g. "crack_poor_pothole_fair".
func (c Code) String() string {
	return c.Render("_", "_")
}

// Parse reads a string produced by Render with the same separators.
// When a category appears more than once the higher severity is kept.
func Parse(s, itemSep, pairSep string) (Code, error) {
	var c Code
	if s == "" {
		return c, nil
	}
	var tokens []string
	if itemSep == pairSep {
		tokens = strings.Split(s, itemSep)
		if len(tokens)%2 != 0 {
			return Code{}, fmt.Errorf("%w: %q", ErrUnknownToken, s)
		}
	} else {
		for item := range strings.SplitSeq(s, itemSep) {
			k, v, ok := strings.Cut(item, pairSep)
			if !ok {
				return Code{}, fmt.Errorf("%w: %q", ErrUnknownToken, item)
			}
			tokens = append(tokens, k, v)
		}
	}
	for i := 0; i < len(tokens); i += 2 {
		cat, ok := ParseCategory(tokens[i])
		if !ok {
			return Code{}, fmt.Errorf("%w: category %q", ErrUnknownToken, tokens[i])
		}
		sev, ok := ParseSeverity(tokens[i+1])
		if !ok {
			return Code{}, fmt.Errorf("%w: severity %q", ErrUnknownToken, tokens[i+1])
		}
		c = Combine(c, Code{}.Set(cat, sev))
	}
	return c, nil
}
