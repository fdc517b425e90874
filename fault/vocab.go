package fault

type (
	// Category is a pavement defect type. Its value is the slot index
	// inside a Code.
	Category uint8

	// Severity is the condition level of a defect category.
	// The zero value means the category is not present.
	Severity uint8
)

const (
	Bump Category = iota
	Crack
	Depression
	Displacement
	Vegetation
	Uneven
	Pothole
)

const (
	None Severity = iota
	Fair
	Poor
	VeryPoor
)

const (
	// NumCategories is the number of slots in a Code.
	NumCategories = 7
	// NumSeverities is the number of non-zero severity levels.
	NumSeverities = 3
)

var (
	// Categories lists every category in slot order.
	Categories = [NumCategories]Category{Bump, Crack, Depression, Displacement, Vegetation, Uneven, Pothole}

	// Severities lists every non-zero severity in ascending order.
	Severities = [NumSeverities]Severity{Fair, Poor, VeryPoor}

	categoryNames = [NumCategories]string{
		"bump", "crack", "depression", "displacement",
		"vegetation", "uneven", "pothole",
	}
	severityNames = [NumSeverities + 1]string{"", "fair", "poor", "verypoor"}

	categoryByName = func() map[string]Category {
		m := make(map[string]Category, NumCategories)
		for _, c := range Categories {
			m[categoryNames[c]] = c
		}
		return m
	}()
	severityByName = func() map[string]Severity {
		m := make(map[string]Severity, NumSeverities)
		for _, s := range Severities {
			m[severityNames[s]] = s
		}
		return m
	}()
)

// ParseCategory looks up a category by its name.
func ParseCategory(name string) (Category, bool) {
	c, ok := categoryByName[name]
	return c, ok
}

// ParseSeverity looks up a non-zero severity by its name.
// The empty string does not parse to None.
func ParseSeverity(name string) (Severity, bool) {
	s, ok := severityByName[name]
	return s, ok
}

func (c Category) String() string {
	if int(c) >= NumCategories {
		return ""
	}
	return categoryNames[c]
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool { return int(c) < NumCategories }

func (s Severity) String() string {
	if int(s) > NumSeverities {
		return ""
	}
	return severityNames[s]
}

// Valid reports whether s is None or one of Severities.
func (s Severity) Valid() bool { return int(s) <= NumSeverities }
