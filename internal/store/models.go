package store

type (
	// RawAnnotation is one loaded (defect, category) row
	RawAnnotation struct {
		Prefix   string
		Image    string
		Category string
		Severity string
		X, Y     int
		W, H     int
	}

	// RawExif is one loaded metadata row
	RawExif struct {
		Prefix    string
		Image     string
		Height    int
		Width     int
		Timestamp string // "YYYY:MM:DD HH:MM:SS"
	}

	// Category represents a distinct category name
	Category struct {
		ID   int64
		Name string // Unique constraint
	}

	// Image represents a distinct image with its metadata
	Image struct {
		ID     int64
		Prefix string
		Image  string
		Height int
		Width  int
		Date   string
		Time   string
		// Unique constraint on (Prefix, Image, Height, Width, Date, Time)
	}

	// Annotation represents a joined (image, category, box) row
	Annotation struct {
		ID         int64
		ImageID    int64
		CategoryID int64
		X, Y       int
		W, H       int
		// Unique constraint on (ImageID, CategoryID, X, Y, W, H)
	}
)
