package store

const schema = `
-- Raw annotation rows, one per (defect, category)
CREATE TABLE IF NOT EXISTS raw_annot (
    prefix   TEXT NOT NULL,
    image    TEXT NOT NULL,
    category TEXT NOT NULL,
    severity TEXT NOT NULL,
    x        INTEGER NOT NULL,
    y        INTEGER NOT NULL,
    w        INTEGER NOT NULL,
    h        INTEGER NOT NULL
);

-- Raw EXIF feed rows
CREATE TABLE IF NOT EXISTS raw_exif (
    prefix    TEXT NOT NULL,
    image     TEXT NOT NULL,
    height    INTEGER NOT NULL,
    width     INTEGER NOT NULL,
    timestamp TEXT NOT NULL
);

-- Categories table
CREATE TABLE IF NOT EXISTS categories (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

-- Images table
CREATE TABLE IF NOT EXISTS images (
    id     INTEGER PRIMARY KEY,
    prefix TEXT NOT NULL,
    image  TEXT NOT NULL,
    height INTEGER NOT NULL,
    width  INTEGER NOT NULL,
    date   TEXT NOT NULL,
    time   TEXT NOT NULL,
    UNIQUE(prefix, image, height, width, date, time)
);

-- Annotations table
CREATE TABLE IF NOT EXISTS annotations (
    id          INTEGER PRIMARY KEY,
    image_id    INTEGER NOT NULL,
    category_id INTEGER NOT NULL,
    x           INTEGER NOT NULL,
    y           INTEGER NOT NULL,
    w           INTEGER NOT NULL,
    h           INTEGER NOT NULL,
    FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE,
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
    UNIQUE(image_id, category_id, x, y, w, h)
);

CREATE INDEX IF NOT EXISTS idx_raw_annot_image ON raw_annot(prefix, image);
CREATE INDEX IF NOT EXISTS idx_images_key ON images(prefix, image);
CREATE INDEX IF NOT EXISTS idx_annotations_image ON annotations(image_id);
`

const (
	insertAnnot = `
		INSERT INTO raw_annot (prefix, image, category, severity, x, y, w, h)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	insertExif = `
		INSERT INTO raw_exif (prefix, image, height, width, timestamp)
		VALUES (?, ?, ?, ?, ?)`

	// ids follow the sort order, so they do not depend on load order
	fillCategories = `
		INSERT INTO categories (id, name)
		SELECT ROW_NUMBER() OVER (ORDER BY category ASC), category
		  FROM (SELECT DISTINCT category FROM raw_annot)`

	// date and time are fixed-width cuts of "YYYY:MM:DD HH:MM:SS"
	fillImages = `
		INSERT INTO images (id, prefix, image, height, width, date, time)
		SELECT ROW_NUMBER() OVER (
		           ORDER BY prefix ASC, image ASC, height ASC, width ASC, date ASC, time ASC)
		     , prefix, image, height, width, date, time
		  FROM (SELECT DISTINCT prefix, image, height, width
		             , substr(timestamp, 1, 10) AS date
		             , substr(timestamp, 12, 8) AS time
		          FROM raw_exif)`

	fillAnnotations = `
		INSERT INTO annotations (id, image_id, category_id, x, y, w, h)
		SELECT ROW_NUMBER() OVER (
		           ORDER BY image_id ASC, category_id ASC, x ASC, y ASC, w ASC, h ASC)
		     , image_id, category_id, x, y, w, h
		  FROM (SELECT DISTINCT img.id AS image_id, cat.id AS category_id
		             , ann.x, ann.y, ann.w, ann.h
		          FROM raw_annot AS ann
		         INNER JOIN images AS img
		            ON ann.prefix = img.prefix
		           AND ann.image = img.image
		         INNER JOIN categories AS cat
		            ON ann.category = cat.name)`

	dropRaw = `
		DROP TABLE raw_annot;
		DROP TABLE raw_exif;`
)
