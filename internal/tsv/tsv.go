// Package tsv reads and writes plain tab separated values: fields are
// split on tabs and lines on newlines, with no quoting or escaping.
package tsv

import (
	"bufio"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// Reader reads one record per line. Blank lines are skipped, a trailing
// "\r" is dropped and a leading UTF-8 BOM is removed from the first line.
type Reader struct {
	sc    *bufio.Scanner
	first bool
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc, first: true}
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() ([]string, error) {
	for r.sc.Scan() {
		line := strings.TrimSuffix(r.sc.Text(), "\r")
		if r.first {
			line = strings.TrimPrefix(line, "\ufeff")
			r.first = false
		}
		if line == "" {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Writer writes records as tab joined lines. Call Flush when done.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record. Tabs and line breaks inside a field are
// replaced by spaces so the record stays on one line.
func (w *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := w.w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(sanitize.Replace(field)); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

var sanitize = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
