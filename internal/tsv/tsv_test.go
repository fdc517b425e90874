package tsv

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write([]string{"prefix", "image"}))
	require.NoError(t, w.Write([]string{"run1", ` G1 "x".JPG`}))
	require.NoError(t, w.Write([]string{"a\tb", "c\nd"}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "prefix\timage\nrun1\t G1 \"x\".JPG\na b\tc d\n", buf.String())
}

func TestReader(t *testing.T) {
	in := "\ufeffprefix\timage\r\n\nrun1\t\"G1.JPG\r\nrun2\t G2.JPG\n"
	r := NewReader(strings.NewReader(in))

	test := [][]string{
		{"prefix", "image"},
		{"run1", `"G1.JPG`},
		{"run2", " G2.JPG"},
	}
	for _, want := range test {
		got, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.Read()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestRoundTrip(t *testing.T) {
	records := [][]string{{"h1", "h2", "h3"}, {` lead`, `"quoted"`, ""}}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range records {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Flush())

	r := NewReader(&buf)
	for _, want := range records {
		got, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
