package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/fussweg/coco"
)

const export = "filename,file_size,file_attributes,region_count,region_id,region_shape_attributes,region_attributes\n" +
	`G2.JPG,1,"{}",1,0,"{""name"":""rect"",""x"":5,""y"":6,""width"":7,""height"":8}","{""fault"":{""pothole"":true},""condition"":{""poor"":true}}"` + "\n" +
	`G1.JPG,1,"{}",1,0,"{""name"":""rect"",""x"":1,""y"":2,""width"":3,""height"":4}","{""fault"":{""crack"":true},""condition"":{""fair"":true}}"` + "\n"

func setup(t *testing.T) (dir string, common []string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte(export), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	return dir, []string{"-env", filepath.Join(dir, "missing.env"), "-prefix", "run1"}
}

func TestRunTSV(t *testing.T) {
	dir, common := setup(t)
	var out bytes.Buffer
	args := append(append([]string{"tsv"}, common...), dir)
	require.NoError(t, run(context.Background(), args, &out))
	assert.Equal(t, "prefix\timage\tcategory\tseverity\tx\ty\tw\th\n"+
		"run1\tG1.JPG\tcrack\tfair\t1\t2\t3\t4\n"+
		"run1\tG2.JPG\tpothole\tpoor\t5\t6\t7\t8\n", out.String())
}

func TestRunStatsAndSummary(t *testing.T) {
	dir, common := setup(t)
	file := filepath.Join(dir, "a.csv")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), append(append([]string{"stats"}, common...), file), &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "image,bump_fair,"))

	out.Reset()
	require.NoError(t, run(context.Background(), append(append([]string{"summary"}, common...), file), &out))
	assert.Contains(t, out.String(), "images: 2\n")
	assert.Contains(t, out.String(), "crack_fair: 1\n")
}

func TestRunCOCO(t *testing.T) {
	dir, common := setup(t)
	exif := filepath.Join(dir, "exif.tsv")
	require.NoError(t, os.WriteFile(exif, []byte("prefix\timage\theight\twidth\ttimestamp\n"+
		"run1\tG1.JPG\t3000\t4000\t2023:06:01 10:00:00\n"+
		"run1\tG2.JPG\t3000\t4000\t2023:06:01 10:00:02\n"), 0o644))
	outPath := filepath.Join(dir, "coco.json")

	args := append(append([]string{"coco"}, common...), "-exif", exif, "-o", outPath, filepath.Join(dir, "a.csv"))
	require.NoError(t, run(context.Background(), args, &bytes.Buffer{}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc coco.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Images, 2)
	assert.Len(t, doc.Annotations, 2)
	assert.Equal(t, []coco.DocCategory{{ID: 1, Name: "crack"}, {ID: 2, Name: "pothole"}}, doc.Categories)

	// the same document from a TSV export
	tsvPath := filepath.Join(dir, "rows.tsv")
	require.NoError(t, run(context.Background(), append(append([]string{"tsv"}, common...), "-o", tsvPath, dir), &bytes.Buffer{}))
	var fromTSV bytes.Buffer
	args = append(append([]string{"coco"}, common...), "-exif", exif, "-from-tsv", tsvPath)
	require.NoError(t, run(context.Background(), args, &fromTSV))
	assert.JSONEq(t, string(data), fromTSV.String())
}

func TestRunErrors(t *testing.T) {
	dir, common := setup(t)
	ctx := context.Background()
	test := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"no_args", nil, true},
		{"unknown_command", []string{"export"}, true},
		{"no_input", append([]string{"tsv"}, common...), true},
		{"coco_without_exif", append(append([]string{"coco"}, common...), dir), true},
		{"missing_input", append(append([]string{"tsv"}, common...), filepath.Join(dir, "none.csv")), false},
		{"unknown_extension", append(append([]string{"tsv"}, common...), filepath.Join(dir, "notes.txt")), false},
		{"bad_policy", append(append([]string{"tsv"}, common...), "-policy", "middle", dir), false},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			err := run(ctx, tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Equal(t, tt.usage, errors.Is(err, errUsage), err)
		})
	}
}

func TestRunOutputFile(t *testing.T) {
	dir, common := setup(t)
	ctx := context.Background()
	outPath := filepath.Join(dir, "out.tsv")

	t.Run("failed_batch_writes_nothing", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
		args := append(append([]string{"tsv"}, common...), "-o", outPath, bad)
		require.Error(t, run(ctx, args, &bytes.Buffer{}))
		_, err := os.Stat(outPath)
		assert.True(t, errors.Is(err, os.ErrNotExist), err)
	})
	t.Run("written_after_success", func(t *testing.T) {
		args := append(append([]string{"tsv"}, common...), "-o", outPath, filepath.Join(dir, "a.csv"))
		require.NoError(t, run(ctx, args, &bytes.Buffer{}))
		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "prefix\timage\t"))
	})
}

func TestEmit(t *testing.T) {
	dir := t.TempDir()
	hello := func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}

	var stdout bytes.Buffer
	require.NoError(t, emit(&stdout, "", hello))
	assert.Equal(t, "hello", stdout.String())

	// a directory cannot be created as a file
	assert.Error(t, emit(&stdout, dir, hello))

	failed := errors.New("failed")
	path := filepath.Join(dir, "never.txt")
	err := emit(&stdout, path, func(io.Writer) error { return failed })
	assert.True(t, errors.Is(err, failed))
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
