package csvline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	test := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"single", "abc", []string{"abc"}},
		{"header",
			"filename,file_size,file_attributes,region_count,region_id,region_shape_attributes,region_attributes",
			[]string{"filename", "file_size", "file_attributes", "region_count", "region_id", "region_shape_attributes", "region_attributes"}},
		{"empty_object",
			`G0019580.JPG,3117257,"{}",3,2`,
			[]string{"G0019580.JPG", "3117257", "{}", "3", "2"}},
		{"region",
			`G0019580.JPG,3117257,"{}",3,2,"{""name"":""rect"",""x"":2744,""y"":390,""width"":86,""height"":503}","{""fault"":{""crack"":true},""condition"":{""fair"":true}}"`,
			[]string{
				"G0019580.JPG", "3117257", "{}", "3", "2",
				`{"name":"rect","x":2744,"y":390,"width":86,"height":503}`,
				`{"fault":{"crack":true},"condition":{"fair":true}}`,
			}},
		{"nested_braces_with_commas",
			`a,"{""fault"":{""bump"":true,""crack"":true},""condition"":{""poor"":true}}",z`,
			[]string{"a", `{"fault":{"bump":true,"crack":true},"condition":{"poor":true}}`, "z"}},
		{"space_after_quote",
			`G0017468.JPG,3142365,"{}" ,1`,
			[]string{"G0017468.JPG", "3142365", "{} ", "1"}},
		{"empty_cells", "a,,b", []string{"a", "", "b"}},
		{"trailing_comma", "a,b,", []string{"a", "b", ""}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.line))
		})
	}
}

func TestSplitPlainMatchesNaive(t *testing.T) {
	test := []string{
		"a",
		"a,b,c",
		"G0017468.JPG,3142365,1,0",
		",leading",
		"trailing,",
		",,",
		"with space, and more ,x",
	}
	for _, line := range test {
		assert.Equal(t, strings.Split(line, ","), Split(line), line)
	}
}

func TestSplitIsStatelessAcrossLines(t *testing.T) {
	// unbalanced input must not leak into the next call
	_ = Split(`a,"{""x"":1`)
	assert.Equal(t, []string{"b", "c"}, Split("b,c"))
}
