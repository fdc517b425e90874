package fussweg_test

import (
	"context"
	"fmt"
	"os"

	"github.com/yyyoichi/fussweg"
)

func Example_pipeline() {
	project := `{"_via_img_metadata": {
  "G2.JPG1": {"filename": "G2.JPG", "regions": [
    {"shape_attributes": {"name": "rect", "x": 10, "y": 20, "width": 30, "height": 40},
     "region_attributes": {"fault": {"pothole": true}, "condition": {"verypoor": true}}}
  ]},
  "G1.JPG1": {"filename": "G1.JPG", "regions": [
    {"shape_attributes": {"name": "rect", "x": 1, "y": 2, "width": 3, "height": 4},
     "region_attributes": {"fault": {"crack": true, "uneven": true}, "condition": {"fair": true}}}
  ]}
}}`

	p, err := fussweg.New(fussweg.WithPrefix("run1"))
	if err != nil {
		fmt.Printf("Error creating pipeline: %v\n", err)
		return
	}

	ctx := context.Background()
	groups, err := p.Ingest(ctx, fussweg.Bytes("project.json", fussweg.JSON, []byte(project)))
	if err != nil {
		fmt.Printf("Error ingesting: %v\n", err)
		return
	}
	for _, g := range groups {
		fmt.Println(g.Image, g.Fault())
	}
	if err := p.WriteTSV(os.Stdout, groups); err != nil {
		fmt.Printf("Error writing tsv: %v\n", err)
	}

	// Output:
	// G1.JPG crack_fair_uneven_fair
	// G2.JPG pothole_verypoor
	// prefix	image	category	severity	x	y	w	h
	// run1	G1.JPG	crack	fair	1	2	3	4
	// run1	G1.JPG	uneven	fair	1	2	3	4
	// run1	G2.JPG	pothole	verypoor	10	20	30	40
}
