// Package csvline splits VIA CSV export lines whose cells carry JSON
// objects escaped with doubled quotes.
package csvline

import "strings"

// Split splits one CSV line into cells.
//
// Rules:
//   - a comma outside curly braces ends the cell and is dropped;
//   - a comma inside braces is kept;
//   - a lone double-quote is dropped, a doubled one ("") becomes one quote.
//
// Example:
//
//	G0019580.JPG,3117257,"{}",3,2,"{""name"":""rect"",""x"":2744}"
//
// yields
//
//	G0019580.JPG | 3117257 | {} | 3 | 2 | {"name":"rect","x":2744}
//
// Unbalanced braces or quotes are not detected; the cell boundaries are
// undefined in that case.
func Split(line string) []string {
	var (
		cells []string
		cell  strings.Builder
		depth int
		quote bool
	)
	for _, ch := range line {
		switch {
		case ch == ',' && depth == 0:
			cells = append(cells, cell.String())
			cell.Reset()
			quote = false
		case ch == ',':
			quote = false
			cell.WriteRune(ch)
		case ch == '"' && !quote:
			// either a delimiter or the first half of an escaped quote
			quote = true
		case ch == '"':
			quote = false
			cell.WriteRune(ch)
		default:
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
			quote = false
			cell.WriteRune(ch)
		}
	}
	// an empty line has no cells, a trailing comma leaves an empty one
	if cell.Len() > 0 || len(cells) > 0 {
		cells = append(cells, cell.String())
	}
	return cells
}
