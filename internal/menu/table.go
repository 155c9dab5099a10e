package menu

import (
	"strings"
)

type column struct {
	title string
	width int
}

// table prints left aligned fixed-width columns under a dashed rule. Values
// longer than the column are printed whole and push the row out.
func (c *Console) table(heading string, columns []column, rule int, rows [][]string) {
	c.Println()
	c.Heading(heading)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = pad(col.title, col.width)
	}
	c.Println(strings.Join(header, " "))
	c.Println(strings.Repeat("-", rule))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				cells[i] = pad(row[i], col.width)
			} else {
				cells[i] = pad("", col.width)
			}
		}
		c.Println(strings.Join(cells, " "))
	}
}

// Table prints rows under titles, each column as wide as its widest cell.
func (c *Console) Table(heading string, titles []string, rows [][]string) {
	columns := make([]column, len(titles))
	rule := 0
	for i, title := range titles {
		width := len([]rune(title))
		for _, row := range rows {
			if i < len(row) && len([]rune(row[i])) > width {
				width = len([]rune(row[i]))
			}
		}
		columns[i] = column{title: title, width: width}
		rule += width
	}
	if len(columns) > 1 {
		rule += len(columns) - 1
	}
	c.table(heading, columns, rule, rows)
}

// fields prints label/value pairs with the values aligned.
func (c *Console) fields(heading string, pairs [][2]string) {
	c.Println()
	c.Heading(heading)

	width := 0
	for _, p := range pairs {
		if n := len([]rune(p[0])); n > width {
			width = n
		}
	}
	for _, p := range pairs {
		c.Printf("%s %s\n", pad(p[0]+":", width+1), p[1])
	}
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
