package grid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table is the on-disk form of a control grid: points keyed by their grid indices.
// YAML and JSON files are both accepted.
type Table struct {
	Rows   int          `yaml:"rows" json:"rows"`
	Cols   int          `yaml:"cols" json:"cols"`
	Points []TableEntry `yaml:"points" json:"points"`
}

// TableEntry is one control point of a Table.
type TableEntry struct {
	I int     `yaml:"i" json:"i"`
	J int     `yaml:"j" json:"j"`
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// ParseTable decodes a YAML or JSON table into a grid.
func ParseTable(data []byte) (*ControlGrid, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("error parsing grid table: %w", err)
	}
	return t.Grid()
}

// Grid converts the table into a ControlGrid. Every (i, j) must appear exactly once.
// Nothing proportional to the declared shape is allocated before the entries cover it.
func (t *Table) Grid() (*ControlGrid, error) {
	n, err := pointCount(t.Rows, t.Cols)
	if err != nil {
		return nil, fmt.Errorf("grid table: %w", err)
	}
	seen := make(map[int]Point, len(t.Points))
	for _, e := range t.Points {
		if e.I < 0 || e.I >= t.Rows || e.J < 0 || e.J >= t.Cols {
			return nil, fmt.Errorf("grid table entry (%d,%d) outside %dx%d", e.I, e.J, t.Rows, t.Cols)
		}
		k := e.I*t.Cols + e.J
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("grid table entry (%d,%d) appears more than once", e.I, e.J)
		}
		seen[k] = Point{X: e.X, Y: e.Y}
	}
	// every key is in [0,n), so fewer keys means a gap at or before len(seen)
	if len(seen) != n {
		k := 0
		for ; ; k++ {
			if _, ok := seen[k]; !ok {
				break
			}
		}
		return nil, fmt.Errorf("grid table is missing entry (%d,%d)", k/t.Cols, k%t.Cols)
	}

	pts := make([]Point, n)
	for k, p := range seen {
		pts[k] = p
	}
	return New(t.Rows, t.Cols, pts)
}

// Table returns the table form of g in row-major order.
func (g *ControlGrid) Table() Table {
	t := Table{Rows: g.Rows, Cols: g.Cols, Points: make([]TableEntry, 0, len(g.points))}
	for k, p := range g.points {
		t.Points = append(t.Points, TableEntry{I: k / g.Cols, J: k % g.Cols, X: p.X, Y: p.Y})
	}
	return t
}

// MarshalTable encodes g as a YAML table.
func (g *ControlGrid) MarshalTable() ([]byte, error) {
	return yaml.Marshal(g.Table())
}

// LoadTable reads a grid table file.
func LoadTable(path string) (*ControlGrid, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: grid tables are user-provided paths
	if err != nil {
		return nil, err
	}
	g, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// SaveTable writes g as a YAML table.
func SaveTable(path string, g *ControlGrid) error {
	data, err := g.MarshalTable()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
