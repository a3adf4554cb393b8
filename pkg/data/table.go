package data

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrColumnNotFound = errors.New("data: column not found")
	ErrNoRows         = errors.New("data: no data rows")
)

// Kind is the declared type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// missingTokens are the cell contents read as "no value".
var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// IsMissing reports whether a raw cell value counts as missing.
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// Column holds one named column. Numeric columns use Num with NaN for
// missing values; categorical columns use Cat with "" for missing values.
type Column struct {
	Name string
	Kind Kind
	Num  []float64
	Cat  []string
}

// NewNumeric returns a numeric column backed by values.
func NewNumeric(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, Num: values}
}

// NewCategorical returns a categorical column backed by values.
func NewCategorical(name string, values []string) *Column {
	return &Column{Name: name, Kind: Categorical, Cat: values}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Num)
	}
	return len(c.Cat)
}

// IsMissing reports whether row i has no value.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Num[i])
	}
	return c.Cat[i] == ""
}

// MissingCount returns the number of rows without a value.
func (c *Column) MissingCount() int {
	n := 0
	for i := range c.Len() {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Text returns row i rendered as a string ("" when missing).
func (c *Column) Text(i int) string {
	if c.Kind == Categorical {
		return c.Cat[i]
	}
	if math.IsNaN(c.Num[i]) {
		return ""
	}
	return strconv.FormatFloat(c.Num[i], 'g', -1, 64)
}

// Table is an in-memory, column-oriented data set.
type Table struct {
	Columns []*Column
	index   map[string]int
}

// NewTable builds a table; all columns must have the same length and
// distinct names.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.Columns[i], nil
}

// AddColumn appends c, or replaces the column with the same name.
func (t *Table) AddColumn(c *Column) error {
	if len(t.Columns) > 0 && c.Len() != t.Rows() {
		return fmt.Errorf("data: column %q has %d rows, table has %d", c.Name, c.Len(), t.Rows())
	}
	if i, ok := t.index[c.Name]; ok {
		t.Columns[i] = c
		return nil
	}
	t.index[c.Name] = len(t.Columns)
	t.Columns = append(t.Columns, c)
	return nil
}

// FromRecords builds a table from a header and raw string rows.
//
// A column is numeric when every non-missing cell parses as a float,
// otherwise it is categorical. Short rows are padded with missing cells
// and fully blank rows are skipped.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("data: empty header")
	}
	names := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for j, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column%d", j+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("data: duplicate column %q", name)
		}
		seen[name] = struct{}{}
		names[j] = name
	}

	cells := make([][]string, 0, len(rows))
	for i, rec := range rows {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("data: row %d has %d cells, header has %d", i+2, len(rec), len(names))
		}
		blank := true
		row := make([]string, len(names))
		for j := range rec {
			v := strings.TrimSpace(rec[j])
			if !IsMissing(v) {
				blank = false
				row[j] = v
			}
		}
		if !blank {
			cells = append(cells, row)
		}
	}
	if len(cells) == 0 {
		return nil, ErrNoRows
	}

	t := &Table{index: make(map[string]int, len(names))}
	for j, name := range names {
		col := inferColumn(name, cells, j)
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func inferColumn(name string, cells [][]string, j int) *Column {
	nums := make([]float64, len(cells))
	numeric := true
	for i, row := range cells {
		if row[j] == "" {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(row[j], 64)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = v
	}
	if numeric {
		return NewNumeric(name, nums)
	}
	cat := make([]string, len(cells))
	for i, row := range cells {
		cat[i] = row[j]
	}
	return NewCategorical(name, cat)
}
