package table

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind is the storage type tag assigned to a column at ingestion.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// IsNumeric reports whether values of this kind carry a number.
func (k Kind) IsNumeric() bool { return k == KindInteger || k == KindFloat }

// MarshalText lets Kind serialize as its name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Value is a single cell. Which payload field is meaningful depends on the
// Kind of the owning column: Int (exact) and Num for integer, Num for
// float, Bool for boolean, Str for string. Null cells carry no payload.
type Value struct {
	Null bool
	Int  int64
	Num  float64
	Bool bool
	Str  string
}

// Null is the absent value.
var Null = Value{Null: true}

func Int(i int64) Value { return Value{Int: i, Num: float64(i)} }
func Float(f float64) Value { return Value{Num: f} }
func Bool(b bool) Value { return Value{Bool: b} }
func String(s string) Value { return Value{Str: s} }

// Key returns a comparable identity for distinct-value counting within a
// column of kind k. Null values have no key.
func (v Value) Key(k Kind) string {
	switch k {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		if v.Num == 0 {
			return "0"
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Column is a named, homogeneously typed sequence of values.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Len returns the number of values, null or not.
func (c Column) Len() int { return len(c.Values) }

// Table is an ordered set of equal-length columns. It is not modified
// after construction.
type Table struct {
	Name string
	// Truncated is set by loaders when Options.MaxRows cut the input short.
	Truncated bool

	columns []Column
	rows    int
}

var (
	// ErrEmptyTable is returned when a table has no rows or no columns.
	ErrEmptyTable = errors.New("empty table")
	// ErrUnsupported indicates an input format that cannot be loaded.
	ErrUnsupported = errors.New("unsupported table format")
)

// New builds a table from columns, rejecting unequal lengths and duplicate names.
func New(name string, cols ...Column) (*Table, error) {
	t := &Table{Name: name, columns: cols}
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in header order. Callers must not modify them.
func (t *Table) Columns() []Column { return t.columns }

// Column returns the i-th column.
func (t *Table) Column(i int) Column { return t.columns[i] }

// Validate rejects tables the analysis pipeline cannot run on.
func Validate(t *Table) error {
	if t == nil || t.NumCols() == 0 || t.NumRows() == 0 {
		return ErrEmptyTable
	}
	return nil
}

// ParseError reports input that could not be read as a table.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("parse table: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
