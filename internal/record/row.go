package record

import (
	"fmt"
	"math"

	"github.com/hndinh/tabstore/internal/alias/bx"
)

// Row pairs a schema with a parallel list of typed values.
// Invariant: len(values) == schema.NumCols() and every value's tag
// matches its column's tag.
type Row struct {
	schema Schema
	values []Value
}

// NewRow validates values against schema and returns the row.
func NewRow(schema Schema, values []Value) (Row, error) {
	if len(values) != schema.NumCols() {
		return Row{}, fmt.Errorf("%w: %d columns, %d values", ErrSchemaMismatch, schema.NumCols(), len(values))
	}
	for i, col := range schema.Cols {
		v := values[i]
		if !v.matches(col.Type) {
			return Row{}, fmt.Errorf("%w: column %d (%s) wants %s, got %s",
				ErrTypeMismatch, i, col.Name, col.Type, v.Kind())
		}
		switch col.Type {
		case TypeDate:
			if !IsValidDate(v.Text()) {
				return Row{}, fmt.Errorf("%w: column %d (%s): %q", ErrInvalidDate, i, col.Name, v.Text())
			}
		case TypeText:
			if len(v.Text()) > math.MaxUint16 {
				return Row{}, fmt.Errorf("%w: column %d (%s)", ErrTextTooLong, i, col.Name)
			}
		}
	}
	return Row{schema: schema, values: values}, nil
}

func (r Row) Value(i int) Value { return r.values[i] }

// Serialize concatenates the values in column order:
// INT and FLOAT as 4 raw little-endian bytes, TEXT and DATE as a u16
// length followed by the bytes, no terminator.
func (r Row) Serialize() []byte {
	out := make([]byte, 0, r.SerializedSize())
	for i, col := range r.schema.Cols {
		v := r.values[i]
		switch col.Type {
		case TypeInt:
			var b [4]byte
			bx.PutU32(b[:], uint32(v.Int()))
			out = append(out, b[:]...)
		case TypeFloat:
			var b [4]byte
			bx.PutU32(b[:], math.Float32bits(v.Float()))
			out = append(out, b[:]...)
		case TypeText, TypeDate:
			var l [2]byte
			bx.PutU16(l[:], uint16(len(v.Text())))
			out = append(out, l[:]...)
			out = append(out, v.Text()...)
		}
	}
	return out
}

// SerializedSize reports the exact number of bytes Serialize emits.
func (r Row) SerializedSize() int {
	size := 0
	for i, col := range r.schema.Cols {
		switch col.Type {
		case TypeInt, TypeFloat:
			size += 4
		case TypeText, TypeDate:
			size += 2 + len(r.values[i].Text())
		}
	}
	return size
}
