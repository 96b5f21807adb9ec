package mapper

import (
	"strconv"
	"strings"

	"github.com/Faldon/DB4D/protocol"
)

// Row is one decoded result row, in column order.
type Row []protocol.Value

// RowMapper shapes decoded rows according to FetchStyle (§4.5): numeric
// (positional slice), associative (column-name map), or combined (both,
// as in PHP's PDO::FETCH_BOTH).
type RowMapper struct {
	columnNames []string
}

// NewRowMapper builds a mapper for the given column name list, as parsed
// from the Column-Aliases header (§4.3).
func NewRowMapper(columnNames []string) *RowMapper {
	return &RowMapper{columnNames: columnNames}
}

// idIndex returns the index of the synthetic "_ID" column within
// m.columnNames, or -1 if this result set carries no record id (§4.5
// fetch shaping: "Any _ID key is stripped before returning").
func (m *RowMapper) idIndex() int {
	for i, name := range m.columnNames {
		if strings.EqualFold(name, "_ID") {
			return i
		}
	}
	return -1
}

// Numeric returns row as a positional slice of Go values, excluding the
// synthetic "_ID" column if present.
func (m *RowMapper) Numeric(row Row) []interface{} {
	skip := m.idIndex()
	out := make([]interface{}, 0, len(row))
	for i, v := range row {
		if i == skip {
			continue
		}
		out = append(out, v.Any())
	}
	return out
}

// Associative returns row as a column-name map. A column alias of "_ID"
// (the implicit record identity column 4D appends to updateable result
// sets) is dropped, matching the shape of a hand-written SELECT.
func (m *RowMapper) Associative(row Row) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for i, v := range row {
		if i >= len(m.columnNames) {
			continue
		}
		name := m.columnNames[i]
		if strings.EqualFold(name, "_ID") {
			continue
		}
		out[name] = v.Any()
	}
	return out
}

// Combined returns row shaped both ways: positional values under integer
// keys "0".."n-1" merged with the associative column-name map. The
// synthetic "_ID" column is excluded from the positional half too.
func (m *RowMapper) Combined(row Row) map[string]interface{} {
	out := m.Associative(row)
	skip := m.idIndex()
	pos := 0
	for i, v := range row {
		if i == skip {
			continue
		}
		out[strconv.Itoa(pos)] = v.Any()
		pos++
	}
	return out
}

// AssociativeTyped returns row shaped like Associative, then coerces each
// named column present in fieldTypes to the requested Go type via a
// ResponseMapper. Columns absent from fieldTypes pass through unchanged.
func (m *RowMapper) AssociativeTyped(row Row, fieldTypes map[string]string) (map[string]interface{}, error) {
	return NewResponseMapper().MapObject(m.Associative(row), fieldTypes)
}
