package protocol

import "encoding/binary"

const (
	valueFlagNull  byte = 0
	valueFlagValue byte = 1
	valueFlagError byte = 2
)

// DecodeRows reads count rows (the page just announced by meta) from br,
// per §4.5's row decoding rules: an optional 5-byte record-id prefix when
// any column is updateable, then one null/value/error-flagged cell per
// column.
//
// When meta.AnyUpdateable() is true, the decoded record id is appended to
// each row as a trailing Value under the synthetic "_ID" column (§3
// invariant: "_ID is present iff any updateability flag is Y"), and
// meta.ColumnNames carries a matching trailing "_ID" entry (appended by
// HeaderParser.ParseBlock) so row[i] lines up with ColumnNames[i].
func DecodeRows(br *ByteReader, meta *ResponseMetadata, count int) (rows [][]Value, err error) {
	rows = make([][]Value, count)
	updateable := meta.AnyUpdateable()

	for i := 0; i < count; i++ {
		width := meta.ColumnCount
		if updateable {
			width++
		}

		var id Value
		if updateable {
			if _, err := br.ReadByte(); err != nil {
				return nil, err
			}
			idBytes, err := br.ReadExact(4)
			if err != nil {
				return nil, err
			}
			id = LongValue(int64(binary.LittleEndian.Uint32(idBytes)))
		}

		row := make([]Value, 0, width)
		for c := 0; c < meta.ColumnCount; c++ {
			v, err := decodeCell(br, meta.ColumnTypes[c])
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		// _ID is appended last so row[i] lines up with the "_ID"-suffixed
		// meta.ColumnNames HeaderParser.ParseBlock produces, even though the
		// id is read off the wire before the row's own columns.
		if updateable {
			row = append(row, id)
		}
		rows[i] = row
	}

	return rows, nil
}

func decodeCell(br *ByteReader, tag TypeTag) (Value, error) {
	flag, err := br.ReadByte()
	if err != nil {
		return Value{}, err
	}

	switch flag {
	case valueFlagNull:
		return NullValue(), nil
	case valueFlagValue:
		return DecodeValue(br, tag)
	case valueFlagError:
		code, err := br.ReadExact(8)
		if err != nil {
			return Value{}, err
		}
		return Value{}, DecodeErr("per-value error marker", map[string]interface{}{
			"errorCode": binary.LittleEndian.Uint64(code),
		})
	default:
		return Value{}, DecodeErr("unrecognised value flag", map[string]interface{}{
			"flag": flag,
		})
	}
}
