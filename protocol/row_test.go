package protocol

import (
	"bytes"
	"testing"
)

func TestDecodeRowsPlainNoRecordID(t *testing.T) {
	meta := &ResponseMetadata{
		ColumnCount: 2,
		ColumnTypes: []TypeTag{VKLong, VKBoolean},
	}
	// row 0: value 7, value true ; row 1: null, value false
	payload := []byte{
		0x01, 0x07, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00,
		0x00, 0x01, 0x00, 0x00,
	}
	br := NewByteReader(bytes.NewReader(payload))

	rows, err := DecodeRows(br, meta, 2)
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if len(rows[0]) != 2 || len(rows[1]) != 2 {
		t.Fatalf("rows = %+v, want width 2 (no _ID column)", rows)
	}
	if rows[0][0].Kind != KindInt || rows[0][0].Int != 7 {
		t.Errorf("rows[0][0] = %+v, want Int 7", rows[0][0])
	}
	if rows[0][1].Kind != KindBool || !rows[0][1].Bool {
		t.Errorf("rows[0][1] = %+v, want Bool true", rows[0][1])
	}
	if !rows[1][0].IsNull() {
		t.Errorf("rows[1][0] = %+v, want null", rows[1][0])
	}
	if rows[1][1].Kind != KindBool || rows[1][1].Bool {
		t.Errorf("rows[1][1] = %+v, want Bool false", rows[1][1])
	}
}

func TestDecodeRowsWithRecordIDPrefix(t *testing.T) {
	meta := &ResponseMetadata{
		ColumnCount:         1,
		ColumnTypes:         []TypeTag{VKLong},
		ColumnUpdateability: []bool{true},
	}
	payload := []byte{
		0x00, 0x0A, 0x00, 0x00, 0x00, 0x01, 0x64, 0x00, 0x00, 0x00,
		0x00, 0x0B, 0x00, 0x00, 0x00, 0x01, 0xC8, 0x00, 0x00, 0x00,
	}
	br := NewByteReader(bytes.NewReader(payload))

	rows, err := DecodeRows(br, meta, 2)
	if err != nil {
		t.Fatalf("DecodeRows() error = %v", err)
	}
	// _ID is appended last, after the row's own columns (§3 invariant).
	if len(rows[0]) != 2 || len(rows[1]) != 2 {
		t.Fatalf("rows = %+v, want width 2 (1 column + _ID)", rows)
	}
	if rows[0][0].Int != 100 || rows[1][0].Int != 200 {
		t.Errorf("rows column 0 = [%+v %+v], want [100 200]", rows[0][0], rows[1][0])
	}
	if rows[0][1].Kind != KindLong || rows[0][1].Long != 10 {
		t.Errorf("rows[0] _ID = %+v, want Long 10", rows[0][1])
	}
	if rows[1][1].Kind != KindLong || rows[1][1].Long != 11 {
		t.Errorf("rows[1] _ID = %+v, want Long 11", rows[1][1])
	}
}

func TestDecodeRowsErrorFlag(t *testing.T) {
	meta := &ResponseMetadata{
		ColumnCount: 1,
		ColumnTypes: []TypeTag{VKLong},
	}
	payload := []byte{0x02, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	br := NewByteReader(bytes.NewReader(payload))

	if _, err := DecodeRows(br, meta, 1); err == nil {
		t.Fatal("DecodeRows() error = nil, want per-value error marker")
	}
}

func TestDecodeRowsShortRead(t *testing.T) {
	meta := &ResponseMetadata{
		ColumnCount: 1,
		ColumnTypes: []TypeTag{VKLong},
	}
	payload := []byte{0x01, 0x07, 0x00}
	br := NewByteReader(bytes.NewReader(payload))

	if _, err := DecodeRows(br, meta, 1); err == nil {
		t.Fatal("DecodeRows() error = nil, want a short-read error")
	}
}
