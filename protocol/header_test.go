package protocol

import (
	"bytes"
	"testing"
)

func TestHeaderParserUpdateCount(t *testing.T) {
	raw := "001 OK\r\n" +
		"Result-Type : Update-Count\r\n" +
		"Row-Count : 7\r\n" +
		"\r\n"
	br := NewByteReader(bytes.NewReader([]byte(raw)))

	meta, err := NewHeaderParser().ParseBlock(br)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	if meta.Error {
		t.Fatal("ParseBlock() meta.Error = true, want false")
	}
	if meta.ResultType != ResultUpdateCount {
		t.Errorf("ResultType = %q, want %q", meta.ResultType, ResultUpdateCount)
	}
	if meta.RowCount != 7 {
		t.Errorf("RowCount = %d, want 7", meta.RowCount)
	}
}

func TestHeaderParserResultSet(t *testing.T) {
	raw := "001 OK\r\n" +
		"Result-Type : Result-Set\r\n" +
		"Column-Count : 2\r\n" +
		"Column-Aliases : [id] [name]\r\n" +
		"Column-Types : VK_LONG VK_STRING\r\n" +
		"Column-Updateability : N N\r\n" +
		"Row-Count : 2\r\n" +
		"Row-Count-Sent : 2\r\n" +
		"\r\n"
	br := NewByteReader(bytes.NewReader([]byte(raw)))

	meta, err := NewHeaderParser().ParseBlock(br)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}

	if meta.ResultType != ResultSet {
		t.Errorf("ResultType = %q, want %q", meta.ResultType, ResultSet)
	}
	if meta.ColumnCount != 2 {
		t.Errorf("ColumnCount = %d, want 2", meta.ColumnCount)
	}
	wantNames := []string{"id", "name"}
	if len(meta.ColumnNames) != 2 || meta.ColumnNames[0] != wantNames[0] || meta.ColumnNames[1] != wantNames[1] {
		t.Errorf("ColumnNames = %v, want %v", meta.ColumnNames, wantNames)
	}
	if len(meta.ColumnTypes) != 2 || meta.ColumnTypes[0] != VKLong || meta.ColumnTypes[1] != VKString {
		t.Errorf("ColumnTypes = %v, want [VK_LONG VK_STRING]", meta.ColumnTypes)
	}
	if len(meta.ColumnUpdateability) != 2 || meta.ColumnUpdateability[0] || meta.ColumnUpdateability[1] {
		t.Errorf("ColumnUpdateability = %v, want [false false]", meta.ColumnUpdateability)
	}
	if meta.AnyUpdateable() {
		t.Error("AnyUpdateable() = true, want false")
	}
}

func TestHeaderParserUpdateabilityWithCountPrefix(t *testing.T) {
	meta, err := NewHeaderParser().ParseBlock(NewByteReader(bytes.NewReader([]byte(
		"001 OK\r\nColumn-Updateability : 2 Y N\r\n\r\n"))))
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	want := []bool{true, false}
	if len(meta.ColumnUpdateability) != 2 || meta.ColumnUpdateability[0] != want[0] || meta.ColumnUpdateability[1] != want[1] {
		t.Errorf("ColumnUpdateability = %v, want %v", meta.ColumnUpdateability, want)
	}
}

func TestHeaderParserAppendsIDColumnWhenUpdateable(t *testing.T) {
	raw := "001 OK\r\n" +
		"Result-Type : Result-Set\r\n" +
		"Column-Count : 1\r\n" +
		"Column-Aliases : [id]\r\n" +
		"Column-Types : VK_LONG\r\n" +
		"Column-Updateability : Y\r\n" +
		"Row-Count : 1\r\n" +
		"Row-Count-Sent : 1\r\n" +
		"\r\n"
	br := NewByteReader(bytes.NewReader([]byte(raw)))

	meta, err := NewHeaderParser().ParseBlock(br)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	want := []string{"id", "_ID"}
	if len(meta.ColumnNames) != 2 || meta.ColumnNames[0] != want[0] || meta.ColumnNames[1] != want[1] {
		t.Errorf("ColumnNames = %v, want %v", meta.ColumnNames, want)
	}
}

func TestHeaderParserError(t *testing.T) {
	raw := "001 ERROR\r\n" +
		"Error-Code : -10001\r\n" +
		"Error-Description : table not found\r\n" +
		"\r\n"
	br := NewByteReader(bytes.NewReader([]byte(raw)))

	meta, err := NewHeaderParser().ParseBlock(br)
	if err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	if !meta.Error {
		t.Fatal("ParseBlock() meta.Error = false, want true")
	}
	if meta.ErrorCode != "-10001" {
		t.Errorf("ErrorCode = %q, want %q", meta.ErrorCode, "-10001")
	}
	if meta.ErrorDescription != "table not found" {
		t.Errorf("ErrorDescription = %q, want %q", meta.ErrorDescription, "table not found")
	}
}
