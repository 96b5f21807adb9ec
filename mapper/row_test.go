package mapper

import (
	"testing"

	"github.com/Faldon/DB4D/protocol"
)

func TestRowMapperNumeric(t *testing.T) {
	m := NewRowMapper([]string{"id", "name"})
	row := Row{protocol.LongValue(1), protocol.StringValue("ann")}

	got := m.Numeric(row)
	if len(got) != 2 || got[0] != int64(1) || got[1] != "ann" {
		t.Errorf("Numeric() = %v", got)
	}
}

func TestRowMapperAssociativeDropsIDColumn(t *testing.T) {
	m := NewRowMapper([]string{"_ID", "name"})
	row := Row{protocol.LongValue(7), protocol.StringValue("ann")}

	got := m.Associative(row)
	if _, ok := got["_ID"]; ok {
		t.Error("Associative() kept the _ID column, want it dropped")
	}
	if got["name"] != "ann" {
		t.Errorf("Associative()[\"name\"] = %v, want ann", got["name"])
	}
}

func TestRowMapperCombined(t *testing.T) {
	m := NewRowMapper([]string{"id", "name"})
	row := Row{protocol.LongValue(1), protocol.StringValue("ann")}

	got := m.Combined(row)
	if got["0"] != int64(1) || got["1"] != "ann" {
		t.Errorf("Combined() positional keys = %v", got)
	}
	if got["id"] != int64(1) || got["name"] != "ann" {
		t.Errorf("Combined() named keys = %v", got)
	}
}

func TestRowMapperNumericDropsIDColumn(t *testing.T) {
	m := NewRowMapper([]string{"name", "_ID"})
	row := Row{protocol.StringValue("ann"), protocol.LongValue(7)}

	got := m.Numeric(row)
	if len(got) != 1 || got[0] != "ann" {
		t.Errorf("Numeric() = %v, want [ann] with _ID stripped", got)
	}
}

func TestRowMapperCombinedDropsIDColumn(t *testing.T) {
	m := NewRowMapper([]string{"name", "_ID"})
	row := Row{protocol.StringValue("ann"), protocol.LongValue(7)}

	got := m.Combined(row)
	if _, ok := got["_ID"]; ok {
		t.Error("Combined() kept the _ID column under its name, want it dropped")
	}
	if got["0"] != "ann" {
		t.Errorf("Combined()[\"0\"] = %v, want ann", got["0"])
	}
	if _, ok := got["1"]; ok {
		t.Error("Combined() kept a positional key for _ID, want it excluded")
	}
}

func TestRowMapperAssociativeTyped(t *testing.T) {
	m := NewRowMapper([]string{"amount"})
	row := Row{protocol.StringValue("42.5")}

	got, err := m.AssociativeTyped(row, map[string]string{"amount": "float"})
	if err != nil {
		t.Fatalf("AssociativeTyped() error = %v", err)
	}
	if got["amount"] != 42.5 {
		t.Errorf("AssociativeTyped()[\"amount\"] = %v, want 42.5", got["amount"])
	}
}

func TestRowMapperNull(t *testing.T) {
	m := NewRowMapper([]string{"name"})
	row := Row{protocol.NullValue()}

	got := m.Numeric(row)
	if got[0] != nil {
		t.Errorf("Numeric() = %v, want [nil]", got)
	}
}
