package client

import (
	"context"

	"github.com/Faldon/DB4D/mapper"
	"github.com/Faldon/DB4D/protocol"
)

// Statement is a single EXECUTE-STATEMENT bound to one prepared request
// frame. Execute runs it; the two-phase exchange (§4.5) is hidden behind
// that one call.
type Statement struct {
	driver *Driver
	sql    string
	req    *protocol.Request

	meta   *protocol.ResponseMetadata
	rows   [][]protocol.Value
	cursor int
	closed bool
}

// ExecuteResult summarises the outcome of a Statement.Execute call.
type ExecuteResult struct {
	// IsResultSet is true when the statement produced rows rather than an
	// update count.
	IsResultSet bool

	// RowCount is the number of rows affected (Update-Count) or the total
	// number of rows in the result set (Result-Set).
	RowCount int

	// ColumnNames names each column of a Result-Set reply, in order.
	ColumnNames []string
}

// Execute binds args into the statement's SQL text and runs the two-phase
// probe/full-fetch exchange described in §4.5.
func (s *Statement) Execute(ctx context.Context, args ...interface{}) (*ExecuteResult, error) {
	s.driver.mu.Lock()
	defer s.driver.mu.Unlock()

	if err := s.driver.requireConnected("Execute"); err != nil {
		return nil, err
	}

	sql, err := protocol.BindParameters(s.sql, args)
	if err != nil {
		return nil, &StatementError{
			Code:       "E_PARAM_BIND",
			Message:    err.Error(),
			Statement:  s.sql,
			Params:     args,
			Cause:      err,
			StackTrace: captureStackTrace(),
		}
	}

	probe := s.req.Clone()
	probe.SetField("STATEMENT", sql)

	s.driver.logger.Debug("executing statement", Int("commandId", probe.CommandID), String("sql", sql))

	meta, err := s.driver.roundTrip(ctx, probe)
	if err != nil {
		return nil, ErrTransportIO("execute", err)
	}
	if meta.Error {
		return nil, ErrServerRejected(sql, meta.ErrorCode, meta.ErrorDescription)
	}

	if meta.ResultType == protocol.ResultUpdateCount {
		s.meta = meta
		s.rows = nil
		return &ExecuteResult{IsResultSet: false, RowCount: meta.RowCount}, nil
	}

	// Result-Set.
	if meta.RowCount == 0 {
		s.meta = meta
		s.rows = nil
		s.cursor = 0
		return &ExecuteResult{IsResultSet: true, RowCount: 0, ColumnNames: meta.ColumnNames}, nil
	}

	// Phase 1 page is decoded but discarded; phase 2 re-fetches the full
	// set into the canonical row buffer (§4.5). The probe/full-fetch row
	// payload shares roundTrip's deadline (§5 Suspension points).
	probeCtx, probeCancel := s.driver.withRequestDeadline(ctx)
	br := protocol.NewByteReader(newTransportSource(probeCtx, s.driver.transport))
	_, decodeErr := protocol.DecodeRows(br, meta, meta.RowCountSent)
	probeCancel()
	if decodeErr != nil {
		return nil, ErrTransportIO("decode-probe-page", decodeErr)
	}

	full := probe.WithFullFetch(meta.RowCount)
	fullMeta, err := s.driver.roundTrip(ctx, full)
	if err != nil {
		return nil, ErrTransportIO("execute-full-fetch", err)
	}
	if fullMeta.Error {
		return nil, ErrServerRejected(sql, fullMeta.ErrorCode, fullMeta.ErrorDescription)
	}

	fullCtx, fullCancel := s.driver.withRequestDeadline(ctx)
	defer fullCancel()
	br = protocol.NewByteReader(newTransportSource(fullCtx, s.driver.transport))
	rows, err := protocol.DecodeRows(br, fullMeta, fullMeta.RowCountSent)
	if err != nil {
		return nil, ErrTransportIO("decode-full-fetch", err)
	}

	s.meta = fullMeta
	s.rows = rows
	s.cursor = 0

	return &ExecuteResult{
		IsResultSet: true,
		RowCount:    fullMeta.RowCount,
		ColumnNames: fullMeta.ColumnNames,
	}, nil
}

// ColumnNames returns the result set's column names, or nil for an
// Update-Count reply or before Execute has run.
func (s *Statement) ColumnNames() []string {
	if s.meta == nil {
		return nil
	}
	return s.meta.ColumnNames
}

// RowCount returns the affected/total row count from the last Execute.
func (s *Statement) RowCount() int {
	if s.meta == nil {
		return 0
	}
	return s.meta.RowCount
}

// FetchRow returns the next row in the result set, advancing the cursor, or
// ok == false once every row has been returned.
func (s *Statement) FetchRow() (mapper.Row, bool) {
	if s.cursor >= len(s.rows) {
		return nil, false
	}
	row := mapper.Row(s.rows[s.cursor])
	s.cursor++
	return row, true
}

// FetchColumn removes the next row from the result set and returns a single
// cell from it, at the given 0-based column index (§3 Lifecycles: "fetchColumn
// removes one row and returns one cell"). ok == false once every row has been
// returned.
func (s *Statement) FetchColumn(col int) (protocol.Value, bool) {
	row, ok := s.FetchRow()
	if !ok {
		return protocol.Value{}, false
	}
	if col < 0 || col >= len(row) {
		return protocol.Value{}, false
	}
	return row[col], true
}

// FetchTypedRow returns the next row as a column-name map, with every column
// named in fieldTypes coerced to the requested Go type (§4.2 wire types
// don't always match what a caller's application type needs). ok == false
// once every row has been returned.
func (s *Statement) FetchTypedRow(fieldTypes map[string]string) (row map[string]interface{}, ok bool, err error) {
	r, ok := s.FetchRow()
	if !ok {
		return nil, false, nil
	}
	typed, err := s.RowMapper().AssociativeTyped(r, fieldTypes)
	if err != nil {
		return nil, true, err
	}
	return typed, true, nil
}

// Rows returns every decoded row without moving the fetch cursor.
func (s *Statement) Rows() []mapper.Row {
	out := make([]mapper.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = mapper.Row(r)
	}
	return out
}

// RowMapper builds a mapper.RowMapper for this statement's column names, for
// shaping rows according to FetchStyle (§4.5).
func (s *Statement) RowMapper() *mapper.RowMapper {
	return mapper.NewRowMapper(s.ColumnNames())
}

// CloseCursor sends CLOSE-STATEMENT and discards the row buffer (§4.5).
// Idempotent.
func (s *Statement) CloseCursor(ctx context.Context) error {
	s.driver.mu.Lock()
	defer s.driver.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.meta == nil {
		return nil
	}

	commandID := s.driver.allocateRoundTripID()
	req := protocol.NewCloseStatementRequest(commandID, s.meta.StatementID)
	if _, err := s.driver.roundTrip(ctx, req); err != nil {
		return ErrTransportIO("close-statement", err)
	}
	return nil
}
