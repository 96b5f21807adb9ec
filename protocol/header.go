package protocol

import "strings"

// ResultType classifies whether a statement produced rows or an update count.
type ResultType string

const (
	ResultUpdateCount ResultType = "Update-Count"
	ResultSet         ResultType = "Result-Set"
)

// ResponseMetadata is the structured form of a response's CRLF header block
// (§3, §4.3).
type ResponseMetadata struct {
	StatementID         int
	CommandCount         int
	ResultType           ResultType
	RowCount             int
	RowCountSent         int
	ColumnCount          int
	ColumnNames          []string
	ColumnTypes          []TypeTag
	ColumnUpdateability  []bool
	Error                bool
	ErrorCode            string
	ErrorComponentCode   string
	ErrorDescription     string
}

// AnyUpdateable reports whether any column carries a record-id prefix.
func (m *ResponseMetadata) AnyUpdateable() bool {
	for _, u := range m.ColumnUpdateability {
		if u {
			return true
		}
	}
	return false
}

// headerOutcome is returned by HeaderParser.feedLine to tell the caller what to
// do next: keep reading lines, or that the block has ended with a known
// status.
type headerOutcome int

const (
	headerConsumed headerOutcome = iota
	headerStatusOK
	headerStatusError
	headerBlockEnd
)

// HeaderParser consumes CRLF-terminated lines and accumulates them into a
// ResponseMetadata, per §4.3.
type HeaderParser struct {
	meta        ResponseMetadata
	statusSeen  bool
}

// NewHeaderParser creates a parser with an empty metadata record.
func NewHeaderParser() *HeaderParser {
	return &HeaderParser{}
}

// ParseBlock reads lines from br until the header block terminates (a blank
// line), returning the accumulated metadata.
func (p *HeaderParser) ParseBlock(br *ByteReader) (*ResponseMetadata, error) {
	for {
		raw, err := br.ReadUntilCRLF()
		if err != nil {
			return nil, err
		}
		line := strings.TrimRight(string(raw), "\r\n")

		outcome, err := p.feedLine(line)
		if err != nil {
			return nil, err
		}
		if outcome == headerBlockEnd {
			// §3 invariant: "_ID is present iff any updateability flag is Y".
			// Column-Aliases never names it explicitly, so it's appended here
			// to line up with the trailing _ID value DecodeRows produces.
			if p.meta.AnyUpdateable() {
				p.meta.ColumnNames = append(p.meta.ColumnNames, "_ID")
			}
			return &p.meta, nil
		}
	}
}

func (p *HeaderParser) feedLine(line string) (headerOutcome, error) {
	if line == "" {
		return headerBlockEnd, nil
	}

	if !p.statusSeen && isStatusLine(line) {
		p.statusSeen = true
		if strings.Contains(line, "ERROR") {
			p.meta.Error = true
			return headerStatusError, nil
		}
		p.meta.Error = false
		return headerStatusOK, nil
	}

	key, value, ok := splitHeaderLine(line)
	if !ok {
		// Unknown/first line without a colon (e.g. the status line itself
		// when it doesn't contain OK/ERROR verbatim); ignore for forward
		// compatibility, per §4.3.
		return headerConsumed, nil
	}

	switch key {
	case "Statement-ID":
		p.meta.StatementID = atoiSafe(value)
	case "Command-Count":
		p.meta.CommandCount = atoiSafe(value)
	case "Result-Type":
		p.meta.ResultType = ResultType(value)
	case "Column-Count":
		p.meta.ColumnCount = atoiSafe(value)
	case "Row-Count":
		p.meta.RowCount = atoiSafe(value)
	case "Row-Count-Sent":
		p.meta.RowCountSent = atoiSafe(value)
	case "Column-Types":
		p.meta.ColumnTypes = parseTypeList(value)
	case "Column-Aliases":
		p.meta.ColumnNames = parseAliasList(value)
	case "Column-Updateability":
		p.meta.ColumnUpdateability = parseUpdateabilityList(value)
	case "Error-Code":
		p.meta.ErrorCode = value
	case "Error-Component-Code":
		p.meta.ErrorComponentCode = value
	case "Error-Description":
		p.meta.ErrorDescription = value
	}

	return headerConsumed, nil
}

func isStatusLine(line string) bool {
	return strings.Contains(line, " OK") || strings.Contains(line, " ERROR")
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

func parseTypeList(value string) []TypeTag {
	fields := strings.Fields(value)
	tags := make([]TypeTag, 0, len(fields))
	for _, f := range fields {
		tags = append(tags, TypeTag(f))
	}
	return tags
}

// parseAliasList parses a Column-Aliases value shaped like " [id] [name] ".
func parseAliasList(value string) []string {
	parts := strings.Split(value, "]")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, "[")
		if p == "" {
			continue
		}
		names = append(names, p)
	}
	return names
}

// parseUpdateabilityList parses a Column-Updateability value. Some servers
// prefix the flag list with a redundant column-count token (e.g. "2 N N");
// others send the bare flag list ("N N"). Rather than unconditionally
// dropping the first token — which would misparse the bare form — only
// tokens that are themselves "Y" or "N" are kept, per the resolution in
// DESIGN.md.
func parseUpdateabilityList(value string) []bool {
	fields := strings.Fields(value)
	flags := make([]bool, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "Y":
			flags = append(flags, true)
		case "N":
			flags = append(flags, false)
		}
	}
	return flags
}

func atoiSafe(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		return -n
	}
	return n
}
