package spacer

// NumberMode dictates how numbers are represented in a RawValue.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Preserve json.Number.
	NumberFloat64                      // Fast mode (with potential precision loss).
)

// Severity expresses the severity level for enforcement findings.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn reports through ParseOpt.OnIssue; Error fails the parse.
}

// ParseOpt bundles parsing options. The zero value parses without limits.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	// OnIssue receives warnings that do not fail the parse.
	OnIssue func(Issue)
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}
