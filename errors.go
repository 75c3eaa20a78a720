package spacer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spacerhq/spacer/i18n"
)

// Issue codes
const (
	CodeParseError    = "parse_error"
	CodeEnvelope      = "envelope"
	CodeInvalidLink   = "invalid_link"
	CodeInvalidType   = "invalid_type"
	CodeInvalidFormat = "invalid_format"
	CodeDuplicateKey  = "duplicate_key"
	CodeTruncated     = "truncated"
	CodeRequired      = "required"
)

// Issue represents a single structural failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /collection/items).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	Offset  int64 // Byte offset in the input source (-1 when unknown).
}

// Issues is a collection of structural errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. envelope at /collection: missing object
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Localized renders one line per issue in the current i18n language, with
// the JSON Pointer and the detail message appended.
func (iss Issues) Localized() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		line := i18n.T(it.Code, map[string]string{"path": it.Path})
		if it.Message != "" {
			line += ": " + it.Message
		}
		out = append(out, line)
	}
	return out
}

// Unwrap exposes the causes so errors.Is can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

func singleIssue(code, path, msg string) Issues {
	return Issues{{Code: code, Path: path, Message: msg, Offset: -1}}
}
