package spacer

import (
	"context"
	"errors"
	"io"

	eng "github.com/spacerhq/spacer/internal/engine"
)

// RawValue is a dynamically typed JSON value: map[string]any, []any, string,
// json.Number or float64 (see NumberMode), bool, or nil.
type RawValue = any

// ParseRaw consumes one JSON value from the Source and returns it as a RawValue.
// Enforcement (duplicate keys, depth, size) follows the last ParseOpt given.
// Every failure is reported as Issues.
func ParseRaw(ctx context.Context, src Source, opts ...ParseOpt) (RawValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, singleIssue(CodeParseError, "/", "nil source")
	}
	opt := lastOpt(opts)
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), toEngineOpt(opt))

	conv := eng.JSONNumber
	if src.NumberMode() == NumberFloat64 {
		conv = eng.Float64
	}
	v, err := eng.BuildValue(enforced, conv)
	if err != nil {
		return nil, toIssues(err, src.Location())
	}
	return v, nil
}

// ParseRawBytes is ParseRaw over JSONBytes(data).
func ParseRawBytes(ctx context.Context, data []byte, opts ...ParseOpt) (RawValue, error) {
	return ParseRaw(ctx, JSONBytes(data), opts...)
}

// ParseRawReader reads JSON from r. When MaxBytes is set it enforces the size
// cap up front, otherwise it streams through the Source driver.
func ParseRawReader(ctx context.Context, r io.Reader, opts ...ParseOpt) (RawValue, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, Issues{{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err, Offset: -1}}
		}
		if int64(len(data)) > opt.MaxBytes {
			return nil, Issues{{Code: CodeTruncated, Path: "/", Message: "max bytes exceeded", Offset: opt.MaxBytes}}
		}
		return ParseRaw(ctx, JSONBytes(data), opts...)
	}
	return ParseRaw(ctx, JSONReader(r), opts...)
}

func toEngineOpt(opt ParseOpt) eng.EnforceOptions {
	eo := eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	}
	if opt.OnIssue != nil {
		sink := opt.OnIssue
		eo.IssueSink = func(si eng.SimpleIssue) {
			sink(Issue{Code: si.Code, Path: si.Path, Message: si.Message, Offset: -1})
		}
	}
	return eo
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func toIssues(err error, offset int64) Issues {
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: offset}}
	}
	return Issues{{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err, Offset: offset}}
}
