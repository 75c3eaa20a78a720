package spacer

import (
	"bytes"
	"io"
	"sync"

	eng "github.com/spacerhq/spacer/internal/engine"
	"github.com/spacerhq/spacer/source/gojson"
	jsonsrc "github.com/spacerhq/spacer/source/json"
)

// TokenKind enumerates JSON token kinds. The constants mirror the engine kinds
// so drivers and callers can branch on them without internal imports.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	NumberMode() NumberMode
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source. The default implementation is
// based on goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = GoJSONDriver()
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json backed driver.
func UseDefaultJSONDriver() { SetJSONDriver(GoJSONDriver()) }

// CurrentJSONDriver returns the driver used by JSONBytes and JSONReader.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// GoJSONDriver tokenizes with github.com/goccy/go-json.
func GoJSONDriver() JSONDriver {
	return engineDriver{name: "go-json", reader: gojson.NewReader}
}

// StdlibJSONDriver tokenizes with encoding/json.
func StdlibJSONDriver() JSONDriver {
	return engineDriver{name: "encoding/json", reader: jsonsrc.NewReader}
}

type engineDriver struct {
	name   string
	reader func(io.Reader) eng.TokenSource
}

func (d engineDriver) NewReader(r io.Reader) Source {
	return &engineSourceAdapter{inner: d.reader(r), numMode: NumberJSONNumber}
}

func (d engineDriver) NewBytes(b []byte) Source {
	return d.NewReader(bytes.NewReader(b))
}

func (d engineDriver) Name() string { return d.name }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// WithNumberMode wraps a Source and overrides its NumberMode.
func WithNumberMode(s Source, m NumberMode) Source { return &overrideNumberMode{inner: s, mode: m} }

type overrideNumberMode struct {
	inner Source
	mode  NumberMode
}

func (o *overrideNumberMode) NextToken() (Token, error) { return o.inner.NextToken() }
func (o *overrideNumberMode) NumberMode() NumberMode    { return o.mode }
func (o *overrideNumberMode) Location() int64           { return o.inner.Location() }

type engineSourceAdapter struct {
	inner   eng.TokenSource
	numMode NumberMode
}

func (s *engineSourceAdapter) NextToken() (Token, error) { return s.inner.NextToken() }
func (s *engineSourceAdapter) NumberMode() NumberMode    { return s.numMode }
func (s *engineSourceAdapter) Location() int64           { return s.inner.Location() }

// engineTokenSource exposes the engine view of a Source, unwrapping adapters.
func engineTokenSource(s Source) eng.TokenSource {
	switch v := s.(type) {
	case *engineSourceAdapter:
		return v.inner
	case *overrideNumberMode:
		return engineTokenSource(v.inner)
	}
	return s
}
