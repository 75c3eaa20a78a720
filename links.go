package spacer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"

	json "github.com/goccy/go-json"

	eng "github.com/spacerhq/spacer/internal/engine"
)

// Link is a named absolute location, as found in {"self": {"href": "..."}}.
type Link struct {
	Name string
	Href *url.URL
}

// NewLink validates href and builds a Link.
func NewLink(name, href string) (Link, error) {
	u, err := ParseLocation(href)
	if err != nil {
		return Link{}, linkIssue(name, err)
	}
	return Link{Name: name, Href: u}, nil
}

// Equal compares names and hrefs.
func (l Link) Equal(o Link) bool {
	if l.Name != o.Name {
		return false
	}
	if l.Href == nil || o.Href == nil {
		return l.Href == o.Href
	}
	return l.Href.String() == o.Href.String()
}

// ParseLocation parses s as an absolute URL.
func ParseLocation(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%q is not an absolute URL", s)
	}
	return u, nil
}

// Links is the list form of a keyed link map.
type Links []Link

// Lookup returns the first link with the given name.
func (ls Links) Lookup(name string) (Link, bool) {
	for _, l := range ls {
		if l.Name == name {
			return l, true
		}
	}
	return Link{}, false
}

// Equal compares two link lists element by element.
func (ls Links) Equal(o Links) bool {
	if len(ls) != len(o) {
		return false
	}
	for i := range ls {
		if !ls[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// LinksFromRaw decodes {"name": {"href": "..."}} into Links sorted by name,
// since a RawValue object carries no key order.
func LinksFromRaw(raw RawValue) (Links, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, singleIssue(CodeInvalidType, "/", "expected object of links, got "+rawKind(raw))
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Links, 0, len(names))
	for _, name := range names {
		l, err := linkFromEntry(name, m[name])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ToRaw is the inverse of LinksFromRaw.
func (ls Links) ToRaw() (RawValue, error) {
	if err := ls.check(); err != nil {
		return nil, err
	}
	m := make(map[string]any, len(ls))
	for _, l := range ls {
		m[l.Name] = map[string]any{"href": l.Href.String()}
	}
	return m, nil
}

// MarshalJSON writes the keyed map in list order.
func (ls Links) MarshalJSON() ([]byte, error) {
	if err := ls.check(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(l.Name)
		if err != nil {
			return nil, err
		}
		href, err := json.Marshal(l.Href.String())
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(`:{"href":`)
		buf.Write(href)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the keyed map, keeping document order.
func (ls *Links) UnmarshalJSON(data []byte) error {
	src := engineTokenSource(JSONBytes(data))
	tok, err := src.NextToken()
	if err != nil {
		return toIssues(err, -1)
	}
	if tok.Kind == eng.KindNull {
		*ls = nil
		return nil
	}
	if tok.Kind != eng.KindBeginObject {
		return singleIssue(CodeInvalidType, "/", "expected object of links")
	}

	out := Links{}
	seen := map[string]struct{}{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return toIssues(eofAsUnexpected(err), -1)
		}
		if tok.Kind == eng.KindEndObject {
			break
		}
		name := tok.String
		if _, dup := seen[name]; dup {
			return singleIssue(CodeDuplicateKey, eng.JoinPointer("", name), "link '"+name+"' duplicated")
		}
		seen[name] = struct{}{}
		first, err := src.NextToken()
		if err != nil {
			return toIssues(eofAsUnexpected(err), -1)
		}
		v, err := eng.BuildFrom(src, first, eng.JSONNumber)
		if err != nil {
			return toIssues(err, -1)
		}
		l, err := linkFromEntry(name, v)
		if err != nil {
			return err
		}
		out = append(out, l)
	}
	*ls = out
	return nil
}

func (ls Links) check() error {
	seen := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		if _, dup := seen[l.Name]; dup {
			return singleIssue(CodeDuplicateKey, eng.JoinPointer("", l.Name), "link '"+l.Name+"' duplicated")
		}
		seen[l.Name] = struct{}{}
		if l.Href == nil || !l.Href.IsAbs() {
			return linkIssue(l.Name, errors.New("href is not an absolute URL"))
		}
	}
	return nil
}

func linkFromEntry(name string, v RawValue) (Link, error) {
	entry, ok := v.(map[string]any)
	if !ok {
		return Link{}, linkIssue(name, fmt.Errorf("expected object, got %s", rawKind(v)))
	}
	href, ok := entry["href"].(string)
	if !ok {
		return Link{}, linkIssue(name, errors.New("missing string href"))
	}
	return NewLink(name, href)
}

func linkIssue(name string, cause error) Issues {
	return Issues{{
		Code:    CodeInvalidLink,
		Path:    eng.JoinPointer(eng.JoinPointer("", name), "href"),
		Message: cause.Error(),
		Cause:   cause,
		Offset:  -1,
	}}
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
