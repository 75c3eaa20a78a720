package nasa

import (
	"errors"
	"net/url"
	"time"

	"github.com/spacerhq/spacer"
	"github.com/spacerhq/spacer/codec"
)

// Key is the closed set of wrapper keys a search item may hide under.
type Key string

// KeyData wraps an item as {"data": item}.
const KeyData Key = "data"

// Keys enumerates every Key.
var Keys = spacer.Keys(KeyData)

// Space is one image asset from a search result.
type Space struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Center      string    `json:"center,omitempty" yaml:"center,omitempty"`
	MediaType   string    `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	DateCreated time.Time `json:"date_created" yaml:"date_created,omitempty"`
	Keywords    []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Href        string    `json:"href,omitempty" yaml:"href,omitempty"`
}

// metadata is the first entry of an item's "data" array.
type metadata struct {
	NasaID      string   `json:"nasa_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Center      string   `json:"center,omitempty"`
	MediaType   string   `json:"media_type,omitempty"`
	DateCreated string   `json:"date_created,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

func (m *metadata) Validate() error {
	switch {
	case m.NasaID == "":
		return errors.New("nasa_id is required")
	case m.Title == "":
		return errors.New("title is required")
	}
	return nil
}

type assetLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

var (
	decodeMetadata = spacer.JSON[metadata]()
	decodeLinks    = spacer.JSON[[]assetLink]()
	decodeTime     = spacer.Via(spacer.String, codec.TimeRFC3339())
	decodeURL      = spacer.Via(spacer.String, codec.AbsoluteURL())
)

// DecodeSpace is the decode rule for one search item:
//
//	{"href": "...", "data": [{"nasa_id": "...", "title": "...", ...}],
//	 "links": [{"rel": "preview", "href": "..."}]}
//
// nasa_id and title are required. A date_created or preview href that is
// present must be well formed.
func DecodeSpace(raw spacer.RawValue) (Space, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Space{}, errors.New("item is not an object")
	}
	entries, ok := obj["data"].([]any)
	if !ok || len(entries) == 0 {
		return Space{}, errors.New("item has no data entry")
	}
	md, err := decodeMetadata(entries[0])
	if err != nil {
		return Space{}, err
	}

	s := Space{
		ID:          md.NasaID,
		Title:       md.Title,
		Description: md.Description,
		Center:      md.Center,
		MediaType:   md.MediaType,
		Keywords:    md.Keywords,
	}
	if md.DateCreated != "" {
		if s.DateCreated, err = decodeTime(md.DateCreated); err != nil {
			return Space{}, err
		}
	}
	if href, ok := obj["href"].(string); ok {
		s.Href = href
	}
	if raw, ok := obj["links"]; ok {
		links, err := decodeLinks(raw)
		if err != nil {
			return Space{}, err
		}
		for _, l := range links {
			if l.Rel != "preview" {
				continue
			}
			u, err := decodeURL(l.Href)
			if err != nil {
				return Space{}, err
			}
			s.ImageURL = u.String()
			break
		}
	}
	return s, nil
}

// Page is one decoded page of search results.
type Page struct {
	Items     []Space
	TotalHits int64
	Next      *url.URL
	// Links holds keyed-map links carried by the collection, if any.
	Links spacer.Links
	Stats spacer.Stats
}
