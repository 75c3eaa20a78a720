package nasa

import "net/url"

// DefaultBaseURL is the NASA Image and Video Library search endpoint.
const DefaultBaseURL = "https://images-api.nasa.gov/search"

// Query holds the three search parameters sent with every request.
type Query struct {
	Q           string `yaml:"q" json:"q"`
	Description string `yaml:"description" json:"description"`
	MediaType   string `yaml:"media_type" json:"media_type"`
}

// DefaultQuery searches for Apollo 11 moon landing images.
var DefaultQuery = Query{Q: "apollo 11", Description: "moon landing", MediaType: "image"}

// Values encodes the query parameters, skipping empty ones.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Description != "" {
		v.Set("description", q.Description)
	}
	if q.MediaType != "" {
		v.Set("media_type", q.MediaType)
	}
	return v
}
