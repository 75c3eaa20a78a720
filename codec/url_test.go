package codec

import (
	"testing"

	"github.com/spacerhq/spacer"
)

func TestAbsoluteURL_Roundtrip(t *testing.T) {
	c := AbsoluteURL()
	u, err := c.Decode("https://images-assets.nasa.gov/image/as11-40-5874/as11-40-5874~thumb.jpg")
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if u.Host != "images-assets.nasa.gov" {
		t.Fatalf("unexpected host %q", u.Host)
	}
	s, err := c.Encode(u)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if s != "https://images-assets.nasa.gov/image/as11-40-5874/as11-40-5874~thumb.jpg" {
		t.Fatalf("roundtrip mismatch: %s", s)
	}
}

func TestAbsoluteURL_RejectsRelative(t *testing.T) {
	for _, in := range []string{"/search?q=apollo", "not a url", "://missing-scheme"} {
		if _, err := AbsoluteURL().Decode(in); !spacer.HasCode(err, spacer.CodeInvalidFormat) {
			t.Fatalf("%q: expected invalid_format, got %v", in, err)
		}
	}
	if _, err := AbsoluteURL().Encode(nil); err == nil {
		t.Fatalf("expected error encoding nil URL")
	}
}
