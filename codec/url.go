package codec

import (
	"net/url"

	"github.com/spacerhq/spacer"
)

// AbsoluteURL returns a Codec between strings and absolute *url.URL values.
func AbsoluteURL() spacer.Codec[string, *url.URL] { return urlCodec{} }

type urlCodec struct{}

func (urlCodec) Decode(a string) (*url.URL, error) {
	u, err := spacer.ParseLocation(a)
	if err != nil {
		return nil, spacer.Issues{{Path: "/", Code: spacer.CodeInvalidFormat, Message: "invalid absolute URL", Cause: err, Offset: -1}}
	}
	return u, nil
}

func (urlCodec) Encode(b *url.URL) (string, error) {
	if b == nil || !b.IsAbs() {
		return "", spacer.Issues{{Path: "/", Code: spacer.CodeInvalidFormat, Message: "not an absolute URL", Offset: -1}}
	}
	return b.String(), nil
}
