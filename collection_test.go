package spacer_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/spacerhq/spacer"
)

type wrapKey string

const (
	wrapData wrapKey = "data"
	wrapItem wrapKey = "item"
)

func decodeStrings(t *testing.T, doc string, keys spacer.KeySet[wrapKey]) spacer.Collection[string] {
	t.Helper()
	dec := spacer.NewCollectionDecoder(spacer.String, keys)
	coll, err := dec.DecodeBytes(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return coll
}

func TestCollection_MixedDirectWrappedMalformed(t *testing.T) {
	doc := `{"collection":{"items":{"data":["x","y", {"data":"z"}, 42]}}}`
	coll := decodeStrings(t, doc, spacer.Keys(wrapData))
	if want := []string{"x", "y", "z"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v", coll.Items, want)
	}
	want := spacer.Stats{Elements: 4, Direct: 2, Unwrapped: 1, Dropped: 1}
	if coll.Stats != want {
		t.Fatalf("stats = %+v, want %+v", coll.Stats, want)
	}
}

func TestCollection_ItemsArrayDirectlyUnderCollection(t *testing.T) {
	doc := `{"collection":{"items":["a",{"item":"b"},{"other":"c"},null,"d"]}}`
	coll := decodeStrings(t, doc, spacer.Keys(wrapData, wrapItem))
	if want := []string{"a", "b", "d"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v", coll.Items, want)
	}
}

func TestCollection_AllDirectPreservesLengthAndOrder(t *testing.T) {
	doc := `{"collection":{"items":["5","4","3","2","1"]}}`
	coll := decodeStrings(t, doc, spacer.Keys(wrapData))
	if coll.Len() != 5 || coll.Stats.Elements != 5 {
		t.Fatalf("expected 5 items, got %d", coll.Len())
	}
	if want := []string{"5", "4", "3", "2", "1"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("order lost: %v", coll.Items)
	}
}

func TestCollection_EmptyAndAllMalformedAreNotErrors(t *testing.T) {
	for _, doc := range []string{
		`{"collection":{"items":[]}}`,
		`{"collection":{"items":[1, true, null, [], {"x":"y"}, {"data":7}]}}`,
	} {
		coll := decodeStrings(t, doc, spacer.Keys(wrapData))
		if coll.Items == nil || len(coll.Items) != 0 {
			t.Fatalf("%s: expected empty non-nil items, got %#v", doc, coll.Items)
		}
	}
}

func TestCollection_MultipleMatchingKeysContributeEach(t *testing.T) {
	doc := `{"collection":{"items":[{"item":"second","data":"first"}]}}`
	coll := decodeStrings(t, doc, spacer.Keys(wrapData, wrapItem))
	if want := []string{"first", "second"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v (declaration order)", coll.Items, want)
	}
	if coll.Stats.Unwrapped != 2 || coll.Stats.Dropped != 0 {
		t.Fatalf("unexpected stats %+v", coll.Stats)
	}
}

func TestCollection_FlatDecoderIgnoresWrappers(t *testing.T) {
	dec := spacer.NewFlatCollectionDecoder(spacer.String)
	coll, err := dec.DecodeBytes(context.Background(), []byte(`{"collection":{"items":["a",{"data":"b"}]}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []string{"a"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v", coll.Items, want)
	}
}

func TestCollection_EnvelopeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
	}{
		{"missing collection", `{"items":["x"]}`, "/collection"},
		{"collection not object", `{"collection":["x"]}`, "/collection"},
		{"missing items", `{"collection":{}}`, "/collection/items"},
		{"items scalar", `{"collection":{"items":"x"}}`, "/collection/items"},
		{"items object without data", `{"collection":{"items":{"rows":[]}}}`, "/collection/items/data"},
		{"top-level array", `[{"collection":{}}]`, "/"},
	}
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dec.DecodeBytes(context.Background(), []byte(tc.doc))
			iss, ok := spacer.AsIssues(err)
			if !ok || len(iss) != 1 {
				t.Fatalf("expected one issue, got %v", err)
			}
			if iss[0].Code != spacer.CodeEnvelope || iss[0].Path != tc.path {
				t.Fatalf("got %s at %s, want envelope at %s", iss[0].Code, iss[0].Path, tc.path)
			}
		})
	}
}

func TestCollection_MalformedJSONIsParseError(t *testing.T) {
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData))
	_, err := dec.DecodeBytes(context.Background(), []byte(`{"collection":{"items":[`))
	if !spacer.HasCode(err, spacer.CodeParseError) {
		t.Fatalf("expected parse_error, got %v", err)
	}
}

func TestCollection_Idempotent(t *testing.T) {
	raw, err := spacer.ParseRawBytes(context.Background(), []byte(`{"collection":{"items":["a",{"data":"b"},3]}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData))
	a, errA := dec.Decode(raw)
	b, errB := dec.Decode(raw)
	if errA != nil || errB != nil {
		t.Fatalf("decode: %v / %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("decodes differ: %+v vs %+v", a, b)
	}
}

func TestCollection_ConcurrentUse(t *testing.T) {
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData))
	doc := []byte(`{"collection":{"items":["a",{"data":"b"},3]}}`)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			coll, err := dec.DecodeBytes(context.Background(), doc)
			if err == nil && coll.Len() != 2 {
				err = errors.New("unexpected item count")
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestCollection_CustomEnvelope(t *testing.T) {
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData),
		spacer.WithEnvelope(spacer.Envelope{Root: "result", Items: "rows"}))
	coll, err := dec.DecodeBytes(context.Background(), []byte(`{"result":{"rows":["a",{"data":"b"}]}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v", coll.Items, want)
	}
	if _, err := dec.DecodeBytes(context.Background(), []byte(`{"result":{"rows":{"data":[]}}}`)); !spacer.HasCode(err, spacer.CodeEnvelope) {
		t.Fatalf("object rows without Data field should be an envelope error, got %v", err)
	}
}

func TestCollection_LinksDecoded(t *testing.T) {
	doc := `{"collection":{"items":[],"links":{"self":{"href":"https://example.com/a"}}}}`
	coll := decodeStrings(t, doc, spacer.Keys(wrapData))
	if len(coll.Links) != 1 || coll.Links[0].Name != "self" || coll.Links[0].Href.String() != "https://example.com/a" {
		t.Fatalf("unexpected links %+v", coll.Links)
	}

	// Array-shaped links are not the keyed-map model and are left alone.
	coll = decodeStrings(t, `{"collection":{"items":[],"links":[{"rel":"next"}]}}`, spacer.Keys(wrapData))
	if coll.Links != nil {
		t.Fatalf("expected no links, got %+v", coll.Links)
	}
}

func TestCollection_InvalidLinkPropagates(t *testing.T) {
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData))
	_, err := dec.DecodeBytes(context.Background(), []byte(`{"collection":{"items":["a"],"links":{"self":{"href":"not a url"}}}}`))
	iss, ok := spacer.AsIssues(err)
	if !ok || iss[0].Code != spacer.CodeInvalidLink {
		t.Fatalf("expected invalid_link, got %v", err)
	}
	if iss[0].Path != "/collection/links/self/href" {
		t.Fatalf("unexpected path %s", iss[0].Path)
	}
}

func TestCollection_LogsDroppedElements(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData), spacer.WithLogger(logger))
	if _, err := dec.DecodeBytes(context.Background(), []byte(`{"collection":{"items":{"data":["x",42]}}}`)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "path=/collection/items/data/1") || !strings.Contains(out, "kind=number") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

type crew struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (c *crew) Validate() error {
	if c.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func TestCollection_StructItems(t *testing.T) {
	doc := `{"collection":{"items":[
		{"name":"Armstrong","role":"commander"},
		{"data":{"name":"Aldrin","role":"lunar module pilot"}},
		{"data":{"role":"no name"}},
		{"name":42},
		"Collins"
	]}}`
	dec := spacer.NewCollectionDecoder(spacer.JSON[crew](), spacer.Keys(wrapData))
	coll, err := dec.DecodeBytes(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []crew{{"Armstrong", "commander"}, {"Aldrin", "lunar module pilot"}}
	if !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %+v, want %+v", coll.Items, want)
	}
	if coll.Stats.Dropped != 3 {
		t.Fatalf("expected 3 dropped, got %+v", coll.Stats)
	}
}

type coords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestCollection_StructItemsWithoutValidator(t *testing.T) {
	doc := `{"collection":{"items":[{"x":1,"y":2},{"data":{"x":3,"y":4}},{"name":"junk"},null]}}`
	dec := spacer.NewCollectionDecoder(spacer.JSON[coords](), spacer.Keys(wrapData))
	coll, err := dec.DecodeBytes(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []coords{{1, 2}, {3, 4}}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %+v, want %+v", coll.Items, want)
	}
	if want := (spacer.Stats{Elements: 4, Direct: 1, Unwrapped: 1, Dropped: 2}); coll.Stats != want {
		t.Fatalf("stats = %+v, want %+v", coll.Stats, want)
	}
}

func TestCollection_NullElementsAreDropped(t *testing.T) {
	coll := decodeStringsWith(t, `{"collection":{"items":{"data":["x",null,{"data":"z"},42]}}}`, spacer.JSON[string]())
	if want := []string{"x", "z"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v", coll.Items, want)
	}
	if coll.Stats.Dropped != 2 {
		t.Fatalf("expected 2 dropped, got %+v", coll.Stats)
	}
}

func decodeStringsWith(t *testing.T, doc string, rule spacer.DecodeFunc[string]) spacer.Collection[string] {
	t.Helper()
	coll, err := spacer.NewCollectionDecoder(rule, spacer.Keys(wrapData)).DecodeBytes(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return coll
}
