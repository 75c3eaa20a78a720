package spacer_test

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/spacerhq/spacer"
)

func TestParseRaw_Tree(t *testing.T) {
	v, err := spacer.ParseRawBytes(context.Background(), []byte(`{"a":[1,"two",true,null,{"b":2.5}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]any{"a": []any{json.Number("1"), "two", true, nil, map[string]any{"b": json.Number("2.5")}}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestParseRaw_Float64Mode(t *testing.T) {
	src := spacer.WithNumberMode(spacer.JSONBytes([]byte(`[1, 2.5]`)), spacer.NumberFloat64)
	v, err := spacer.ParseRaw(context.Background(), src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(v, []any{1.0, 2.5}) {
		t.Fatalf("got %#v", v)
	}
}

func TestParseRaw_Errors(t *testing.T) {
	for _, doc := range []string{``, `{`, `[1,2`, `{} {}`} {
		if _, err := spacer.ParseRawBytes(context.Background(), []byte(doc)); !spacer.HasCode(err, spacer.CodeParseError) {
			t.Fatalf("%q: expected parse_error, got %v", doc, err)
		}
	}
}

func TestParseRaw_DuplicateKey_Error(t *testing.T) {
	opt := spacer.ParseOpt{Strictness: spacer.Strictness{OnDuplicateKey: spacer.Error}}
	_, err := spacer.ParseRawBytes(context.Background(), []byte(`[{"a":1,"a":2}]`), opt)
	iss, ok := spacer.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != spacer.CodeDuplicateKey {
		t.Fatalf("expected duplicate_key issue, got: %v", err)
	}
	if iss[0].Path != "/0/a" {
		t.Fatalf("expected path=/0/a, got: %s", iss[0].Path)
	}
}

func TestParseRaw_DuplicateKey_Warn(t *testing.T) {
	var warned []spacer.Issue
	opt := spacer.ParseOpt{
		Strictness: spacer.Strictness{OnDuplicateKey: spacer.Warn},
		OnIssue:    func(i spacer.Issue) { warned = append(warned, i) },
	}
	v, err := spacer.ParseRawBytes(context.Background(), []byte(`{"a":1,"a":2}`), opt)
	if err != nil {
		t.Fatalf("warn mode should not fail: %v", err)
	}
	if len(warned) != 1 || warned[0].Path != "/a" {
		t.Fatalf("expected one warning at /a, got %+v", warned)
	}
	if v.(map[string]any)["a"] != json.Number("2") {
		t.Fatalf("last duplicate should win, got %v", v)
	}
}

func TestParseRaw_MaxDepth(t *testing.T) {
	opt := spacer.ParseOpt{MaxDepth: 2}
	if _, err := spacer.ParseRawBytes(context.Background(), []byte(`{"a":{"b":1}}`), opt); err != nil {
		t.Fatalf("depth 2 should pass: %v", err)
	}
	_, err := spacer.ParseRawBytes(context.Background(), []byte(`{"a":{"b":[1]}}`), opt)
	iss, ok := spacer.AsIssues(err)
	if !ok || iss[0].Code != spacer.CodeParseError || iss[0].Path != "/a/b" {
		t.Fatalf("expected depth error at /a/b, got %v", err)
	}
}

func TestParseRawReader_MaxBytes(t *testing.T) {
	opt := spacer.ParseOpt{MaxBytes: 8}
	_, err := spacer.ParseRawReader(context.Background(), bytes.NewReader([]byte(`{"collection":{}}`)), opt)
	if !spacer.HasCode(err, spacer.CodeTruncated) {
		t.Fatalf("expected truncated, got %v", err)
	}
	if _, err := spacer.ParseRawReader(context.Background(), bytes.NewReader([]byte(`[1]`)), opt); err != nil {
		t.Fatalf("small input should pass: %v", err)
	}
}

func TestParseRaw_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := spacer.ParseRawBytes(ctx, []byte(`[]`)); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestJSONDriver_Swap(t *testing.T) {
	t.Cleanup(spacer.UseDefaultJSONDriver)
	if got := spacer.CurrentJSONDriver().Name(); got != "go-json" {
		t.Fatalf("default driver = %s", got)
	}
	spacer.SetJSONDriver(spacer.StdlibJSONDriver())
	if got := spacer.CurrentJSONDriver().Name(); got != "encoding/json" {
		t.Fatalf("driver = %s", got)
	}
	dec := spacer.NewCollectionDecoder(spacer.String, spacer.Keys(wrapData))
	coll, err := dec.DecodeBytes(context.Background(), []byte(`{"collection":{"items":{"data":["x","y",{"data":"z"},42]}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []string{"x", "y", "z"}; !reflect.DeepEqual(coll.Items, want) {
		t.Fatalf("items = %v, want %v", coll.Items, want)
	}
	spacer.SetJSONDriver(nil)
	if got := spacer.CurrentJSONDriver().Name(); got != "encoding/json" {
		t.Fatalf("nil driver should be ignored, got %s", got)
	}
}
