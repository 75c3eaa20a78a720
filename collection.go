package spacer

import (
	"context"
	"log/slog"
	"strconv"

	eng "github.com/spacerhq/spacer/internal/engine"
)

// Envelope names the fields that lead from the document root to the element
// sequence: {Root: {Items: [...]}} or {Root: {Items: {Data: [...]}}}.
type Envelope struct {
	Root  string
	Items string
	// Data is descended into when Items holds an object rather than an array.
	Data string
	// Links, when non-empty, names an optional keyed link map under Root.
	Links string
}

// DefaultEnvelope is {"collection": {"items": ...}} with links under
// "collection.links".
var DefaultEnvelope = Envelope{Root: "collection", Items: "items", Data: "data", Links: "links"}

// Collection is the result of a collection decode.
type Collection[T any] struct {
	Items []T
	Links Links
	Stats Stats
}

// Len returns the number of decoded items.
func (c Collection[T]) Len() int { return len(c.Items) }

// Stats counts what happened to the source elements.
type Stats struct {
	Elements  int // elements in the source sequence
	Direct    int // elements decoded as they were
	Unwrapped int // items taken from candidate keys
	Dropped   int // elements that contributed nothing
}

// Option configures a CollectionDecoder.
type Option func(*decoderConfig)

type decoderConfig struct {
	envelope Envelope
	logger   *slog.Logger
}

// WithEnvelope overrides DefaultEnvelope.
func WithEnvelope(e Envelope) Option { return func(c *decoderConfig) { c.envelope = e } }

// WithLogger sets the logger used to report dropped elements at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *decoderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// CollectionDecoder extracts items of type T from a collection envelope,
// retrying wrapped elements under the keys of K. It holds no mutable state
// and is safe for concurrent use.
type CollectionDecoder[T any, K CandidateKey] struct {
	item   DecodeFunc[T]
	keys   []K
	env    Envelope
	logger *slog.Logger
}

// NewCollectionDecoder binds an item decode rule and a closed key set.
func NewCollectionDecoder[T any, K CandidateKey](item DecodeFunc[T], keys KeySet[K], opts ...Option) *CollectionDecoder[T, K] {
	cfg := decoderConfig{envelope: DefaultEnvelope, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}
	return &CollectionDecoder[T, K]{item: item, keys: keys.All(), env: cfg.envelope, logger: cfg.logger}
}

// NewFlatCollectionDecoder decodes elements directly, with no wrapper keys.
func NewFlatCollectionDecoder[T any](item DecodeFunc[T], opts ...Option) *CollectionDecoder[T, NoKey] {
	return NewCollectionDecoder(item, NoKeys(), opts...)
}

// DecodeFrom parses src and decodes the envelope.
func (d *CollectionDecoder[T, K]) DecodeFrom(ctx context.Context, src Source, opts ...ParseOpt) (Collection[T], error) {
	raw, err := ParseRaw(ctx, src, opts...)
	if err != nil {
		return Collection[T]{}, err
	}
	return d.Decode(raw)
}

// DecodeBytes is DecodeFrom over JSONBytes(data).
func (d *CollectionDecoder[T, K]) DecodeBytes(ctx context.Context, data []byte, opts ...ParseOpt) (Collection[T], error) {
	return d.DecodeFrom(ctx, JSONBytes(data), opts...)
}

// Decode walks the envelope's elements in order. An element is decoded
// directly when possible; otherwise every candidate key present on it is
// tried in declaration order and each decoded value is kept. Only a missing
// or malformed envelope is an error.
func (d *CollectionDecoder[T, K]) Decode(raw RawValue) (Collection[T], error) {
	root, elems, base, err := d.env.locate(raw)
	if err != nil {
		return Collection[T]{}, err
	}

	out := Collection[T]{Items: make([]T, 0, len(elems))}
	out.Stats.Elements = len(elems)
	for i, el := range elems {
		if v, ok := TryDecode(el, d.item).Get(); ok {
			out.Items = append(out.Items, v)
			out.Stats.Direct++
			continue
		}
		n := d.unwrap(el, &out.Items)
		if n == 0 {
			out.Stats.Dropped++
			d.logger.Debug("collection element dropped", "path", eng.JoinPointer(base, strconv.Itoa(i)), "kind", rawKind(el))
			continue
		}
		out.Stats.Unwrapped += n
	}

	if d.env.Links != "" {
		if lm, ok := root[d.env.Links].(map[string]any); ok {
			ls, err := LinksFromRaw(lm)
			if err != nil {
				return Collection[T]{}, prefixIssues(err, eng.JoinPointer(eng.JoinPointer("", d.env.Root), d.env.Links))
			}
			out.Links = ls
		}
	}
	return out, nil
}

func (d *CollectionDecoder[T, K]) unwrap(el RawValue, dst *[]T) int {
	obj, ok := el.(map[string]any)
	if !ok {
		return 0
	}
	n := 0
	for _, k := range d.keys {
		inner, present := obj[string(k)]
		if !present {
			continue
		}
		if v, ok := TryDecode(inner, d.item).Get(); ok {
			*dst = append(*dst, v)
			n++
		}
	}
	return n
}

// locate returns the root object, the element sequence and its JSON Pointer.
func (e Envelope) locate(raw RawValue) (map[string]any, []any, string, error) {
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, "", singleIssue(CodeEnvelope, "/", "expected object, got "+rawKind(raw))
	}
	rootPath := eng.JoinPointer("", e.Root)
	root, ok := top[e.Root].(map[string]any)
	if !ok {
		return nil, nil, "", missingOrWrong(top, e.Root, rootPath, "object")
	}
	itemsPath := eng.JoinPointer(rootPath, e.Items)
	switch items := root[e.Items].(type) {
	case []any:
		return root, items, itemsPath, nil
	case map[string]any:
		if e.Data == "" {
			break
		}
		dataPath := eng.JoinPointer(itemsPath, e.Data)
		arr, ok := items[e.Data].([]any)
		if !ok {
			return nil, nil, "", missingOrWrong(items, e.Data, dataPath, "array")
		}
		return root, arr, dataPath, nil
	}
	return nil, nil, "", missingOrWrong(root, e.Items, itemsPath, "array")
}

func missingOrWrong(parent map[string]any, field, path, want string) Issues {
	v, present := parent[field]
	if !present {
		return singleIssue(CodeEnvelope, path, "missing "+want)
	}
	return singleIssue(CodeEnvelope, path, "expected "+want+", got "+rawKind(v))
}

func prefixIssues(err error, prefix string) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Path == "/" {
			it.Path = prefix
		} else {
			it.Path = prefix + it.Path
		}
		out[i] = it
	}
	return out
}
