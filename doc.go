// Package spacer decodes loosely shaped JSON collection envelopes into typed
// item lists without letting one malformed item spoil the rest.
//
// Provides:
//
// - A fallible item decoder (TryDecode) that turns any decode failure into an absent Outcome
// - A collection decoder that retries wrapped elements under a closed set of candidate keys
// - A keyed-map link model ({"name": {"href": url}}) with a symmetric encoder
// - A stable structural error model via Issues (JSON Pointer, code, message)
// - Token sources with duplicate-key, depth, and size enforcement
//
// Design policy:
// - Keep only public APIs in the root package; put token plumbing under internal/.
// - Item failures are omissions, never errors. Envelope failures are Issues.
//
// Typical usage:
//
//	type key string
//	const data key = "data"
//
//	dec := spacer.NewCollectionDecoder(spacer.JSON[Space](), spacer.Keys(data))
//	coll, err := dec.DecodeFrom(ctx, spacer.JSONBytes(body))
package spacer
