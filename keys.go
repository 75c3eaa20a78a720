package spacer

// CandidateKey constrains the key type of a KeySet. Declare a named string
// type with one constant per accepted wrapper key:
//
//	type spaceKey string
//	const spaceData spaceKey = "data"
type CandidateKey interface{ ~string }

// KeySet is a closed, ordered set of wrapper keys. It is fixed at
// construction and enumerated in declaration order.
type KeySet[K CandidateKey] struct {
	keys []K
}

// Keys builds a KeySet. Repeated keys keep their first position.
func Keys[K CandidateKey](keys ...K) KeySet[K] {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return KeySet[K]{keys: out}
}

// NoKey is the key type of the empty KeySet used by flat collections.
type NoKey string

// NoKeys is the empty KeySet: elements are only decoded directly.
func NoKeys() KeySet[NoKey] { return KeySet[NoKey]{} }

// All returns the keys in enumeration order. The slice is a copy.
func (s KeySet[K]) All() []K {
	out := make([]K, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of keys.
func (s KeySet[K]) Len() int { return len(s.keys) }

// Contains reports whether k is a member.
func (s KeySet[K]) Contains(k K) bool {
	for _, m := range s.keys {
		if m == k {
			return true
		}
	}
	return false
}
