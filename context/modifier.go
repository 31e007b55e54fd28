package context

// ModifierKind tags the variant of Modifier (§4.11).
type ModifierKind uint8

const (
	ModArrayIndex ModifierKind = iota
	ModArrayHead
	ModArrayTail
	ModArrayRandom
	ModObjectKey
)

// Modifier narrows a Reference into a sub-location of an array or object
// (§3.8). Modifiers are pushed as a reference is built up (e.g. by repeated
// `subscr` opcodes) and must be reversible via PopModifier so that `self`
// can be recovered for method calls (§4.11).
type Modifier struct {
	Kind ModifierKind
	// Index is used by ModArrayIndex (may be negative, counts from the
	// tail) and, once resolved, by ModArrayRandom (the RNG-derived index).
	Index int64
	// Key is used by ModObjectKey.
	Key string
}

func ArrayIndex(i int64) Modifier { return Modifier{Kind: ModArrayIndex, Index: i} }
func ArrayHead() Modifier         { return Modifier{Kind: ModArrayHead} }
func ArrayTail() Modifier         { return Modifier{Kind: ModArrayTail} }
func ArrayRandom(i int64) Modifier { return Modifier{Kind: ModArrayRandom, Index: i} }
func ObjectKey(k string) Modifier { return Modifier{Kind: ModObjectKey, Key: k} }
