package services

import "github.com/custodia-labs/ragcore/internal/core/domain"

// HashSet is the set of content hashes already present in a collection.
type HashSet map[string]struct{}

// NewHashSet builds a set from the store's hash index.
func NewHashSet(index map[string]string) HashSet {
	set := make(HashSet, len(index))
	for hash := range index {
		set[hash] = struct{}{}
	}
	return set
}

// Has reports whether hash is in the set.
func (s HashSet) Has(hash string) bool {
	_, ok := s[hash]
	return ok
}

// Filter splits candidates into chunks not yet stored and the count of
// duplicates. A candidate is a duplicate if its hash is in existing or was
// accepted earlier in the same call. Accepted hashes are added to existing.
//
// Chunks without a ContentHash are hashed from their text.
func Filter(candidates []domain.Chunk, existing HashSet) ([]domain.Chunk, int) {
	accepted := make([]domain.Chunk, 0, len(candidates))
	skipped := 0

	for _, c := range candidates {
		if c.Metadata.ContentHash == "" {
			c.Metadata.ContentHash = domain.ContentHash(c.Text)
		}
		if existing.Has(c.Metadata.ContentHash) {
			skipped++
			continue
		}
		existing[c.Metadata.ContentHash] = struct{}{}
		accepted = append(accepted, c)
	}

	return accepted, skipped
}
