package pipeline

// Lookup indexes back the join-and-embed passes. Rows whose join key is
// missing or malformed are skipped, which downstream reads as "no match".

// indexFirst builds a one-to-one lookup. When several rows share a key the
// first one in input order wins; later duplicates are ignored, so the pick
// is deterministic for a given input order.
func indexFirst[K comparable, T any](rows []T, key func(T) (K, bool)) map[K]*T {
	idx := make(map[K]*T, len(rows))
	for i := range rows {
		k, ok := key(rows[i])
		if !ok {
			continue
		}
		if _, exists := idx[k]; exists {
			continue
		}
		idx[k] = &rows[i]
	}
	return idx
}

// indexAll builds a one-to-many lookup preserving input order per key.
func indexAll[K comparable, T any](rows []T, key func(T) (K, bool)) map[K][]T {
	idx := make(map[K][]T)
	for _, row := range rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		idx[k] = append(idx[k], row)
	}
	return idx
}

// firstNonNil returns the first non-nil candidate of a precedence list.
func firstNonNil[T any](candidates ...*T) *T {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
