package match

// Merge collapses records sharing a natural key into one record per key.
//
// When two records share a key the one with a set breakdown wins; if both or
// neither have sets, the one with a known outcome wins; otherwise the first seen
// is kept. The output keeps the first-seen position of every key, so callers
// that feed records in frontier order get a deterministic result.
func Merge(records []*MatchRecord) []*MatchRecord {
	index := make(map[Key]int, len(records))
	merged := make([]*MatchRecord, 0, len(records))

	for _, rec := range records {
		if rec == nil {
			continue
		}
		key := rec.Key()
		pos, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, rec)
			continue
		}
		if stronger(rec, merged[pos]) {
			merged[pos] = rec
		}
	}

	return merged
}

// stronger reports whether candidate should replace current
func stronger(candidate, current *MatchRecord) bool {
	if candidate.HasSets() != current.HasSets() {
		return candidate.HasSets()
	}
	candidateKnown := candidate.Outcome != OutcomeUnknown && candidate.Outcome != ""
	currentKnown := current.Outcome != OutcomeUnknown && current.Outcome != ""
	if candidateKnown != currentKnown {
		return candidateKnown
	}
	return false
}
