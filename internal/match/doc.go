// Package match provides the canonical match record produced by the results pipeline.
//
// The match package defines MatchRecord, the club-relative Outcome, the natural key
// used to recognise the same real-world match scraped from several pages, and Merge,
// which collapses duplicate records into one canonical list. Dates are normalized to
// the YYYY-MM-DD form regardless of how the source page wrote them.
package match
