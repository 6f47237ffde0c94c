// Package scraper provides HTTP fetching and HTML row extraction for the pelota
// federation competition pages.
//
// The federation site serves its pages in a legacy single-byte encoding, so the
// Fetcher decodes every body before any parsing happens. The extractor locates the
// results table without relying on a stable selector: it ranks candidate tables by
// structural heuristics (column count, date-like and score-like tokens) and reads
// each match row into a RawRow, keeping the headline score and the nested per-set
// scores of the combined score cell apart. Pages it does not recognise yield zero
// rows rather than an error.
package scraper
