// Package indexer drives one indexing run: crawl a sitemap tree, deduplicate
// the discovered pages, and submit them to a Notifier one at a time with a
// fixed pause between submissions.
package indexer
