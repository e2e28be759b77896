// Package sitemap parses sitemaps.org documents and walks sitemap index trees.
package sitemap
