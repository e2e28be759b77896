package sitemap

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Namespace is the sitemaps.org protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Element names are matched by local name so prefixed documents
// (xmlns:sm="...") are found too; inNamespace then checks the namespace URI.
const (
	sitemapLocExpr = "//*[local-name()='sitemap']/*[local-name()='loc']"
	pageLocExpr    = "//*[local-name()='url']/*[local-name()='loc']"
)

// ErrMalformed is returned when a body is not well-formed XML.
var ErrMalformed = errors.New("malformed sitemap")

// Parse extracts page and nested sitemap locations from body. Relative
// locations are resolved against base. Index and leaf entries are collected
// independently, so a document may yield both.
func Parse(base *url.URL, body []byte) (Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Document{}, nil
	}
	root, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	sitemaps, err := locations(root, sitemapLocExpr, base)
	if err != nil {
		return Document{}, err
	}
	pages, err := locations(root, pageLocExpr, base)
	if err != nil {
		return Document{}, err
	}
	return Document{Pages: pages, Sitemaps: sitemaps}, nil
}

func locations(root *xmlquery.Node, expr string, base *url.URL) ([]string, error) {
	nodes, err := xmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if !inNamespace(node) {
			continue
		}
		raw := strings.TrimSpace(node.InnerText())
		if raw == "" {
			continue
		}
		resolved, err := Resolve(base, raw)
		if err != nil {
			continue
		}
		out = append(out, resolved)
	}
	return out, nil
}

// inNamespace requires both <loc> and its parent entry to use the protocol namespace.
func inNamespace(loc *xmlquery.Node) bool {
	if loc.NamespaceURI != Namespace {
		return false
	}
	return loc.Parent != nil && loc.Parent.NamespaceURI == Namespace
}

// Resolve turns ref into an absolute URL using base. A nil base only
// accepts refs that are already absolute.
func Resolve(base *url.URL, ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse location %q: %w", ref, err)
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if !parsed.IsAbs() {
		return "", fmt.Errorf("location %q is not absolute", ref)
	}
	return parsed.String(), nil
}

// ValidateRoot checks that raw is an absolute http(s) URL suitable as a crawl root.
func ValidateRoot(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sitemap url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("sitemap url %q has no host", raw)
	}
	return u, nil
}
