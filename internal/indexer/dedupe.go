package indexer

// Dedupe returns the distinct URLs of urls, keeping the first occurrence of each.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Truncate returns the first n URLs. n <= 0 means no limit.
func Truncate(urls []string, n int) []string {
	if n <= 0 || len(urls) <= n {
		return urls
	}
	return urls[:n]
}
