package ingest

// SplitText splits text into consecutive, non-overlapping chunks of at
// most size characters; the final chunk may be shorter. Boundaries are
// purely positional (a simplicity/quality tradeoff, not sentence-aware).
// Concatenating the result reproduces the input exactly, and chunk order
// matches input order, so 0-based slice indexes double as chunk indexes.
func SplitText(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
