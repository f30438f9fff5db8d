package splitter

import "strings"

// Separators tried in order: paragraph, line, sentence, word, then a
// hard character cut as the last resort.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Split chunks every block in order. Empty or whitespace-only blocks
// produce no chunks. Deterministic for fixed inputs and parameters.
func Split(blocks []string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	var out []string
	for _, b := range blocks {
		out = append(out, splitText(b, size, overlap)...)
	}
	return out
}

func splitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}
	return split(text, separators, size, overlap)
}

func split(text string, seps []string, size, overlap int) []string {
	if len(text) <= size {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	var (
		parts     []string
		sep       string
		remaining []string
	)
	for i, s := range seps {
		if s == "" {
			return hardCut(text, size, overlap)
		}
		if p := strings.Split(text, s); len(p) > 1 {
			parts, sep, remaining = p, s, seps[i+1:]
			break
		}
	}
	if parts == nil {
		return hardCut(text, size, overlap)
	}

	var chunks []string
	var cur string
	flush := func() {
		if t := strings.TrimSpace(cur); t != "" {
			chunks = append(chunks, t)
		}
	}

	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		candidate := p
		if cur != "" {
			candidate = cur + sep + p
		}
		if len(candidate) <= size {
			cur = candidate
			continue
		}

		flush()
		cur = ""
		// carry an overlap tail across the boundary so context survives
		// the split
		if overlap > 0 && len(chunks) > 0 {
			tail := tailChars(chunks[len(chunks)-1], overlap)
			if tail != "" && len(tail)+len(sep)+len(p) <= size {
				cur = tail + sep
			}
		}
		if len(cur)+len(p) > size {
			chunks = append(chunks, split(p, remaining, size, overlap)...)
			cur = ""
			continue
		}
		cur += p
	}
	flush()
	return chunks
}

// tailChars returns up to n trailing characters of s, snapped forward
// to the next word boundary.
func tailChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	t := s[len(s)-n:]
	if i := strings.IndexByte(t, ' '); i >= 0 && i+1 < len(t) {
		t = t[i+1:]
	}
	return strings.TrimSpace(t)
}

func hardCut(text string, size, overlap int) []string {
	var chunks []string
	for start := 0; start < len(text); {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}
