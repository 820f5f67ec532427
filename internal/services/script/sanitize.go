package script

import (
	"regexp"
	"strings"
)

var (
	citationRe = regexp.MustCompile(`\s*\[S?[0-9]+\]\s*`)
	urlRe      = regexp.MustCompile(`https?://\S+`)
	emailRe    = regexp.MustCompile(`\S+@\S+\.\S+`)
	controlRe  = regexp.MustCompile("[\\x00-\\x08\\x0b\\x0c\\x0e-\\x1f]")
	spaceRe    = regexp.MustCompile(`\s+`)

	// Aggressive pass keeps letters, digits and common punctuation only
	aggressiveRe = regexp.MustCompile(`[^\p{L}\p{N}.,!?;:()'" -]`)

	sentenceEndRe = regexp.MustCompile(`([.!?。！？])\s*`)
	clauseEndRe   = regexp.MustCompile(`([,;，；、])\s*`)
)

// SanitizeForTTS strips content that speech providers reject: citation
// tags, URLs, e-mail addresses and control characters. The aggressive pass
// is a second attempt after a provider text rejection and additionally
// drops everything outside letters, digits and common punctuation.
func SanitizeForTTS(text string, aggressive bool) string {
	t := citationRe.ReplaceAllString(text, " ")
	t = urlRe.ReplaceAllString(t, "")
	t = emailRe.ReplaceAllString(t, "")
	t = controlRe.ReplaceAllString(t, "")
	t = spaceRe.ReplaceAllString(t, " ")
	if aggressive {
		t = aggressiveRe.ReplaceAllString(t, "")
		t = spaceRe.ReplaceAllString(t, " ")
	}
	return strings.TrimSpace(t)
}

// SplitForTTS cuts an utterance into pieces no longer than limit bytes,
// preferring sentence boundaries, then clause boundaries, then hard cuts.
// Synthesis concatenates the pieces back into a single segment, so the
// split is inaudible in the output.
func SplitForTTS(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for _, sentence := range splitAfter(text, sentenceEndRe) {
		if len(sentence) <= limit {
			parts = appendPacked(parts, sentence, limit)
			continue
		}
		for _, clause := range splitAfter(sentence, clauseEndRe) {
			for len(clause) > limit {
				parts = append(parts, strings.TrimSpace(clause[:limit]))
				clause = clause[limit:]
			}
			parts = appendPacked(parts, clause, limit)
		}
	}

	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

// appendPacked merges piece into the last part when the pair still fits
func appendPacked(parts []string, piece string, limit int) []string {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return parts
	}
	if n := len(parts); n > 0 && len(parts[n-1])+len(piece)+1 <= limit {
		parts[n-1] = parts[n-1] + " " + piece
		return parts
	}
	return append(parts, piece)
}

// splitAfter splits text after each boundary match, keeping the boundary
// punctuation attached to the preceding piece.
func splitAfter(text string, boundary *regexp.Regexp) []string {
	idxs := boundary.FindAllStringIndex(text, -1)
	if len(idxs) == 0 {
		return []string{text}
	}
	var pieces []string
	start := 0
	for _, loc := range idxs {
		pieces = append(pieces, text[start:loc[1]])
		start = loc[1]
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}
