package suggest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var sentenceEndings = []rune{'.', '!', '?'}

var hookImpactWords = []string{
	"increible", "sorprendente", "nunca", "siempre", "todos",
	"nadie", "secreto", "verdad", "descubre",
}

var hookImperativeStarts = []string{
	"imagina", "piensa", "considera", "mira", "escucha", "recuerda",
}

var hookContrastWords = []string{"pero", "sin embargo", "aunque", "a pesar de"}

var (
	rhetoricalRe = regexp.MustCompile(`(?:^|[^\p{L}])(que|como|por\s+que|porque)(?:[^\p{L}]|$)`)
	statisticRe  = regexp.MustCompile(`\d+%|\d+\s+de\s+cada\s+\d+`)
)

func countWords(text string) int {
	return len(strings.Fields(text))
}

// normalizeText strips diacritics (NFKD, drop combining marks) and lowercases,
// so the Spanish hook lexicon matches accented and unaccented spellings alike.
func normalizeText(text string) string {
	decomposed := norm.NFKD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func headOfText(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	return string(runes[:limit])
}

// hookScore estimates attention-capture over the first hookHeadChars of the
// candidate text. The returned score is in [0, 1]; the bool reports whether
// the head qualifies as a hook (score >= hookMinScore).
func hookScore(text string) (float64, bool) {
	head := headOfText(text, hookHeadChars)
	if head == "" {
		return 0.0, false
	}
	normalized := normalizeText(head)
	score := 0.0

	if strings.Contains(head, "?") || rhetoricalRe.MatchString(normalized) {
		score += 0.35
	}
	if statisticRe.MatchString(normalized) {
		score += 0.25
	}
	for _, word := range hookImpactWords {
		if strings.Contains(normalized, word) {
			score += 0.20
			break
		}
	}
	for _, word := range hookImperativeStarts {
		if strings.HasPrefix(normalized, word) {
			score += 0.15
			break
		}
	}
	for _, word := range hookContrastWords {
		if strings.Contains(normalized, word) {
			score += 0.10
			break
		}
	}
	if idx := strings.Index(head, "!"); idx >= 0 {
		if utf8.RuneCountInString(strings.TrimSpace(head[:idx])) > 10 {
			score += 0.15
		}
	}
	if countWords(head) <= 8 {
		score += 0.10
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, score >= hookMinScore
}

func endsSentence(text string) bool {
	stripped := strings.TrimRight(text, " \t\r\n")
	if stripped == "" {
		return false
	}
	if strings.HasSuffix(stripped, "...") {
		return true
	}
	last := []rune(stripped)[len([]rune(stripped))-1]
	for _, r := range sentenceEndings {
		if last == r {
			return true
		}
	}
	return false
}

func startsSentence(text string) bool {
	stripped := strings.TrimLeft(text, " \t\r\n")
	if stripped == "" {
		return false
	}
	first := []rune(stripped)[0]
	return unicode.IsUpper(first) || unicode.IsDigit(first)
}

// isCleanStart: the clip opens at the transcript start, after a real pause,
// or on something that reads like a sentence start.
func isCleanStart(prevGapMS int, hasPrev bool, text string) bool {
	if !hasPrev {
		return true
	}
	if prevGapMS >= StartGapMS {
		return true
	}
	return startsSentence(text)
}

// isCleanEnd: the clip closes on sentence-final punctuation, before a real
// pause, or at the transcript end.
func isCleanEnd(nextGapMS int, hasNext bool, text string) bool {
	if endsSentence(text) {
		return true
	}
	if !hasNext {
		return true
	}
	return nextGapMS >= EndGapMS
}
