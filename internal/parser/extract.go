package parser

import (
	"regexp"
	"strings"
)

const fence = "```"

// Answer boundary markers used by the judge and unit-test prompts.
const (
	AnswerOpen       = "<Answer>"
	AnswerClose      = "</Answer>"
	FinalAnswerOpen  = "<FINAL_ANSWER>"
	FinalAnswerClose = "</FINAL_ANSWER>"
)

// ExtractFence returns the interior of the first fenced block tagged with
// one of langs. Text outside that block is dropped. An unterminated fence
// yields everything after the tag. ok is false when no tagged fence exists.
func ExtractFence(text string, langs ...string) (body string, lang string, ok bool) {
	best := -1
	for _, l := range langs {
		idx := strings.Index(text, fence+l)
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			lang = l
		}
	}
	if best < 0 {
		return "", "", false
	}
	rest := text[best+len(fence)+len(lang):]
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return rest, lang, true
}

var fenceTagLine = regexp.MustCompile(`^[A-Za-z0-9_+-]*[ \t]*\r?\n`)

// ExtractAnyFence returns the interior of the first fenced block regardless
// of its language tag. A leading tag line is removed.
func ExtractAnyFence(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	if loc := fenceTagLine.FindStringIndex(rest); loc != nil {
		rest = rest[loc[1]:]
	}
	return rest, true
}

// ExtractTagged returns the text between the first open marker and the
// first close marker after it. When only the open marker is present the
// remainder of the text is returned. ok is false when open is absent.
func ExtractTagged(text, open, close string) (string, bool) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(open):]
	if end := strings.Index(rest, close); end >= 0 {
		return rest[:end], true
	}
	return rest, true
}

// extractRequiredTagged is the strict variant used by shapes whose prompt
// demands both markers.
func extractRequiredTagged(shape Shape, text, open, close string) (string, error) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", newError(shape, ErrMissingDelimiter, "expected "+open+"..."+close, nil)
	}
	rest := text[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return "", newError(shape, ErrMissingDelimiter, "expected "+close, nil)
	}
	return rest[:end], nil
}

// normalize strips leading whitespace and, for single-line structures,
// folds newlines and tabs into spaces.
func normalize(s string, singleLine bool) string {
	s = strings.TrimLeft(s, " \t\r\n")
	if singleLine {
		s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	}
	return s
}

// structuredBody applies fence and tag extraction for JSON and literal
// shapes. It reports which fence language matched, if any.
func structuredBody(text string) (string, string) {
	if body, lang, ok := ExtractFence(text, "json", "python"); ok {
		return normalize(body, true), lang
	}
	if body, ok := ExtractTagged(text, AnswerOpen, AnswerClose); ok {
		if inner, lang, ok := ExtractFence(body, "json", "python"); ok {
			return normalize(inner, true), lang
		}
		return normalize(body, true), ""
	}
	return normalize(text, true), ""
}
