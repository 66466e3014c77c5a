package text

import (
	"regexp"
	"strings"
)

// Replacement order matters: marker characters go first so "- item" loses
// its bullet before the link patterns run, and whitespace is collapsed last.
var (
	markerChars = regexp.MustCompile("[*_~`>#-]")
	linkSyntax  = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	imageSyntax = regexp.MustCompile(`!\[(.*?)\]\(.*?\)`)
	blankLines  = regexp.MustCompile(`(?m)^[ \t]*\n`)
	lineBreaks  = regexp.MustCompile(`[\r\n]+`)
	spaceRuns   = regexp.MustCompile(`\s{2,}`)
)

// StripMarkdown flattens generator output into a single plain-text line:
// emphasis, heading and list markers are removed, link and image syntax is
// replaced with the link text, blank lines and repeated whitespace collapse
// to single spaces, and the result is trimmed.
func StripMarkdown(s string) string {
	s = markerChars.ReplaceAllString(s, "")
	s = linkSyntax.ReplaceAllString(s, "$1")
	s = imageSyntax.ReplaceAllString(s, "$1")
	s = blankLines.ReplaceAllString(s, "")
	s = lineBreaks.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
