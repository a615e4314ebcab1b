// Package markup converts between the rich HTML stored in article content and
// the plain text the AI actions and validations reason about.
package markup

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// PlainText returns the text content of an HTML fragment with all markup removed
// and entities decoded.
func PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return html.UnescapeString(tagPattern.ReplaceAllString(fragment, ""))
	}
	return doc.Text()
}

// NonSpaceLen counts the runes of s that are not whitespace.
func NonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// HasText reports whether the fragment, stripped of markup, holds at least min
// non-whitespace characters.
func HasText(fragment string, min int) bool {
	if min <= 0 {
		return true
	}
	return NonSpaceLen(PlainText(fragment)) >= min
}

// Paragraphs turns plain text into HTML with one paragraph per line. Blank
// lines become empty paragraphs; no blank-line segmentation is attempted.
func Paragraphs(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(strings.TrimRight(line, "\r")))
		b.WriteString("</p>")
	}
	return b.String()
}

// ToMarkdown renders article HTML as Markdown for terminal display.
func ToMarkdown(fragment string) (string, error) {
	conv := md.NewConverter("", true, nil)
	return conv.ConvertString(fragment)
}
