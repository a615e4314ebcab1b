package fakeapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/HashtagPatil/KnowledgeHub/internal/markup"
)

type aiRequest struct {
	Content string `json:"content"`
	Action  string `json:"action"`
	Title   string `json:"title"`
}

// aiFailure answers with the configured failure, if any.
func (s *Server) aiFailure(w http.ResponseWriter) bool {
	s.mu.Lock()
	status, msg := s.aiStatus, s.aiMessage
	s.mu.Unlock()
	if status == 0 {
		return false
	}
	if msg == "" {
		w.WriteHeader(status)
		return true
	}
	writeError(w, status, msg)
	return true
}

func (s *Server) aiImprove(w http.ResponseWriter, r *http.Request, _ *user) {
	var req aiRequest
	if !decode(w, r, &req) || s.aiFailure(w) {
		return
	}
	plain := normalizeSpace(markup.PlainText(req.Content))

	var result string
	switch strings.ToLower(req.Action) {
	case "grammar":
		result = fixGrammar(plain)
	case "concise":
		result = strings.Join(firstSentences(plain, 2), " ")
	case "title":
		result = suggestTitles(req.Title, plain)
	default:
		result = improve(plain)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result, "action": req.Action, "success": true})
}

func (s *Server) aiSummary(w http.ResponseWriter, r *http.Request, _ *user) {
	var req aiRequest
	if !decode(w, r, &req) || s.aiFailure(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": summarize(req.Content, 220), "action": "summary", "success": true})
}

func (s *Server) aiTags(w http.ResponseWriter, r *http.Request, _ *user) {
	var req aiRequest
	if !decode(w, r, &req) || s.aiFailure(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": suggestTags(req.Title, req.Content), "success": true})
}

// ------------------------- deterministic "AI" -------------------------

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	spaceBefore  = regexp.MustCompile(`\s+([.,!?;:])`)
	loneI        = regexp.MustCompile(`\bi\b`)
	sentenceEnd  = regexp.MustCompile(`[.!?]\s*$`)
	sentenceTail = regexp.MustCompile(`(?:[.!?])\s+`)
)

var upgrades = strings.NewReplacer(
	"a lot of", "numerous",
	" very ", " highly ",
	" use ", " utilize ",
	" help ", " facilitate ",
	" big ", " substantial ",
	" good ", " effective ",
	" bad ", " problematic ",
)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

func fixGrammar(s string) string {
	s = spaceBefore.ReplaceAllString(s, "$1")
	s = loneI.ReplaceAllString(s, "I")
	s = capitalize(s)
	if s != "" && !sentenceEnd.MatchString(s) {
		s += "."
	}
	return s
}

func improve(s string) string {
	var lines []string
	for _, sentence := range firstSentences(s, -1) {
		lines = append(lines, fixGrammar(strings.TrimSpace(upgrades.Replace(" "+sentence+" "))))
	}
	return strings.Join(lines, "\n")
}

// firstSentences splits s into sentences, keeping at most n (all when n < 0).
func firstSentences(s string, n int) []string {
	var out []string
	for _, part := range sentenceTail.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !sentenceEnd.MatchString(part) {
			part += "."
		}
		out = append(out, part)
		if n >= 0 && len(out) == n {
			break
		}
	}
	return out
}

func suggestTitles(title, plain string) string {
	topic := strings.TrimSpace(title)
	if topic == "" {
		words := strings.Fields(plain)
		if len(words) > 4 {
			words = words[:4]
		}
		topic = strings.TrimRight(strings.Join(words, " "), ".,!?")
	}
	patterns := []string{
		"A Practical Guide to %s",
		"Understanding %s",
		"%s: Lessons from Production",
		"Getting Started with %s",
		"%s Explained",
	}
	lines := make([]string, len(patterns))
	for i, p := range patterns {
		lines[i] = fmt.Sprintf("%d. "+p, i+1, topic)
	}
	return strings.Join(lines, "\n")
}

func summarize(content string, max int) string {
	plain := normalizeSpace(markup.PlainText(content))
	if len(plain) <= max {
		return plain
	}
	cut := strings.LastIndex(plain[:max], " ")
	if cut <= 0 {
		cut = max
	}
	return strings.TrimRight(plain[:cut], ".,;: ") + "..."
}

var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{"go", []string{"golang", "goroutine", "channel", " go "}},
	{"java", []string{"java", "jvm", "maven"}},
	{"react", []string{"react", "jsx", "hooks"}},
	{"python", []string{"python", "django", "pandas"}},
	{"docker", []string{"docker", "container"}},
	{"kubernetes", []string{"kubernetes", "k8s", "helm"}},
	{"database", []string{"sql", "postgres", "database"}},
	{"rest-api", []string{"rest", "endpoint", "http"}},
	{"security", []string{"security", "jwt", "oauth"}},
	{"cloud", []string{"aws", "gcp", "azure", "cloud"}},
}

func suggestTags(title, content string) []string {
	haystack := " " + strings.ToLower(title+" "+markup.PlainText(content)) + " "
	tags := []string{}
	for _, k := range tagKeywords {
		for _, kw := range k.keywords {
			if strings.Contains(haystack, kw) {
				tags = append(tags, k.tag)
				break
			}
		}
		if len(tags) == 5 {
			break
		}
	}
	return tags
}
