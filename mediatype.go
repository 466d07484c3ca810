package bodyparse

import (
	"mime"
	"strings"
)

var shorthands = map[string]string{
	"urlencoded": "application/x-www-form-urlencoded",
	"multipart":  "multipart/*",
	"json":       "application/json",
	"text":       "text/plain",
	"html":       "text/html",
	"xml":        "application/xml",
}

// Matches reports whether contentType satisfies any of patterns.
//
// Patterns are full media types ("text/html"), wildcards ("text/*",
// "*/*", "application/*+json"), suffixes ("+json") or shorthands such as
// "json" and "urlencoded". Parameters on contentType are ignored; a content
// type that does not parse matches nothing.
func Matches(contentType string, patterns []string) bool {
	actual, ok := mediaType(contentType)
	if !ok {
		return false
	}

	for _, p := range patterns {
		expected := normalizePattern(p)
		if expected != "" && mimeMatch(expected, actual) {
			return true
		}
	}

	return false
}

// mediaType returns the lower-cased type/subtype of a Content-Type value.
func mediaType(contentType string) (string, bool) {
	if strings.TrimSpace(contentType) == "" {
		return "", false
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || strings.Count(mt, "/") != 1 {
		return "", false
	}

	return mt, true
}

func normalizePattern(pattern string) string {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if full, ok := shorthands[pattern]; ok {
		return full
	}

	switch {
	case pattern == "":
		return ""
	case strings.HasPrefix(pattern, "+"):
		return "*/*" + pattern
	case strings.Contains(pattern, "/"):
		return pattern
	}

	if byExt := mime.TypeByExtension("." + pattern); byExt != "" {
		mt, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mt
		}
	}

	return ""
}

func mimeMatch(expected, actual string) bool {
	expType, expSub, ok := strings.Cut(expected, "/")
	if !ok {
		return false
	}

	actType, actSub, _ := strings.Cut(actual, "/")

	if expType != "*" && expType != actType {
		return false
	}

	if suffix, ok := strings.CutPrefix(expSub, "*+"); ok {
		return strings.HasSuffix(actSub, "+"+suffix)
	}

	return expSub == "*" || expSub == actSub
}
