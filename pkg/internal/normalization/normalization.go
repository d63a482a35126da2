// Package normalization provides text normalization utilities for game name matching.
package normalization

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// leadingArticlePattern matches leading articles (a, an, the)
	leadingArticlePattern = regexp.MustCompile(`(?i)^(a|an|the)\s+`)

	// commaArticlePattern matches comma-separated articles
	commaArticlePattern = regexp.MustCompile(`(?i),\s(a|an|the)\b(?:\s*[^\p{L}\p{N}\s]|$)`)

	// nonWordSpacePattern matches anything that is not a letter, digit or space.
	// Trademark and registered signs fall in here.
	nonWordSpacePattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

	// multipleSpacePattern matches multiple consecutive spaces
	multipleSpacePattern = regexp.MustCompile(`\s+`)

	// searchTermSplitPattern splits by common delimiters
	searchTermSplitPattern = regexp.MustCompile(`\s*[:\-–—/&]\s*`)

	// sensitiveKeys is the set of query keys masked before URLs are logged
	sensitiveKeys = map[string]bool{
		"key":           true,
		"api_key":       true,
		"access_token":  true,
		"authorization": true,
		"password":      true,
	}
)

// NormalizeSearchTerm normalizes a game name for comparison.
// It performs the following transformations:
// - Converts to lowercase
// - Replaces underscores with spaces
// - Optionally removes articles (a, an, the)
// - Optionally removes punctuation and symbols
// - Normalizes Unicode characters and removes accents
func NormalizeSearchTerm(name string, removeArticles, removePunctuation bool) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", " ")

	if removeArticles {
		name = leadingArticlePattern.ReplaceAllString(name, "")
		name = commaArticlePattern.ReplaceAllString(name, "")
	}

	if removePunctuation {
		name = nonWordSpacePattern.ReplaceAllString(name, " ")
		name = multipleSpacePattern.ReplaceAllString(name, " ")
	}

	if hasNonASCII(name) {
		name = removeAccents(name)
	}

	return strings.TrimSpace(name)
}

// NormalizeSearchTermDefault normalizes a search term with default options (remove articles and punctuation).
func NormalizeSearchTermDefault(name string) string {
	return NormalizeSearchTerm(name, true, true)
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

// removeAccents removes diacritical marks from Unicode characters.
func removeAccents(s string) string {
	normalized := norm.NFD.String(s)

	var result strings.Builder
	for _, r := range normalized {
		if !unicode.Is(unicode.Mn, r) {
			result.WriteRune(r)
		}
	}

	return norm.NFC.String(result.String())
}

// SplitSearchTerm splits a name by common delimiters, e.g. a franchise
// prefix from its subtitle.
func SplitSearchTerm(name string) []string {
	return searchTermSplitPattern.Split(name, -1)
}

// StripSensitiveQueryParams removes sensitive query parameters from a URL for logging.
func StripSensitiveQueryParams(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsedURL.Query()
	for key := range query {
		if sensitiveKeys[strings.ToLower(key)] {
			query.Del(key)
		}
	}

	parsedURL.RawQuery = query.Encode()
	return parsedURL.String()
}

// MaskSensitiveValues masks credential values for safe logging.
func MaskSensitiveValues(values map[string]string) map[string]string {
	masked := make(map[string]string, len(values))

	for key, val := range values {
		switch {
		case val == "":
			masked[key] = ""
		case len(val) > 4:
			masked[key] = val[:2] + "***" + val[len(val)-2:]
		default:
			masked[key] = "***"
		}
	}

	return masked
}
