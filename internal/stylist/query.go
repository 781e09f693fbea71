package stylist

import (
	"regexp"
	"strings"
)

const designerBrands = `(chanel|gucci|prada|louis vuitton|hermes|dior|versace|balenciaga)`

// Only the first matching pattern is applied.
var brandRewrites = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)inspired (?:by|in) ` + designerBrands), "${1} style"},
	{regexp.MustCompile(`(?i)like ` + designerBrands), "${1} style"},
	{regexp.MustCompile(`(?i)` + designerBrands + ` style`), "${1} style designer look"},
}

var styleEnhancements = []struct {
	keyword     string
	enhancement string
}{
	{"elegant", "elegant sophisticated classy"},
	{"casual", "casual everyday comfortable"},
	{"formal", "formal evening dress elegant"},
	{"sporty", "athletic sport activewear"},
	{"boho", "bohemian boho hippie festival"},
	{"vintage", "vintage retro classic"},
}

// EnhanceQuery rewrites a shopper's free-text query into something a product search
// handles better: "inspired by gucci" becomes "gucci style", and the first style word
// found is expanded with synonyms. At most one brand rewrite and one style expansion
// are applied, each to the first occurrence only.
func EnhanceQuery(query string) string {
	lower := strings.ToLower(query)
	out := query

	for _, b := range brandRewrites {
		if b.re.MatchString(out) {
			out = replaceFirst(b.re, out, b.repl)
			break
		}
	}

	for _, s := range styleEnhancements {
		if strings.Contains(lower, s.keyword) {
			re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s.keyword))
			out = replaceFirst(re, out, s.enhancement)
			break
		}
	}

	return out
}

func replaceFirst(re *regexp.Regexp, s, template string) string {
	m := re.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	var dst []byte
	dst = re.ExpandString(dst, template, s, m)
	return s[:m[0]] + string(dst) + s[m[1]:]
}
