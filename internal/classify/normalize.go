package classify

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// A token glued directly to REV<digits>, e.g. "52-11-01REV156"
	revGluedPattern = regexp.MustCompile(`([A-Za-z0-9)\]])((?i:REV))(\d)`)

	// REV12, REV:12, REV.12, rev 12 -> "REV 12" (word case preserved)
	revCanonicalPattern = regexp.MustCompile(`(?i)\b(REV)[:.]?\s*(\d+)\b`)
)

// normalizer holds the catalog-derived typo-repair patterns. The glue
// splitters depend on the keyword taxonomy, so a normalizer is built per
// PatternSet and replaced wholesale on reload like everything else.
type normalizer struct {
	// Linking keyword glued to a reference keyword: "REFAMM" -> "REF AMM".
	// Restricting the right side to known keywords keeps ordinary words
	// like REFERENCED intact.
	linkGlue *regexp.Regexp

	// Reference keyword glued to a digit: "AMM52-11-01" -> "AMM 52-11-01"
	refDigitGlue *regexp.Regexp
}

func newNormalizer(refAlt, linkAlt string) normalizer {
	var n normalizer
	if refAlt != "" && linkAlt != "" {
		n.linkGlue = regexp.MustCompile(`(?i)\b(` + linkAlt + `)(` + refAlt + `)`)
	}
	if refAlt != "" {
		n.refDigitGlue = regexp.MustCompile(`(?i)\b(` + refAlt + `)(\d)`)
	}
	return n
}

// Normalize canonicalizes raw narrative text before pattern evaluation:
// whitespace runs collapse to single spaces, revision tokens become
// "REV <digits>", and keywords glued to their neighbors are split.
// The transformation is idempotent: Normalize(Normalize(x)) == Normalize(x).
func (p *PatternSet) Normalize(text string) string {
	t := collapseWhitespace(text)

	t = revGluedPattern.ReplaceAllString(t, "$1 $2$3")
	t = revCanonicalPattern.ReplaceAllString(t, "$1 $2")

	if p.norm.linkGlue != nil {
		t = p.norm.linkGlue.ReplaceAllString(t, "$1 $2")
	}
	if p.norm.refDigitGlue != nil {
		t = p.norm.refDigitGlue.ReplaceAllString(t, "$1 $2")
	}

	return collapseWhitespace(t)
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// stripMarkup removes HTML-ish tags that leak into action narratives from
// the source system, keeping only visible text. Input without markup is
// returned as-is.
func stripMarkup(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}
