// Package markdown strips Markdown formatting from README text.
package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regular expressions, applied in order.
var (
	fencedCode    = regexp.MustCompile("(?ms)^[ \t]*(```|~~~)[^\n]*\n(.*?)^[ \t]*(```|~~~)[ \t]*$")
	inlineCode    = regexp.MustCompile("`([^`\n]+)`")
	placeholder   = regexp.MustCompile("\x00(\\d+)\x00")
	horizontal    = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	tableDivider  = regexp.MustCompile(`(?m)^[ \t]*\|?([ \t]*:?-{3,}:?[ \t]*\|?)+[ \t]*$`)
	bulletMarker  = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	numberMarker  = regexp.MustCompile(`(?m)^([ \t]*)\d+[.)][ \t]+`)
	headingMarker = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	headingCloser = regexp.MustCompile(`(?m)[ \t]+#+[ \t]*$`)
	blockquote    = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	refLinks      = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	refDefs       = regexp.MustCompile(`(?m)^[ \t]*\[[^\]]+\]:[ \t]+\S+.*$`)
	strongStar    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	strongUnder   = regexp.MustCompile(`__([^_\n]+)__`)
	emStar        = regexp.MustCompile(`(^|[^\w*])\*([^*\n]+)\*`)
	emUnder       = regexp.MustCompile(`(^|[^\w])_([^_\n]+)_($|[^\w])`)
	strike        = regexp.MustCompile(`~~([^~\n]+)~~`)
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normaliser converts Markdown to plain text.
type Normaliser struct {
	inlineHTML func(string) string
}

// New creates a new Markdown normaliser that leaves embedded HTML alone.
func New() *Normaliser {
	return &Normaliser{}
}

// NewWithInlineHTML creates a Markdown normaliser that passes the prose,
// but never code, through strip to remove embedded HTML.
func NewWithInlineHTML(strip func(string) string) *Normaliser {
	return &Normaliser{inlineHTML: strip}
}

// Normalise removes Markdown syntax. Code is kept verbatim, images are
// dropped and links keep their text.
func (n *Normaliser) Normalise(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	// Code must survive the rewrites below untouched.
	var code []string
	hold := func(s string) string {
		code = append(code, s)
		return fmt.Sprintf("\x00%d\x00", len(code)-1)
	}
	content = fencedCode.ReplaceAllStringFunc(content, func(m string) string {
		return hold(strings.TrimSuffix(fencedCode.FindStringSubmatch(m)[2], "\n"))
	})
	content = inlineCode.ReplaceAllStringFunc(content, func(m string) string {
		return hold(inlineCode.FindStringSubmatch(m)[1])
	})

	content = horizontal.ReplaceAllString(content, "")
	content = tableDivider.ReplaceAllString(content, "")
	content = bulletMarker.ReplaceAllString(content, "$1")
	content = numberMarker.ReplaceAllString(content, "$1")
	content = headingMarker.ReplaceAllString(content, "")
	content = headingCloser.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")

	content = refDefs.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = refLinks.ReplaceAllString(content, "$1")

	content = strongStar.ReplaceAllString(content, "$1")
	content = strongUnder.ReplaceAllString(content, "$1")
	content = emStar.ReplaceAllString(content, "$1$2")
	content = emUnder.ReplaceAllString(content, "$1$2$3")
	content = strike.ReplaceAllString(content, "$1")

	if n.inlineHTML != nil {
		content = n.inlineHTML(content)
	}
	content = trailingSpace.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	content = placeholder.ReplaceAllStringFunc(content, func(m string) string {
		i, err := strconv.Atoi(placeholder.FindStringSubmatch(m)[1])
		if err != nil || i >= len(code) {
			return m
		}
		return code[i]
	})

	return strings.TrimSpace(content)
}

// Title returns the text of the first level-one heading, or "".
func (n *Normaliser) Title(content string) string {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimRight(strings.TrimPrefix(line, "# "), "#"))
		}
	}
	return ""
}
