package asdoc

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	blankLine   = regexp.MustCompile(`[ \t]*\n[ \t]*\n\s*`)
	lineJoin    = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	extraBreaks = regexp.MustCompile(`\n{3,}`)
	inlineTag   = regexp.MustCompile(`\{@(link|linkplain|code)\s+([^}]*)\}`)

	markdownEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`")
)

// markupTags are the elements render interprets. Any other '<' is text.
var markupTags = map[string]bool{
	"p": true, "ul": true, "ol": true, "li": true, "br": true,
	"code": true, "codeph": true, "tt": true, "pre": true, "codeblock": true,
	"b": true, "strong": true, "i": true, "em": true,
	"a": true, "xref": true, "ph": true, "span": true,
	"apiinheritdoc": true, "adobeimage": true,
}

// render converts ASDoc inline markup (the HTML subset used by ASDoc plus the
// DITA elements found in compiled archives) into Markdown or plain text.
// Unknown tags and stray '<' characters are kept verbatim.
func render(text string, markdown bool) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	r := &renderer{markdown: markdown}
	z := html.NewTokenizer(strings.NewReader(escapeText(text)))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return r.finish()
		case html.TextToken:
			r.text(string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			if !r.open(string(name)) {
				r.literal(raw)
			}
		case html.EndTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			if !r.close(string(name)) {
				r.literal(raw)
			}
		}
	}
}

// escapeText turns every '<' that does not open a complete markup tag into
// an entity, so comparisons such as "i<length" reach the tokenizer as text.
func escapeText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !isMarkup(s[i:]) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// isMarkup reports whether s starts with a comment or a known tag that is
// closed by '>' before the next '<'.
func isMarkup(s string) bool {
	if strings.HasPrefix(s, "<!--") {
		return true
	}
	rest := strings.TrimPrefix(s[1:], "/")
	n := 0
	for n < len(rest) && isLetter(rest[n]) {
		n++
	}
	if n == 0 || !markupTags[strings.ToLower(rest[:n])] {
		return false
	}
	rest = rest[n:]
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return false
	}
	if lt := strings.IndexByte(rest, '<'); lt >= 0 && lt < end {
		return false
	}
	if end == 0 {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '\n', '\r', '/':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

type renderer struct {
	markdown bool
	buf      []byte
	pre      int
	preStart bool
	code     int
}

func (r *renderer) text(s string) {
	if r.pre > 0 {
		if r.preStart {
			s = strings.TrimPrefix(s, "\n")
			r.preStart = false
		}
		r.buf = append(r.buf, s...)
		return
	}

	s = r.expand(s)
	for i, para := range blankLine.Split(s, -1) {
		if i > 0 {
			r.paragraph()
		}
		para = lineJoin.ReplaceAllString(para, " ")
		if r.atLineStart() {
			para = strings.TrimLeft(para, " \t")
		}
		r.buf = append(r.buf, para...)
	}
}

// expand renders inline tags and escapes the text between them.
func (r *renderer) expand(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range inlineTag.FindAllStringIndex(s, -1) {
		b.WriteString(r.escape(s[last:loc[0]]))
		b.WriteString(r.inline(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(r.escape(s[last:]))
	return b.String()
}

// escape protects Markdown emphasis and code characters outside code spans.
func (r *renderer) escape(s string) string {
	if !r.markdown || r.code > 0 {
		return s
	}
	return markdownEscaper.Replace(s)
}

// inline renders {@link Target label} and {@code text}.
func (r *renderer) inline(m string) string {
	parts := inlineTag.FindStringSubmatch(m)
	kind, body := parts[1], strings.TrimSpace(parts[2])
	if kind != "code" {
		if target, label, ok := strings.Cut(body, " "); ok {
			if label = strings.TrimSpace(label); label != "" {
				return r.escape(label)
			}
			body = target
		}
		body = strings.TrimPrefix(strings.ReplaceAll(body, "#", "."), ".")
	}
	if r.markdown {
		return "`" + body + "`"
	}
	return body
}

func (r *renderer) literal(s string) {
	r.buf = append(r.buf, s...)
}

func (r *renderer) mark(s string) {
	if r.markdown && r.pre == 0 {
		r.buf = append(r.buf, s...)
	}
}

func (r *renderer) open(name string) bool {
	switch name {
	case "p", "ul", "ol":
		r.paragraph()
	case "br":
		r.trimTrailing()
		if r.markdown {
			r.buf = append(r.buf, "  \n"...)
		} else {
			r.buf = append(r.buf, '\n')
		}
	case "code", "codeph", "tt":
		r.mark("`")
		r.code++
	case "b", "strong":
		r.mark("**")
	case "i", "em":
		r.mark("_")
	case "pre", "codeblock":
		r.paragraph()
		if r.markdown && r.pre == 0 {
			r.buf = append(r.buf, "```\n"...)
		}
		r.pre++
		r.preStart = true
	case "li":
		r.newline()
		r.buf = append(r.buf, "- "...)
	case "a", "xref", "ph", "span", "apiinheritdoc", "adobeimage":
	default:
		return false
	}
	return true
}

func (r *renderer) close(name string) bool {
	switch name {
	case "p", "ul", "ol":
		r.paragraph()
	case "code", "codeph", "tt":
		r.mark("`")
		if r.code > 0 {
			r.code--
		}
	case "b", "strong":
		r.mark("**")
	case "i", "em":
		r.mark("_")
	case "pre", "codeblock":
		if r.pre == 0 {
			return true
		}
		r.pre--
		r.preStart = false
		if r.markdown && r.pre == 0 {
			r.newline()
			r.buf = append(r.buf, "```"...)
		}
		r.paragraph()
	case "li", "a", "xref", "ph", "span", "br", "apiinheritdoc", "adobeimage":
	default:
		return false
	}
	return true
}

func (r *renderer) atLineStart() bool {
	return len(r.buf) == 0 || r.buf[len(r.buf)-1] == '\n'
}

func (r *renderer) trimTrailing() {
	r.buf = bytes.TrimRight(r.buf, " \t")
}

func (r *renderer) newline() {
	r.trimTrailing()
	if !r.atLineStart() {
		r.buf = append(r.buf, '\n')
	}
}

func (r *renderer) paragraph() {
	r.trimTrailing()
	if len(r.buf) == 0 || bytes.HasSuffix(r.buf, []byte("\n\n")) {
		return
	}
	if r.buf[len(r.buf)-1] == '\n' {
		r.buf = append(r.buf, '\n')
		return
	}
	r.buf = append(r.buf, "\n\n"...)
}

func (r *renderer) finish() string {
	out := extraBreaks.ReplaceAllString(string(r.buf), "\n\n")
	return strings.TrimSpace(out)
}
