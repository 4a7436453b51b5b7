// Package asdoc models ASDoc comments: a free-text description followed by
// named tags such as @param and @return. Comments are parsed lazily; nothing
// but the raw text is available until Compile has run.
package asdoc

import (
	"slices"
	"strings"
)

// ParamTag is the tag carrying parameter descriptions.
const ParamTag = "param"

// Tag is a single tagged entry of a comment.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Comment is a structured ASDoc comment.
//
// A Comment is not safe for concurrent use. Indexes hand out a fresh Comment
// per lookup so callers can compile it with whatever markup flag they need.
type Comment struct {
	raw string

	compiled    bool
	markdown    bool
	description string
	tags        map[string][]Tag
	order       []string
}

// New returns an uncompiled comment over raw.
func New(raw string) *Comment {
	return &Comment{raw: raw}
}

// Raw returns the text the comment was created from.
func (c *Comment) Raw() string {
	return c.raw
}

// Compiled reports whether Compile has run.
func (c *Comment) Compiled() bool {
	return c.compiled
}

// Markdown reports the markup flag of the last Compile.
func (c *Comment) Markdown() bool {
	return c.markdown
}

// Compile parses the raw text and renders the description and every tag
// either as Markdown or as plain text. Compiling twice with the same flag is
// a no-op; changing the flag re-renders.
func (c *Comment) Compile(useMarkdown bool) {
	if c.compiled && c.markdown == useMarkdown {
		return
	}

	desc, blocks := split(c.raw)

	c.description = render(desc, useMarkdown)
	c.tags = make(map[string][]Tag, len(blocks))
	c.order = nil
	for _, b := range blocks {
		if _, seen := c.tags[b.name]; !seen {
			c.order = append(c.order, b.name)
		}
		c.tags[b.name] = append(c.tags[b.name], Tag{
			Name:        b.name,
			Description: render(b.text, useMarkdown),
		})
	}

	c.compiled = true
	c.markdown = useMarkdown
}

// Description returns the rendered summary. It reports false before Compile
// and when the comment has no free text.
func (c *Comment) Description() (string, bool) {
	if !c.compiled || c.description == "" {
		return "", false
	}
	return c.description, true
}

// TagsByName returns the tags called name in declaration order, or nil.
func (c *Comment) TagsByName(name string) []Tag {
	if !c.compiled {
		return nil
	}
	tags, ok := c.tags[name]
	if !ok {
		return nil
	}
	return slices.Clone(tags)
}

// TagNames returns the distinct tag names in order of first appearance.
func (c *Comment) TagNames() []string {
	if !c.compiled {
		return nil
	}
	return slices.Clone(c.order)
}

// ParamDescription returns the description of parameter name. The first
// @param entry whose description starts with name followed by one space
// matches, and the prefix is stripped. Matching is an exact prefix: a tab
// separator or a different case does not match.
func (c *Comment) ParamDescription(name string) (string, bool) {
	if !c.compiled || name == "" {
		return "", false
	}
	prefix := name + " "
	for _, tag := range c.tags[ParamTag] {
		if strings.HasPrefix(tag.Description, prefix) {
			return tag.Description[len(prefix):], true
		}
	}
	return "", false
}

type block struct {
	name string
	text string
}

// split separates the description from the tag blocks. Comment delimiters and
// the leading "*" decoration of each line are removed.
func split(raw string) (string, []block) {
	body := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	body = strings.TrimPrefix(body, "/**")
	body = strings.TrimSuffix(body, "*/")

	var desc []string
	var blocks []block
	for _, line := range strings.Split(body, "\n") {
		line = undecorate(line)
		if name, rest, ok := tagLine(line); ok {
			blocks = append(blocks, block{name: name, text: rest})
			continue
		}
		if len(blocks) == 0 {
			desc = append(desc, line)
			continue
		}
		last := &blocks[len(blocks)-1]
		last.text += "\n" + line
	}
	return strings.Join(desc, "\n"), blocks
}

func undecorate(line string) string {
	line = strings.TrimLeft(line, " \t")
	if strings.HasPrefix(line, "*") {
		line = line[1:]
		line = strings.TrimPrefix(line, " ")
	}
	return strings.TrimRight(line, " \t\r")
}

// tagLine recognises "@name rest". A bare "@" or "@ text" is plain text.
func tagLine(line string) (name, rest string, ok bool) {
	if !strings.HasPrefix(line, "@") {
		return "", "", false
	}
	end := 1
	for end < len(line) && isTagNameByte(line[end]) {
		end++
	}
	if end == 1 {
		return "", "", false
	}
	return line[1:end], strings.TrimLeft(line[end:], " \t"), true
}

func isTagNameByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
