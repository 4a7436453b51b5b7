package dita

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// PackagesFile is the DITA map stored in the docs/ folder of an archive.
const PackagesFile = "packages.dita"

type richText struct {
	Inner string `xml:",innerxml"`
}

type apiParam struct {
	Name string   `xml:"apiItemName"`
	Desc richText `xml:"apiDesc"`
}

type apiPackage struct {
	ID          string          `xml:"id,attr"`
	Name        string          `xml:"apiName"`
	Classifiers []apiClassifier `xml:"apiClassifier"`
	Operations  []apiOperation  `xml:"apiOperation"`
	Values      []apiValue      `xml:"apiValue"`
}

type apiClassifier struct {
	Name         string           `xml:"apiName"`
	ShortDesc    richText         `xml:"shortdesc"`
	Desc         richText         `xml:"apiClassifierDetail>apiDesc"`
	Constructors []apiConstructor `xml:"apiConstructor"`
	Operations   []apiOperation   `xml:"apiOperation"`
	Values       []apiValue       `xml:"apiValue"`
}

type apiConstructor struct {
	Name      string     `xml:"apiName"`
	ShortDesc richText   `xml:"shortdesc"`
	Desc      richText   `xml:"apiConstructorDetail>apiDesc"`
	Params    []apiParam `xml:"apiConstructorDetail>apiConstructorDef>apiParam"`
}

type apiOperation struct {
	Name      string     `xml:"apiName"`
	ShortDesc richText   `xml:"shortdesc"`
	Desc      richText   `xml:"apiOperationDetail>apiDesc"`
	Params    []apiParam `xml:"apiOperationDetail>apiOperationDef>apiParam"`
	Return    richText   `xml:"apiOperationDetail>apiOperationDef>apiReturn>apiDesc"`
}

type apiValue struct {
	Name      string   `xml:"apiName"`
	ShortDesc richText `xml:"shortdesc"`
	Desc      richText `xml:"apiValueDetail>apiDesc"`
}

// Parse reads the DITA document name from fsys. Packages defined inline are
// indexed directly; <topicref href> entries are followed relative to the
// document. Referenced topics that are missing are skipped, since archives
// are often built with partial documentation.
func Parse(fsys fs.FS, name string) (*List, error) {
	p := &parser{
		fsys:    fsys,
		entries: make(map[string]string),
		seen:    map[string]bool{name: true},
	}

	if err := p.file(name); err != nil {
		return nil, err
	}
	for len(p.queue) > 0 {
		topic := p.queue[0]
		p.queue = p.queue[1:]
		if err := p.file(topic); err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
				continue
			}
			return nil, err
		}
	}
	return &List{entries: p.entries}, nil
}

type parser struct {
	fsys    fs.FS
	entries map[string]string
	seen    map[string]bool
	queue   []string
}

func (p *parser) file(name string) error {
	f, err := p.fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := p.decode(name, f); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (p *parser) decode(name string, r io.Reader) error {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "apiPackage":
			var pkg apiPackage
			if err := dec.DecodeElement(&pkg, &se); err != nil {
				return err
			}
			p.addPackage(&pkg)
		case "topicref":
			for _, attr := range se.Attr {
				if attr.Name.Local == "href" {
					p.enqueue(name, attr.Value)
				}
			}
		}
	}
}

func (p *parser) enqueue(from, href string) {
	href, _, _ = strings.Cut(href, "#")
	if href == "" || strings.Contains(href, "://") {
		return
	}
	topic := path.Join(path.Dir(from), href)
	if p.seen[topic] {
		return
	}
	p.seen[topic] = true
	p.queue = append(p.queue, topic)
}

func (p *parser) add(prefix, name, raw string) {
	if name == "" {
		return
	}
	qualifiedName := prefix + name
	// Getter/setter pairs share a name; the first definition wins.
	if _, exists := p.entries[qualifiedName]; exists {
		return
	}
	p.entries[qualifiedName] = raw
}

func (p *parser) addPackage(pkg *apiPackage) {
	prefix := packagePrefix(pkg)

	for _, op := range pkg.Operations {
		p.add(prefix, op.Name, operationComment(&op))
	}
	for _, v := range pkg.Values {
		p.add(prefix, v.Name, synthesize(describe(v.Desc, v.ShortDesc), nil, ""))
	}
	for _, c := range pkg.Classifiers {
		if c.Name == "" {
			continue
		}
		p.add(prefix, c.Name, synthesize(describe(c.Desc, c.ShortDesc), nil, ""))
		member := prefix + c.Name + "."
		for _, ctor := range c.Constructors {
			name := ctor.Name
			if name == "" {
				name = c.Name
			}
			p.add(member, name, synthesize(describe(ctor.Desc, ctor.ShortDesc), ctor.Params, ""))
		}
		for _, op := range c.Operations {
			p.add(member, op.Name, operationComment(&op))
		}
		for _, v := range c.Values {
			p.add(member, v.Name, synthesize(describe(v.Desc, v.ShortDesc), nil, ""))
		}
	}
}

// packagePrefix returns "pkg." or "" for the top-level package, which ASDoc
// emits with ids such as "globalClassifier" and the name "Top Level".
func packagePrefix(pkg *apiPackage) string {
	if strings.HasPrefix(pkg.ID, "global") {
		return ""
	}
	name := strings.TrimSpace(pkg.Name)
	if name == "" {
		name = pkg.ID
	}
	if name == "" || name == "Top Level" {
		return ""
	}
	return name + "."
}

func operationComment(op *apiOperation) string {
	return synthesize(describe(op.Desc, op.ShortDesc), op.Params, clean(op.Return.Inner))
}

func describe(desc, short richText) string {
	if text := clean(desc.Inner); text != "" {
		return text
	}
	return clean(short.Inner)
}

var cdata = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)

// clean escapes CDATA sections so the HTML tokenizer used during rendering
// sees their content as text.
func clean(inner string) string {
	inner = cdata.ReplaceAllStringFunc(inner, func(m string) string {
		return html.EscapeString(cdata.FindStringSubmatch(m)[1])
	})
	return strings.TrimSpace(inner)
}

// synthesize writes an ASDoc comment equivalent to the DITA entry.
func synthesize(desc string, params []apiParam, ret string) string {
	var b strings.Builder
	b.WriteString("/**\n")
	writeLines(&b, desc)
	for _, param := range params {
		if param.Name == "" {
			continue
		}
		writeLines(&b, "@param "+param.Name+" "+clean(param.Desc.Inner))
	}
	if ret != "" {
		writeLines(&b, "@return "+ret)
	}
	b.WriteString(" */")
	return b.String()
}

func writeLines(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(" * ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
