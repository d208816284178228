// Package richtext converts rich-text editor documents to HTML and plain
// text, and builds documents from plain text.
package richtext

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"diagnote/internal/domain"
)

// RenderHTML renders doc the way the editor would serialise it. A "doc"
// root renders its children only. Unknown node types render their
// children in place.
func RenderHTML(doc domain.Document) (string, error) {
	root := &html.Node{Type: html.DocumentNode}
	if doc.Type == domain.NodeDoc || doc.Type == "" {
		appendChildren(root, doc.Content)
	} else {
		appendNode(root, doc)
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render %s: %w", c.Data, err)
		}
	}
	return buf.String(), nil
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func appendChildren(parent *html.Node, nodes []domain.Document) {
	for _, n := range nodes {
		appendNode(parent, n)
	}
}

func appendNode(parent *html.Node, n domain.Document) {
	switch n.Type {
	case domain.NodeText:
		parent.AppendChild(wrapMarks(&html.Node{Type: html.TextNode, Data: n.Text}, n.Marks))
		return
	case domain.NodeHardBreak:
		parent.AppendChild(element("br"))
		return
	case domain.NodeHorizontalRule:
		parent.AppendChild(element("hr"))
		return
	case domain.NodeImage:
		var attrs []html.Attribute
		if src := safeSrc(n.AttrString("src")); src != "" {
			attrs = append(attrs, html.Attribute{Key: "src", Val: src})
		}
		for _, key := range []string{"alt", "title"} {
			if v := n.AttrString(key); v != "" {
				attrs = append(attrs, html.Attribute{Key: key, Val: v})
			}
		}
		parent.AppendChild(element("img", attrs...))
		return
	case domain.NodeCodeBlock:
		code := element("code")
		if lang := n.AttrString("language"); lang != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
		}
		appendChildren(code, n.Content)
		pre := element("pre")
		pre.AppendChild(code)
		parent.AppendChild(pre)
		return
	}

	tag := blockTag(n)
	if tag == "" {
		appendChildren(parent, n.Content)
		return
	}
	el := element(tag)
	if n.Type == domain.NodeOrderedList {
		if start, ok := n.AttrInt("start"); ok && start != 1 {
			el.Attr = append(el.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(start)})
		}
	}
	appendChildren(el, n.Content)
	parent.AppendChild(el)
}

func blockTag(n domain.Document) string {
	switch n.Type {
	case domain.NodeParagraph:
		return "p"
	case domain.NodeHeading:
		level, _ := n.AttrInt("level")
		if level < 1 || level > 6 {
			level = 1
		}
		return "h" + strconv.Itoa(level)
	case domain.NodeBulletList:
		return "ul"
	case domain.NodeOrderedList:
		return "ol"
	case domain.NodeListItem:
		return "li"
	case domain.NodeBlockquote:
		return "blockquote"
	}
	return ""
}

// wrapMarks nests text inside one element per mark, first mark outermost.
func wrapMarks(text *html.Node, marks []domain.Mark) *html.Node {
	inner := text
	for i := len(marks) - 1; i >= 0; i-- {
		el := markElement(marks[i])
		if el == nil {
			continue
		}
		el.AppendChild(inner)
		inner = el
	}
	return inner
}

func markElement(m domain.Mark) *html.Node {
	switch m.Type {
	case domain.MarkBold:
		return element("strong")
	case domain.MarkItalic:
		return element("em")
	case domain.MarkUnderline:
		return element("u")
	case domain.MarkStrike:
		return element("s")
	case domain.MarkCode:
		return element("code")
	case domain.MarkLink:
		var attrs []html.Attribute
		if href, _ := m.Attrs["href"].(string); safeHref(href) != "" {
			attrs = append(attrs, html.Attribute{Key: "href", Val: href})
		}
		if target, _ := m.Attrs["target"].(string); target != "" {
			attrs = append(attrs, html.Attribute{Key: "target", Val: target})
		}
		return element("a", attrs...)
	}
	return nil
}
