package domain

// Document is one node of the rich-text editor's JSON tree. A saved editor
// document is a node of type "doc" whose Content holds the block nodes.
type Document struct {
	Type    string         `json:"type,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Document     `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark is an inline formatting annotation on a text node (bold, link, ...).
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node types produced by the editor.
const (
	NodeDoc            = "doc"
	NodeParagraph      = "paragraph"
	NodeText           = "text"
	NodeHeading        = "heading"
	NodeBulletList     = "bulletList"
	NodeOrderedList    = "orderedList"
	NodeListItem       = "listItem"
	NodeBlockquote     = "blockquote"
	NodeCodeBlock      = "codeBlock"
	NodeHardBreak      = "hardBreak"
	NodeHorizontalRule = "horizontalRule"
	NodeImage          = "image"
)

// Mark types produced by the editor.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkLink      = "link"
)

// TextDoc builds a single-paragraph document holding text.
func TextDoc(text string) Document {
	return Document{
		Type: NodeDoc,
		Content: []Document{{
			Type:    NodeParagraph,
			Content: []Document{{Type: NodeText, Text: text}},
		}},
	}
}

// AttrString returns a string attribute or "" when missing.
func (d Document) AttrString(key string) string {
	s, _ := d.Attrs[key].(string)
	return s
}

// AttrInt returns a numeric attribute as int. JSON numbers decode as
// float64, so both representations are accepted.
func (d Document) AttrInt(key string) (int, bool) {
	switch v := d.Attrs[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
