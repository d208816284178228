package richtext

import (
	"strings"

	"diagnote/internal/domain"
)

// PlainText flattens doc to text. Text blocks are separated by a blank
// line and hard breaks become single newlines, so FromPlainText restores
// the paragraph structure.
func PlainText(doc domain.Document) string {
	var blocks []string
	collectBlocks(doc, &blocks)
	return strings.Join(blocks, "\n\n")
}

func collectBlocks(n domain.Document, blocks *[]string) {
	switch n.Type {
	case domain.NodeParagraph, domain.NodeHeading, domain.NodeCodeBlock:
		var sb strings.Builder
		writeInline(&sb, n.Content)
		*blocks = append(*blocks, sb.String())
	case domain.NodeText:
		*blocks = append(*blocks, n.Text)
	default:
		for _, c := range n.Content {
			collectBlocks(c, blocks)
		}
	}
}

func writeInline(sb *strings.Builder, nodes []domain.Document) {
	for _, n := range nodes {
		switch n.Type {
		case domain.NodeText:
			sb.WriteString(n.Text)
		case domain.NodeHardBreak:
			sb.WriteByte('\n')
		default:
			writeInline(sb, n.Content)
		}
	}
}

// FromPlainText builds a document with one paragraph per blank-line
// separated block. Single newlines inside a block become hard breaks.
func FromPlainText(text string) domain.Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	doc := domain.Document{Type: domain.NodeDoc}

	for _, block := range strings.Split(text, "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		para := domain.Document{Type: domain.NodeParagraph}
		for i, line := range strings.Split(block, "\n") {
			if i > 0 {
				para.Content = append(para.Content, domain.Document{Type: domain.NodeHardBreak})
			}
			if line != "" {
				para.Content = append(para.Content, domain.Document{Type: domain.NodeText, Text: line})
			}
		}
		doc.Content = append(doc.Content, para)
	}

	if len(doc.Content) == 0 {
		doc.Content = []domain.Document{{Type: domain.NodeParagraph}}
	}
	return doc
}
