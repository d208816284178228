package richtext

import (
	"testing"

	"diagnote/internal/domain"
)

func text(s string, marks ...domain.Mark) domain.Document {
	return domain.Document{Type: domain.NodeText, Text: s, Marks: marks}
}

func node(typ string, attrs map[string]any, content ...domain.Document) domain.Document {
	return domain.Document{Type: typ, Attrs: attrs, Content: content}
}

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name string
		doc  domain.Document
		want string
	}{
		{
			name: "paragraph",
			doc:  domain.TextDoc("text"),
			want: "<p>text</p>",
		},
		{
			name: "empty doc",
			doc:  domain.Document{Type: domain.NodeDoc},
			want: "",
		},
		{
			name: "heading level",
			doc:  node(domain.NodeDoc, nil, node(domain.NodeHeading, map[string]any{"level": float64(2)}, text("Findings"))),
			want: "<h2>Findings</h2>",
		},
		{
			name: "heading without level",
			doc:  node(domain.NodeHeading, nil, text("x")),
			want: "<h1>x</h1>",
		},
		{
			name: "marks nest first outermost",
			doc: node(domain.NodeParagraph, nil,
				text("plain "),
				text("strong", domain.Mark{Type: domain.MarkBold}, domain.Mark{Type: domain.MarkItalic}),
			),
			want: "<p>plain <strong><em>strong</em></strong></p>",
		},
		{
			name: "link",
			doc: node(domain.NodeParagraph, nil,
				text("ref", domain.Mark{Type: domain.MarkLink, Attrs: map[string]any{"href": "https://example.test/a?b=1&c=2"}}),
			),
			want: `<p><a href="https://example.test/a?b=1&amp;c=2">ref</a></p>`,
		},
		{
			name: "script link dropped",
			doc: node(domain.NodeParagraph, nil,
				text("click", domain.Mark{Type: domain.MarkLink, Attrs: map[string]any{"href": "javascript:alert(document.cookie)"}}),
			),
			want: `<p><a>click</a></p>`,
		},
		{
			name: "unsafe image source dropped",
			doc: node(domain.NodeDoc, nil,
				node(domain.NodeImage, map[string]any{"src": "javascript:alert(1)", "alt": "scan"}),
				node(domain.NodeImage, map[string]any{"src": "data:image/png;base64,AAAA"}),
			),
			want: `<img alt="scan"/><img src="data:image/png;base64,AAAA"/>`,
		},
		{
			name: "lists",
			doc: node(domain.NodeDoc, nil,
				node(domain.NodeBulletList, nil, node(domain.NodeListItem, nil, node(domain.NodeParagraph, nil, text("a")))),
				node(domain.NodeOrderedList, map[string]any{"start": float64(3)}, node(domain.NodeListItem, nil, node(domain.NodeParagraph, nil, text("b")))),
			),
			want: `<ul><li><p>a</p></li></ul><ol start="3"><li><p>b</p></li></ol>`,
		},
		{
			name: "void elements",
			doc: node(domain.NodeDoc, nil,
				node(domain.NodeParagraph, nil, text("a"), node(domain.NodeHardBreak, nil), text("b")),
				node(domain.NodeHorizontalRule, nil),
				node(domain.NodeImage, map[string]any{"src": "x.png", "alt": "scan"}),
			),
			want: `<p>a<br/>b</p><hr/><img src="x.png" alt="scan"/>`,
		},
		{
			name: "code block",
			doc:  node(domain.NodeCodeBlock, map[string]any{"language": "go"}, text("x := 1")),
			want: `<pre><code class="language-go">x := 1</code></pre>`,
		},
		{
			name: "escapes text",
			doc:  domain.TextDoc("a < b & c"),
			want: "<p>a &lt; b &amp; c</p>",
		},
		{
			name: "unknown node renders children",
			doc:  node(domain.NodeDoc, nil, node("callout", nil, node(domain.NodeParagraph, nil, text("inside")))),
			want: "<p>inside</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderHTML(tt.doc)
			if err != nil {
				t.Fatalf("RenderHTML: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	doc := node(domain.NodeDoc, nil,
		node(domain.NodeHeading, map[string]any{"level": 1}, text("Title")),
		node(domain.NodeParagraph, nil, text("line one"), node(domain.NodeHardBreak, nil), text("line ", domain.Mark{Type: domain.MarkBold}), text("two")),
		node(domain.NodeBulletList, nil, node(domain.NodeListItem, nil, node(domain.NodeParagraph, nil, text("item")))),
	)
	want := "Title\n\nline one\nline two\n\nitem"
	if got := PlainText(doc); got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestFromPlainText(t *testing.T) {
	doc := FromPlainText("first\nsecond\r\n\r\n\n\nthird\n")
	if doc.Type != domain.NodeDoc || len(doc.Content) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	first := doc.Content[0].Content
	if len(first) != 3 || first[0].Text != "first" || first[1].Type != domain.NodeHardBreak || first[2].Text != "second" {
		t.Errorf("first paragraph = %+v", first)
	}
	if got := doc.Content[1].Content; len(got) != 1 || got[0].Text != "third" {
		t.Errorf("second paragraph = %+v", got)
	}

	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatal(err)
	}
	if html != "<p>first<br/>second</p><p>third</p>" {
		t.Errorf("html = %s", html)
	}
}

func TestFromPlainText_Empty(t *testing.T) {
	doc := FromPlainText("  \n\n")
	if len(doc.Content) != 1 || doc.Content[0].Type != domain.NodeParagraph || len(doc.Content[0].Content) != 0 {
		t.Errorf("empty text should give one empty paragraph, got %+v", doc)
	}
}

func TestPlainTextRoundTrip(t *testing.T) {
	src := "Chief complaint\n\nheadache\nsince monday\n\nplan: rest"
	if got := PlainText(FromPlainText(src)); got != src {
		t.Errorf("round trip = %q, want %q", got, src)
	}
}

func TestSafeURLs(t *testing.T) {
	tests := []struct {
		raw       string
		href, src bool
	}{
		{"https://example.test/a", true, true},
		{"HTTP://example.test/a", true, true},
		{"/notes/n1", true, true},
		{"scan.png", true, true},
		{"#findings", true, true},
		{"mailto:dr@example.test", true, false},
		{"data:image/png;base64,AAAA", false, true},
		{"data:text/html,<script>x</script>", false, false},
		{"javascript:alert(1)", false, false},
		{"JavaScript:alert(1)", false, false},
		{" javascript:alert(1)", false, false},
		{"java\tscript:alert(1)", false, false},
		{"vbscript:x", false, false},
		{"file:///etc/passwd", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := safeHref(tt.raw) != ""; got != tt.href {
			t.Errorf("safeHref(%q) allowed = %v, want %v", tt.raw, got, tt.href)
		}
		if got := safeSrc(tt.raw) != ""; got != tt.src {
			t.Errorf("safeSrc(%q) allowed = %v, want %v", tt.raw, got, tt.src)
		}
	}
}
