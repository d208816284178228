package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"diagnote/internal/canvas"
	"diagnote/internal/domain"
	"diagnote/internal/richtext"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// splitList accepts "a,b,c" or a JSON array of strings.
func splitList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(strings.TrimSpace(t), "[") {
			if parseJSON(t, &out) == nil {
				return out
			}
		}
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// parsePoints accepts a JSON array of {"x","y"} objects or of [x, y]
// pairs.
func parsePoints(raw string) ([]canvas.Point, error) {
	var pts []canvas.Point
	if err := parseJSON(raw, &pts); err == nil {
		return pts, nil
	}
	var pairs [][2]float64
	if err := parseJSON(raw, &pairs); err != nil {
		return nil, fmt.Errorf("points must be a JSON array of {x,y} or [x,y]: %w", err)
	}
	pts = make([]canvas.Point, len(pairs))
	for i, p := range pairs {
		pts[i] = canvas.Point{X: p[0], Y: p[1]}
	}
	return pts, nil
}

// documentArg builds an editor document from either "editor" (JSON) or
// "text" (plain text) arguments.
func documentArg(args map[string]any) (domain.Document, error) {
	if raw, ok := args["editor"].(string); ok && raw != "" {
		var doc domain.Document
		if err := parseJSON(raw, &doc); err != nil {
			return doc, fmt.Errorf("editor must be an editor JSON document: %w", err)
		}
		if doc.Type == "" {
			doc.Type = domain.NodeDoc
		}
		return doc, nil
	}
	if text, ok := args["text"].(string); ok {
		return richtext.FromPlainText(text), nil
	}
	return domain.Document{}, fmt.Errorf("text or editor is required")
}

// intArg reads a JSON number argument.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
