package structured

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/geo"
)

// cleanJSON strips markdown fences and surrounding prose from a model
// answer, leaving the outermost JSON object or array.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	open, closer := "{", "}"
	if obj, arr := strings.Index(text, "{"), strings.Index(text, "["); arr >= 0 && (obj < 0 || arr < obj) {
		open, closer = "[", "]"
	}
	start := strings.Index(text, open)
	end := strings.LastIndex(text, closer)
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// parseItems decodes a model answer into place items. Items without a
// name and duplicate names are dropped. For neighborhoods, an item named
// after the city itself is dropped too.
func parseItems(text, category, city string) ([]community.PlaceItem, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.New("structured: empty response")
	}

	var items []community.PlaceItem
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
			return nil, eris.Wrap(err, "structured: decode items")
		}
	} else {
		var envelope struct {
			Items []community.PlaceItem `json:"items"`
		}
		if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
			return nil, eris.Wrap(err, "structured: decode items")
		}
		items = envelope.Items
	}

	cityKey := geo.Fold(city)
	seen := make(map[string]bool, len(items))
	out := make([]community.PlaceItem, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		key := geo.Fold(it.Name)
		if key == "" || seen[key] {
			continue
		}
		if category == "neighborhoods" && cityKey != "" && key == cityKey {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out, nil
}

func itemLines(items []community.PlaceItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, community.ItemLine(it))
	}
	return out
}
