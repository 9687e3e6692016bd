package structured

import "encoding/json"

// itemsSchema is the response contract for category and events prompts:
// {"items": [{name, location, ...}]}.
var itemsSchema = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":                      map[string]any{"type": "string"},
					"location":                  map[string]any{"type": "string"},
					"drive_minutes":             map[string]any{"type": "integer"},
					"dates":                     map[string]any{"type": "string"},
					"description":               map[string]any{"type": "string"},
					"cost":                      map[string]any{"type": "string"},
					"why_suitable_for_audience": map[string]any{"type": "string"},
					"cuisine":                   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"disclaimer":                map[string]any{"type": "string"},
				},
				"required": []string{"name", "location", "description"},
			},
		},
	},
	"required": []string{"items"},
})

func mustSchema(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
