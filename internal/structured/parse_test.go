package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"items":[]}`, `{"items":[]}`},
		{"json fence", "```json\n{\"items\":[]}\n```", `{"items":[]}`},
		{"bare fence", "```\n{\"items\":[]}\n```", `{"items":[]}`},
		{"prose", "Here you go:\n{\"items\":[]}\nEnjoy!", `{"items":[]}`},
		{"array", "Sure: [{\"name\":\"A\"}]", `[{"name":"A"}]`},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}

func TestParseItems(t *testing.T) {
	items, err := parseItems(`{"items":[
		{"name":"  Hyde Park ","location":"North"},
		{"name":""},
		{"name":"hyde park","location":"dup"},
		{"name":"Zilker","drive_minutes":12,"cuisine":["bbq"]}
	]}`, "parks_outdoors", "Austin")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Hyde Park", items[0].Name)
	require.NotNil(t, items[1].DriveMinutes)
	assert.Equal(t, 12, *items[1].DriveMinutes)
	assert.Equal(t, []string{"bbq"}, items[1].CuisineTags)
}

func TestParseItems_CityNameOnlyDroppedForNeighborhoods(t *testing.T) {
	text := `[{"name":"AUSTIN"},{"name":"Clarksville"}]`

	items, err := parseItems(text, "neighborhoods", "Austin")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Clarksville", items[0].Name)

	items, err = parseItems(text, "arts_culture", "Austin")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestParseItems_Invalid(t *testing.T) {
	_, err := parseItems("no json here", "dining", "Austin")
	assert.Error(t, err)

	_, err = parseItems("", "dining", "Austin")
	assert.EqualError(t, err, "structured: empty response")
}
