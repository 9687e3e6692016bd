// Package community defines the assembled community payload, the place
// item shape shared by both providers, line formatting and merging, and the
// provider capability interfaces the orchestrator selects between.
package community

import (
	"maps"
	"time"

	"github.com/rotisserie/eris"
)

// NoneFound is the rendered text of a category with no results.
const NoneFound = "None found"

// ErrNoContent reports that a provider has nothing to show for a request.
// Callers must not fall back to another provider on this error.
var ErrNoContent = eris.New("community: no content")

// Data is the assembled community payload: one formatted text block per
// category plus seasonal sections keyed by the header that produced them.
// Values are never mutated after construction.
type Data struct {
	Categories       map[string]string `json:"categories"`
	SeasonalSections map[string]string `json:"seasonalSections,omitempty"`
}

// NewData returns an empty payload.
func NewData() *Data {
	return &Data{Categories: map[string]string{}, SeasonalSections: map[string]string{}}
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	if d == nil {
		return NewData()
	}
	out := &Data{
		Categories:       maps.Clone(d.Categories),
		SeasonalSections: maps.Clone(d.SeasonalSections),
	}
	if out.Categories == nil {
		out.Categories = map[string]string{}
	}
	if out.SeasonalSections == nil {
		out.SeasonalSections = map[string]string{}
	}
	return out
}

// Category returns the text for key, or NoneFound.
func (d *Data) Category(key string) string {
	if d == nil {
		return NoneFound
	}
	if v, ok := d.Categories[key]; ok && v != "" {
		return v
	}
	return NoneFound
}

// HasContent reports whether any category holds real lines.
func (d *Data) HasContent() bool {
	if d == nil {
		return false
	}
	for _, v := range d.Categories {
		if v != "" && v != NoneFound {
			return true
		}
	}
	return false
}

// Citation is a web source backing a structured-text item.
type Citation struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
}

// PlaceItem is one recommendation in a structured-text payload.
type PlaceItem struct {
	Name            string     `json:"name"`
	Location        string     `json:"location,omitempty"`
	DriveMinutes    *int       `json:"drive_minutes,omitempty"`
	Dates           string     `json:"dates,omitempty"`
	Description     string     `json:"description,omitempty"`
	Cost            string     `json:"cost,omitempty"`
	WhyThisAudience string     `json:"why_suitable_for_audience,omitempty"`
	CuisineTags     []string   `json:"cuisine,omitempty"`
	Disclaimer      string     `json:"disclaimer,omitempty"`
	Citations       []Citation `json:"citations,omitempty"`
}

// CategoryPayload is a cached structured-text result for one category.
type CategoryPayload struct {
	Provider  string      `json:"provider"`
	Category  string      `json:"category"`
	Audience  string      `json:"audience,omitempty"`
	Zip       string      `json:"zip"`
	City      string      `json:"city"`
	State     string      `json:"state"`
	FetchedAt time.Time   `json:"fetched_at"`
	Items     []PlaceItem `json:"items"`
	Citations []Citation  `json:"citations,omitempty"`
}

// Names returns the item names in order.
func (p *CategoryPayload) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.Name)
	}
	return out
}

// AudienceDelta maps augmentable categories to audience-specific text.
type AudienceDelta map[string]string
