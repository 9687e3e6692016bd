// Package catalog holds the community category catalog: display limits,
// baseline queries, quality thresholds, audience query variants and the
// chain-name blacklist.
package catalog

import (
	_ "embed"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Defaults are applied to categories that leave a field unset.
type Defaults struct {
	DisplayLimit      int     `yaml:"display_limit"`
	MinRating         float64 `yaml:"min_rating"`
	MinReviews        int     `yaml:"min_reviews"`
	MinPrimaryResults int     `yaml:"min_primary_results"`
	FallbackTarget    int     `yaml:"fallback_target"`
}

// QueryRule overrides quality thresholds for queries containing Match.
type QueryRule struct {
	Match      string   `yaml:"match"`
	MinRating  *float64 `yaml:"min_rating,omitempty"`
	MinReviews *int     `yaml:"min_reviews,omitempty"`
}

// Category describes one community category.
type Category struct {
	Key               string      `yaml:"key"`
	Label             string      `yaml:"label"`
	DisplayLimit      int         `yaml:"display_limit"`
	MinRating         *float64    `yaml:"min_rating,omitempty"`
	MinReviews        *int        `yaml:"min_reviews,omitempty"`
	MinPrimaryResults int         `yaml:"min_primary_results"`
	Queries           []string    `yaml:"queries"`
	QueryRules        []QueryRule `yaml:"query_rules"`
	SingleAnchor      bool        `yaml:"single_anchor"`
	Augmentable       bool        `yaml:"augmentable"`
	SkipChainFilter   bool        `yaml:"skip_chain_filter"`
	RejectTerms       []string    `yaml:"reject_terms"`
}

// Thresholds returns the minimum rating and review count for query.
func (c *Category) Thresholds(query string) (minRating float64, minReviews int) {
	if c.MinRating != nil {
		minRating = *c.MinRating
	}
	if c.MinReviews != nil {
		minReviews = *c.MinReviews
	}
	q := strings.ToLower(query)
	for _, r := range c.QueryRules {
		if !strings.Contains(q, strings.ToLower(r.Match)) {
			continue
		}
		if r.MinRating != nil {
			minRating = *r.MinRating
		}
		if r.MinReviews != nil {
			minReviews = *r.MinReviews
		}
	}
	return minRating, minReviews
}

// IsNeighborhoods reports whether generic-name rejection applies instead of
// chain filtering.
func (c *Category) IsNeighborhoods() bool {
	return len(c.RejectTerms) > 0 || c.Key == "neighborhoods"
}

// Audience is a buyer persona with per-category query variants.
type Audience struct {
	Key     string              `yaml:"key"`
	Label   string              `yaml:"label"`
	Queries map[string][]string `yaml:"queries"`
}

// Catalog is the full category catalog.
type Catalog struct {
	Defaults       Defaults   `yaml:"defaults"`
	Categories     []Category `yaml:"categories"`
	Audiences      []Audience `yaml:"audiences"`
	ChainBlacklist []string   `yaml:"chain_blacklist"`

	chains *regexp.Regexp
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from path, or returns the embedded catalog when path
// is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var wrapper struct {
		Catalog Catalog `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "catalog: parse")
	}

	c := &wrapper.Catalog
	if len(c.Categories) == 0 {
		return nil, eris.New("catalog: no categories defined")
	}

	seen := make(map[string]bool, len(c.Categories))
	for i := range c.Categories {
		cat := &c.Categories[i]
		if cat.Key == "" {
			return nil, eris.Errorf("catalog: category %d has no key", i)
		}
		if seen[cat.Key] {
			return nil, eris.Errorf("catalog: duplicate category %q", cat.Key)
		}
		seen[cat.Key] = true
		if len(cat.Queries) == 0 {
			return nil, eris.Errorf("catalog: category %q has no queries", cat.Key)
		}
		c.applyDefaults(cat)
	}
	for _, a := range c.Audiences {
		for key := range a.Queries {
			if !seen[key] {
				return nil, eris.Errorf("catalog: audience %q references unknown category %q", a.Key, key)
			}
		}
	}

	c.chains = compileChains(c.ChainBlacklist)
	return c, nil
}

func (c *Catalog) applyDefaults(cat *Category) {
	if cat.Label == "" {
		cat.Label = cat.Key
	}
	if cat.DisplayLimit <= 0 {
		cat.DisplayLimit = c.Defaults.DisplayLimit
	}
	if cat.MinRating == nil {
		v := c.Defaults.MinRating
		cat.MinRating = &v
	}
	if cat.MinReviews == nil {
		v := c.Defaults.MinReviews
		cat.MinReviews = &v
	}
	if cat.MinPrimaryResults <= 0 {
		cat.MinPrimaryResults = c.Defaults.MinPrimaryResults
	}
}

// compileChains builds a word-boundary matcher for the blacklist.
func compileChains(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(n))))
	}
	return regexp.MustCompile(`(^|[^a-z0-9])(` + strings.Join(quoted, "|") + `)($|[^a-z0-9])`)
}

// IsChain reports whether name matches the chain blacklist.
func (c *Catalog) IsChain(name string) bool {
	if c.chains == nil {
		return false
	}
	n := strings.ToLower(strings.ReplaceAll(name, "’", "'"))
	return c.chains.MatchString(n)
}

// Category returns the category with key.
func (c *Catalog) Category(key string) (*Category, bool) {
	for i := range c.Categories {
		if c.Categories[i].Key == key {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

// Keys returns category keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		keys = append(keys, cat.Key)
	}
	return keys
}

// Augmentable returns the categories that audience deltas may fill.
func (c *Catalog) Augmentable() []*Category {
	var out []*Category
	for i := range c.Categories {
		if c.Categories[i].Augmentable {
			out = append(out, &c.Categories[i])
		}
	}
	return out
}

// DisplayLimits maps each category key to its display limit.
func (c *Catalog) DisplayLimits() map[string]int {
	out := make(map[string]int, len(c.Categories))
	for _, cat := range c.Categories {
		out[cat.Key] = cat.DisplayLimit
	}
	return out
}

// Audience returns the audience with key.
func (c *Catalog) Audience(key string) (*Audience, bool) {
	for i := range c.Audiences {
		if c.Audiences[i].Key == key {
			return &c.Audiences[i], true
		}
	}
	return nil, false
}

// AudienceLabel returns the audience's display label, or key when unknown.
func (c *Catalog) AudienceLabel(key string) string {
	if a, ok := c.Audience(key); ok && a.Label != "" {
		return a.Label
	}
	return strings.ReplaceAll(key, "_", " ")
}

// AudienceQueries returns the audience-specific variants for category,
// padded with the category's baseline queries up to the fallback target.
func (c *Catalog) AudienceQueries(audience, category string) []string {
	cat, ok := c.Category(category)
	if !ok {
		return nil
	}

	var out []string
	if a, ok := c.Audience(audience); ok {
		out = slices.Clone(a.Queries[category])
	}

	target := max(c.Defaults.FallbackTarget, len(out))
	for _, q := range cat.Queries {
		if len(out) >= target {
			break
		}
		if !slices.ContainsFunc(out, func(s string) bool { return strings.EqualFold(s, q) }) {
			out = append(out, q)
		}
	}
	return out
}
