// Package cost estimates what outbound provider calls spend, so pool
// builds and structured completions can log their price.
package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic    map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity   PerplexityRate       `yaml:"perplexity" mapstructure:"perplexity"`
	GooglePlaces PlacesRate           `yaml:"google_places" mapstructure:"google_places"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// PerplexityRate holds Perplexity pricing: a request fee plus tokens.
type PerplexityRate struct {
	PerQuery float64              `yaml:"per_query" mapstructure:"per_query"`
	Models   map[string]ModelRate `yaml:"models" mapstructure:"models"`
}

// PlacesRate holds Google Places pricing per thousand requests.
type PlacesRate struct {
	TextSearchPerK float64 `yaml:"text_search_per_k" mapstructure:"text_search_per_k"`
	DetailsPerK    float64 `yaml:"details_per_k" mapstructure:"details_per_k"`
}

// Usage is the token consumption of one completion.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

func tokens(rate ModelRate, u Usage) float64 {
	return (float64(u.InputTokens)/1e6)*rate.Input + (float64(u.OutputTokens)/1e6)*rate.Output
}

// Claude computes the cost of an Anthropic message. Unknown models cost 0.
func (c *Calculator) Claude(model string, u Usage) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	return tokens(rate, u)
}

// Perplexity computes the cost of one chat completion. Unknown models are
// charged the request fee only.
func (c *Calculator) Perplexity(model string, u Usage) float64 {
	total := c.rates.Perplexity.PerQuery
	if rate, ok := c.rates.Perplexity.Models[model]; ok {
		total += tokens(rate, u)
	}
	return total
}

// Completion dispatches on the backend name used by structured providers.
func (c *Calculator) Completion(backend, model string, u Usage) float64 {
	switch backend {
	case "anthropic":
		return c.Claude(model, u)
	case "perplexity":
		return c.Perplexity(model, u)
	}
	return 0
}

// Places computes the cost of text searches and details lookups.
func (c *Calculator) Places(searches, details int) float64 {
	r := c.rates.GooglePlaces
	return float64(searches)/1000*r.TextSearchPerK + float64(details)/1000*r.DetailsPerK
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
			"claude-opus-4-6":            {Input: 15.00, Output: 75.00},
		},
		Perplexity: PerplexityRate{
			PerQuery: 0.005,
			Models: map[string]ModelRate{
				"sonar":     {Input: 1.00, Output: 1.00},
				"sonar-pro": {Input: 3.00, Output: 15.00},
			},
		},
		GooglePlaces: PlacesRate{TextSearchPerK: 32.00, DetailsPerK: 17.00},
	}
}
