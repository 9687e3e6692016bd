package structured

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/geo"
)

const systemText = `You are a local-area researcher writing for a real estate agent's newsletter.
Only recommend real places, businesses and events that exist today and that you can verify from current web sources.
Never invent names, addresses or dates. If you are unsure a place exists, leave it out.
Every recommendation must be within a reasonable drive of the location given.
Prefer independent, locally owned businesses over national chains.
Return valid JSON matching the requested schema and nothing else.`

// categoryGuidance adds category-specific instructions.
var categoryGuidance = map[string]string{
	"dining":        "Include a cuisine list for each restaurant. Exclude fast food and national chains.",
	"coffee_cafes":  "Exclude national coffee chains.",
	"neighborhoods": "Name residential neighborhoods or districts inside or next to the city. Never return the city itself, a county, or a generic term like downtown.",
	"education":     "Include public and private schools and libraries. Do not invent ratings.",
	"events":        "Include recurring annual events and festivals with their usual dates.",
	"nightlife":     "Exclude national chains.",
}

func locationLine(loc *geo.Location) string {
	if loc.County != "" {
		return fmt.Sprintf("%s, %s (%s County)", loc.City, loc.State, loc.County)
	}
	return loc.City + ", " + loc.State
}

// categoryPrompt builds the user prompt for one category.
func categoryPrompt(cat *catalog.Category, loc *geo.Location, zip, audienceLabel string, serviceAreas, avoid []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "List up to %d of the best %s near %s, zip code %s.\n", cat.DisplayLimit, strings.ToLower(cat.Label), locationLine(loc), zip)
	if len(serviceAreas) > 0 {
		fmt.Fprintf(&b, "The agent also serves: %s. Favor places convenient to those areas too.\n", strings.Join(serviceAreas, "; "))
	}
	if audienceLabel != "" {
		fmt.Fprintf(&b, "The readers are %s. For each item, explain in why_suitable_for_audience why it suits them.\n", audienceLabel)
	}
	b.WriteString("Search ideas: " + strings.Join(cat.Queries, ", ") + ".\n")
	if g := categoryGuidance[cat.Key]; g != "" {
		b.WriteString(g + "\n")
	}
	if len(avoid) > 0 {
		b.WriteString("Avoid recommending these names, which were featured recently: " + strings.Join(avoid, "; ") + ".\n")
	}
	b.WriteString("For each item give the name, the neighborhood or street location, an estimated drive time in minutes from the zip code, and a one-sentence description.")
	return b.String()
}

// eventsPrompt builds the user prompt for the monthly things-to-do list.
func eventsPrompt(loc *geo.Location, zip string, month time.Time, audienceLabel string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "List up to %d things to do near %s, zip code %s, during %s.\n", limit, locationLine(loc), zip, month.Format("January 2006"))
	b.WriteString("Focus on events, festivals, markets and seasonal activities that actually take place that month. Give the dates for each one and the cost when known.\n")
	if audienceLabel != "" {
		fmt.Fprintf(&b, "The readers are %s. Explain in why_suitable_for_audience why each item suits them.\n", audienceLabel)
	}
	b.WriteString("If a date is not yet confirmed, say so in the disclaimer field.")
	return b.String()
}
