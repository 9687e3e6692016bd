package places

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/community-cli/internal/community"
)

var printer = message.NewPrinter(language.English)

// formatPlace renders "- Name — 4.7★ (1,204 reviews); address; summary".
func formatPlace(sp ScoredPlace) string {
	var rating string
	if sp.Rating > 0 {
		rating = fmt.Sprintf("%.1f★", sp.Rating)
		if sp.Reviews > 0 {
			rating += printer.Sprintf(" (%d reviews)", sp.Reviews)
		}
	}
	return community.Line(sp.Name, rating, shortAddress(sp.Address), sp.Summary)
}

// shortAddress drops the trailing ", USA" country suffix.
func shortAddress(addr string) string {
	return strings.TrimSuffix(strings.TrimSpace(addr), ", USA")
}

func formatPlaces(places []ScoredPlace) []string {
	out := make([]string, 0, len(places))
	for _, sp := range places {
		out = append(out, formatPlace(sp))
	}
	return out
}
