package community

import (
	"strconv"
	"strings"

	"github.com/sells-group/community-cli/internal/geo"
)

// FormatList renders lines as a bulleted block, or NoneFound when empty.
func FormatList(lines []string) string {
	var kept []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, bullet(l))
		}
	}
	if len(kept) == 0 {
		return NoneFound
	}
	return strings.Join(kept, "\n")
}

// SplitList is the inverse of FormatList. NoneFound yields no lines.
func SplitList(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" || text == NoneFound {
		return nil
	}
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func bullet(l string) string {
	if strings.HasPrefix(l, "- ") {
		return l
	}
	return "- " + strings.TrimLeft(l, "-•* ")
}

// Line renders a name with optional detail as "- Name — detail".
func Line(name string, details ...string) string {
	var parts []string
	for _, d := range details {
		if d = strings.TrimSpace(d); d != "" {
			parts = append(parts, d)
		}
	}
	if len(parts) == 0 {
		return "- " + name
	}
	return "- " + name + " — " + strings.Join(parts, "; ")
}

// ItemLine renders a structured-text item.
func ItemLine(it PlaceItem) string {
	var details []string
	if it.Location != "" {
		details = append(details, it.Location)
	}
	if it.DriveMinutes != nil && *it.DriveMinutes > 0 {
		details = append(details, strconv.Itoa(*it.DriveMinutes)+" min drive")
	}
	if it.Dates != "" {
		details = append(details, it.Dates)
	}
	if it.Description != "" {
		details = append(details, it.Description)
	}
	if it.Cost != "" {
		details = append(details, it.Cost)
	}
	if it.WhyThisAudience != "" {
		details = append(details, it.WhyThisAudience)
	}
	if it.Disclaimer != "" {
		details = append(details, it.Disclaimer)
	}
	return Line(it.Name, details...)
}

// MergeKey normalizes a formatted line to its name: the bullet and any
// trailing em-dash commentary are removed, then case and accents folded.
func MergeKey(line string) string {
	l := strings.TrimSpace(line)
	l = strings.TrimLeft(l, "-•* ")
	if i := strings.Index(l, "—"); i >= 0 {
		l = l[:i]
	}
	return geo.Fold(l)
}
