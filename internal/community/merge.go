package community

// MergeLines places delta lines ahead of base lines, drops lines whose
// MergeKey was already seen and truncates to limit. A non-positive limit
// keeps everything.
func MergeLines(delta, base []string, limit int) []string {
	seen := make(map[string]bool, len(delta)+len(base))
	var out []string
	for _, list := range [][]string{delta, base} {
		for _, l := range list {
			k := MergeKey(l)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, l)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ApplyAudienceDelta returns a new payload where each delta category with
// content is merged ahead of the base lines. Categories with an empty delta
// keep their base text. base is not modified.
func ApplyAudienceDelta(base *Data, delta AudienceDelta, limits map[string]int) *Data {
	out := base.Clone()
	for cat, text := range delta {
		lines := SplitList(text)
		if len(lines) == 0 {
			continue
		}
		merged := MergeLines(lines, SplitList(out.Categories[cat]), limits[cat])
		out.Categories[cat] = FormatList(merged)
	}
	return out
}
