package seasonal

import (
	"strings"
	"time"
)

// Region is a climate/cultural grouping of states used for regional packs.
type Region string

// Regions with their own seasonal query packs.
const (
	RegionPacificNorthwest Region = "pacific_northwest"
	RegionMountain         Region = "mountain"
	RegionDesertSouthwest  Region = "desert_southwest"
	RegionGulfCoast        Region = "gulf_coast"
	RegionAtlanticSouth    Region = "atlantic_south"
	RegionMidAtlantic      Region = "mid_atlantic"
	RegionNewEngland       Region = "new_england"
	RegionGreatLakes       Region = "great_lakes"
	RegionCalifornia       Region = "california"
	RegionHawaii           Region = "hawaii"
	RegionAlaska           Region = "alaska"
	RegionOther            Region = ""
)

var stateRegions = map[string]Region{
	"WA": RegionPacificNorthwest, "OR": RegionPacificNorthwest, "ID": RegionPacificNorthwest,
	"MT": RegionMountain, "WY": RegionMountain, "CO": RegionMountain, "UT": RegionMountain,
	"AZ": RegionDesertSouthwest, "NM": RegionDesertSouthwest, "NV": RegionDesertSouthwest,
	"TX": RegionGulfCoast, "LA": RegionGulfCoast, "MS": RegionGulfCoast, "AL": RegionGulfCoast,
	"FL": RegionAtlanticSouth, "GA": RegionAtlanticSouth, "SC": RegionAtlanticSouth, "NC": RegionAtlanticSouth,
	"VA": RegionMidAtlantic, "MD": RegionMidAtlantic, "DE": RegionMidAtlantic, "NJ": RegionMidAtlantic,
	"PA": RegionMidAtlantic, "NY": RegionMidAtlantic, "DC": RegionMidAtlantic, "WV": RegionMidAtlantic,
	"MA": RegionNewEngland, "CT": RegionNewEngland, "RI": RegionNewEngland, "VT": RegionNewEngland,
	"NH": RegionNewEngland, "ME": RegionNewEngland,
	"MI": RegionGreatLakes, "OH": RegionGreatLakes, "IN": RegionGreatLakes, "IL": RegionGreatLakes,
	"WI": RegionGreatLakes, "MN": RegionGreatLakes,
	"CA": RegionCalifornia,
	"HI": RegionHawaii,
	"AK": RegionAlaska,
}

// RegionForState classifies a two-letter state code.
func RegionForState(state string) Region {
	return stateRegions[strings.ToUpper(strings.TrimSpace(state))]
}

type season int

const (
	winter season = iota
	spring
	summer
	fall
)

func seasonOf(m time.Month) season {
	switch m {
	case time.December, time.January, time.February:
		return winter
	case time.March, time.April, time.May:
		return spring
	case time.June, time.July, time.August:
		return summer
	default:
		return fall
	}
}
