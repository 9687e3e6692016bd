package seasonal

import "time"

// pack maps a category key to seasonal query headers.
type pack map[string][]string

var holidayPacks = map[time.Month]pack{
	time.January: {
		"fitness_wellness": {"new year fitness classes"},
		"events":           {"martin luther king jr day events"},
	},
	time.February: {
		"dining":    {"romantic valentine's day dinner"},
		"events":    {"mardi gras celebrations"},
		"nightlife": {"valentine's day cocktail bar"},
		"shopping":  {"valentine's day gift shops"},
	},
	time.March: {
		"nightlife": {"st patrick's day pub"},
		"events":    {"st patrick's day parade"},
	},
	time.April: {
		"family_activities": {"easter egg hunt"},
		"parks_outdoors":    {"spring wildflower viewing"},
	},
	time.May: {
		"dining": {"mother's day brunch"},
		"events": {"memorial day weekend events"},
	},
	time.June: {
		"events":            {"juneteenth celebrations"},
		"family_activities": {"summer camps for kids"},
		"dining":            {"father's day brunch"},
	},
	time.July: {
		"events":         {"fourth of july fireworks"},
		"parks_outdoors": {"fourth of july picnic spots"},
	},
	time.August: {
		"shopping":  {"back to school shopping"},
		"education": {"back to school events"},
	},
	time.September: {
		"events":    {"labor day weekend events"},
		"nightlife": {"oktoberfest beer garden"},
	},
	time.October: {
		"family_activities": {"pumpkin patch", "haunted house"},
		"events":            {"halloween festival"},
	},
	time.November: {
		"dining":   {"thanksgiving dinner restaurants"},
		"shopping": {"holiday craft fair"},
	},
	time.December: {
		"family_activities": {"holiday light displays"},
		"events":            {"holiday markets", "new year's eve celebrations"},
		"arts_culture":      {"nutcracker ballet performance"},
	},
}

var regionalPacks = map[Region]map[season]pack{
	RegionPacificNorthwest: {
		summer: {"parks_outdoors": {"alpine lake hikes"}},
		fall:   {"dining": {"seasonal mushroom menu"}, "parks_outdoors": {"fall foliage hikes"}},
		winter: {"parks_outdoors": {"snowshoe trails"}},
	},
	RegionMountain: {
		winter: {"parks_outdoors": {"ski resorts"}, "entertainment": {"apres ski bar"}},
		summer: {"parks_outdoors": {"mountain biking trails"}},
		fall:   {"parks_outdoors": {"aspen leaf viewing"}},
	},
	RegionDesertSouthwest: {
		winter: {"parks_outdoors": {"desert hiking trails"}},
		summer: {"family_activities": {"indoor water park"}},
		spring: {"parks_outdoors": {"desert wildflower bloom"}},
	},
	RegionGulfCoast: {
		summer: {"parks_outdoors": {"swimming holes"}, "family_activities": {"splash pad"}},
		spring: {"events": {"crawfish boil"}, "parks_outdoors": {"bluebonnet fields"}},
		fall:   {"events": {"fall music festival"}},
	},
	RegionAtlanticSouth: {
		summer: {"parks_outdoors": {"beach access"}},
		spring: {"parks_outdoors": {"azalea gardens"}},
		fall:   {"dining": {"oyster roast"}},
	},
	RegionMidAtlantic: {
		summer: {"dining": {"crab shack"}},
		fall:   {"family_activities": {"apple picking orchard"}},
		winter: {"family_activities": {"ice skating rink"}},
	},
	RegionNewEngland: {
		fall:   {"parks_outdoors": {"fall foliage drives"}, "family_activities": {"apple picking orchard"}},
		winter: {"parks_outdoors": {"cross country skiing"}},
		summer: {"dining": {"lobster shack"}},
	},
	RegionGreatLakes: {
		summer: {"parks_outdoors": {"lakefront beaches"}},
		winter: {"family_activities": {"ice skating rink"}},
		fall:   {"family_activities": {"corn maze"}},
	},
	RegionCalifornia: {
		spring: {"parks_outdoors": {"wildflower super bloom"}},
		summer: {"parks_outdoors": {"beach bonfire spots"}},
		fall:   {"dining": {"wine harvest dinners"}},
	},
	RegionHawaii: {
		winter: {"parks_outdoors": {"whale watching tours"}},
		summer: {"events": {"hula festival"}},
	},
	RegionAlaska: {
		winter: {"parks_outdoors": {"northern lights viewing"}},
		summer: {"parks_outdoors": {"glacier tours"}},
	},
}

// Candidates returns the union of the holiday and regional headers for a
// category in month.
func Candidates(category string, region Region, month time.Month) []string {
	var out []string
	out = append(out, holidayPacks[month][category]...)
	out = append(out, regionalPacks[region][seasonOf(month)][category]...)
	return out
}
