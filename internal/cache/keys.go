package cache

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/sells-group/community-cli/internal/geo"
)

// Scope identifies the location part of a key: the zip plus, when known,
// the resolved state and city.
type Scope struct {
	Zip   string
	State string
	City  string
}

func (s Scope) String() string {
	if s.State == "" || s.City == "" {
		return s.Zip
	}
	return s.Zip + ":" + strings.ToLower(s.State) + ":" + geo.Slug(s.City)
}

// Keys builds fully qualified cache keys under a prefix. LLM artifacts
// live under <prefix>:perplexity:<scope> whichever backend produced them;
// place-search artifacts live under :pool, :place and :places.
type Keys struct {
	Prefix string
}

// Pool is <prefix>:pool:<scope>:<category>[:<audience>][:sa:<hash>].
func (k Keys) Pool(s Scope, category, audience, saHash string) string {
	key := k.Prefix + ":pool:" + s.String() + ":" + category
	if audience != "" {
		key += ":" + audience
	}
	return withServiceArea(key, saHash)
}

// Place is <prefix>:place:<placeID>.
func (k Keys) Place(placeID string) string {
	return k.Prefix + ":place:" + placeID
}

// structuredBase is <prefix>:perplexity:<scope>.
func (k Keys) structuredBase(s Scope) string {
	return k.Prefix + ":perplexity:" + s.String()
}

// Category is <prefix>:perplexity:<scope>:cat:<category>[:aud:<audience>][:sa:<hash>].
func (k Keys) Category(s Scope, category, audience, saHash string) string {
	key := k.structuredBase(s) + ":cat:" + category
	if audience != "" {
		key += ":aud:" + audience
	}
	return withServiceArea(key, saHash)
}

// MonthlyEvents is <prefix>:perplexity:<scope>:things_to_do:<monthKey>[:aud:<audience>].
func (k Keys) MonthlyEvents(s Scope, monthKey, audience string) string {
	key := k.structuredBase(s) + ":things_to_do:" + monthKey
	if audience != "" {
		key += ":aud:" + audience
	}
	return key
}

// AudienceDelta is <prefix>:places:<scope>:aud:<audience>:cat:<category>[:sa:<hash>].
func (k Keys) AudienceDelta(s Scope, audience, category, saHash string) string {
	return withServiceArea(k.Prefix+":places:"+s.String()+":aud:"+audience+":cat:"+category, saHash)
}

// CityDescription is <prefix>:citydesc:<STATE>:<city-slug>.
func (k Keys) CityDescription(state, city string) string {
	return k.Prefix + ":citydesc:" + strings.ToUpper(state) + ":" + geo.Slug(city)
}

// Rotation is <prefix>:rotation:<userID>.
func (k Keys) Rotation(userID string) string {
	return k.Prefix + ":rotation:" + userID
}

func withServiceArea(key, saHash string) string {
	if saHash == "" {
		return key
	}
	return key + ":sa:" + saHash
}

// ServiceAreaHash returns a stable signature for a set of service areas,
// independent of order, case and spacing. It is empty for no areas.
func ServiceAreaHash(areas []string) string {
	var norm []string
	for _, a := range areas {
		if f := geo.Fold(a); f != "" {
			norm = append(norm, f)
		}
	}
	if len(norm) == 0 {
		return ""
	}
	slices.Sort(norm)
	norm = slices.Compact(norm)
	return strconv.FormatUint(xxhash.Sum64String(strings.Join(norm, "|")), 36)
}
