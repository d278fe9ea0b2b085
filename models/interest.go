package models

import (
	"sort"
	"strings"

	"github.com/travel-point/api-go/utils"
)

// InterestRule ties a group of interest keywords to the OSM tag values that
// satisfy them.
type InterestRule struct {
	Interests []string
	Key       string
	Values    []string
}

// InterestRules drives both the recommendation SQL prefilter and scoring.
var InterestRules = []InterestRule{
	{Interests: []string{"hiking", "mountain", "peak"}, Key: "natural", Values: []string{"peak"}},
	{Interests: []string{"hiking", "mountain", "peak"}, Key: "highway", Values: []string{"path"}},
	{Interests: []string{"hiking", "mountain", "peak"}, Key: "hiking", Values: []string{"yes"}},
	{Interests: []string{"beach"}, Key: "natural", Values: []string{"beach"}},
	{Interests: []string{"museum", "history", "art"}, Key: "tourism", Values: []string{"museum", "gallery"}},
	{Interests: []string{"castle", "history"}, Key: "historic", Values: []string{"castle", "ruins"}},
	{Interests: []string{"restaurant", "food"}, Key: "amenity", Values: []string{"restaurant", "food_court"}},
	{Interests: []string{"cafe"}, Key: "amenity", Values: []string{"cafe"}},
	{Interests: []string{"bar", "pub", "nightlife"}, Key: "amenity", Values: []string{"bar", "pub", "nightclub"}},
	{Interests: []string{"park", "nature"}, Key: "leisure", Values: []string{"park", "nature_reserve"}},
}

// MinNameInterestLen is the shortest interest used for name matching in SQL.
const MinNameInterestLen = 3

func (r InterestRule) triggeredBy(interest string) bool {
	for _, i := range r.Interests {
		if i == interest {
			return true
		}
	}
	return false
}

func (r InterestRule) matches(tags utils.Tags) bool {
	v, ok := tags.Get(r.Key)
	if !ok {
		return false
	}
	for _, want := range r.Values {
		if v == want {
			return true
		}
	}
	return false
}

// NormalizeInterests lowercases, trims, dedupes and sorts interests.
func NormalizeInterests(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, i := range raw {
		i = strings.ToLower(strings.TrimSpace(i))
		if i == "" {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Strings(out)
	return out
}

// RulesForInterests returns the rules triggered by any of interests, in table order.
func RulesForInterests(interests []string) []InterestRule {
	var out []InterestRule
	for _, r := range InterestRules {
		for _, i := range interests {
			if r.triggeredBy(i) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Filterable reports whether interests can narrow a query at all: some tag
// rule fires or some interest is long enough for name matching.
func Filterable(interests []string) bool {
	if len(RulesForInterests(interests)) > 0 {
		return true
	}
	for _, i := range interests {
		if len(i) >= MinNameInterestLen {
			return true
		}
	}
	return false
}

// MatchesInterest reports whether a place satisfies one interest, either by a
// case-insensitive name substring or by a known tag association.
func MatchesInterest(interest, name string, tags utils.Tags) bool {
	if interest == "" {
		return false
	}
	if strings.Contains(strings.ToLower(name), interest) {
		return true
	}
	for _, r := range InterestRules {
		if r.triggeredBy(interest) && r.matches(tags) {
			return true
		}
	}
	return false
}
