package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travel-point/api-go/utils"
)

func TestNormalizeInterests(t *testing.T) {
	got := NormalizeInterests([]string{" Museum", "cafe", "", "museum", "CAFE ", "art"})
	assert.Equal(t, []string{"art", "cafe", "museum"}, got)
	assert.Empty(t, NormalizeInterests(nil))
}

func TestRulesForInterests(t *testing.T) {
	rules := RulesForInterests([]string{"history"})
	keys := make([]string, 0, len(rules))
	for _, r := range rules {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"tourism", "historic"}, keys)

	assert.Len(t, RulesForInterests([]string{"hiking"}), 3)
	assert.Empty(t, RulesForInterests([]string{"shop"}))
}

func TestFilterable(t *testing.T) {
	assert.True(t, Filterable([]string{"castle"}))
	assert.True(t, Filterable([]string{"xy", "pub"}))
	assert.False(t, Filterable([]string{"xy", "zz"}))
	assert.False(t, Filterable(nil))
}

func TestMatchesInterest(t *testing.T) {
	tests := []struct {
		name     string
		interest string
		place    string
		tags     utils.Tags
		want     bool
	}{
		{"name substring", "castle", "Bran Castle", nil, true},
		{"tag association", "museum", "Louvre", utils.Tags{"tourism": "museum"}, true},
		{"history via ruins", "history", "Old Walls", utils.Tags{"historic": "ruins"}, true},
		{"peak for hiking", "hiking", "Mont Blanc", utils.Tags{"natural": "peak"}, true},
		{"wrong value", "cafe", "Blue Bar", utils.Tags{"amenity": "bar"}, false},
		{"no tags", "beach", "Harbour", nil, false},
		{"empty interest", "", "Anything", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesInterest(tt.interest, tt.place, tt.tags))
		})
	}
}
