package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/utils"
)

// MaxRelevanceScore is split evenly between proximity and interest matches.
const MaxRelevanceScore = 10.0

// ScoreRecommendation rates one candidate. distanceKm may be +Inf when the
// place has no usable coordinates, which contributes no proximity bonus.
// interests must already be normalized. Reasons are nil when nothing matched.
func ScoreRecommendation(name string, tags utils.Tags, distanceKm, radiusKm float64, interests []string) (float64, []string) {
	half := MaxRelevanceScore / 2

	var (
		score   float64
		reasons []string
	)

	if radiusKm > 0 && !math.IsInf(distanceKm, 0) && !math.IsNaN(distanceKm) {
		bonus := math.Max(0, 1-distanceKm/radiusKm) * half
		if bonus > 0 {
			score += bonus
			reasons = append(reasons, fmt.Sprintf("Nearby (%.1fkm)", distanceKm))
		}
	}

	if len(interests) > 0 {
		per := half / float64(len(interests))
		var matched []string
		for _, i := range interests {
			if models.MatchesInterest(i, name, tags) {
				score += per
				matched = append(matched, i)
			}
		}
		if len(matched) > 0 {
			reasons = append(reasons, "Matches interests: "+strings.Join(matched, ", "))
		}
	}

	return utils.Round(math.Min(score, MaxRelevanceScore), 2), reasons
}
