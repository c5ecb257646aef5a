package report

import (
	"strings"

	"report_server/core/domain"
)

// TagClassifier maps a free-text diary tag to a TagType by case-insensitive
// substring match. Weather keywords take priority over activity keywords;
// anything unmatched is an experience. Keyword sets are injected from config
// so deployments can localize them without changing classification order.
type TagClassifier struct {
	weatherKeywords  []string
	activityKeywords []string
}

// NewTagClassifier builds a classifier from the given keyword sets. Keywords
// are lowered once at construction.
func NewTagClassifier(weatherKeywords, activityKeywords []string) *TagClassifier {
	return &TagClassifier{
		weatherKeywords:  lowerAll(weatherKeywords),
		activityKeywords: lowerAll(activityKeywords),
	}
}

// Classify returns the tag's type. Total and deterministic; never fails.
func (c *TagClassifier) Classify(tag string) domain.TagType {
	lowered := strings.ToLower(tag)

	for _, keyword := range c.weatherKeywords {
		if strings.Contains(lowered, keyword) {
			return domain.TagTypeWeather
		}
	}
	for _, keyword := range c.activityKeywords {
		if strings.Contains(lowered, keyword) {
			return domain.TagTypeActivity
		}
	}
	return domain.TagTypeExperience
}

func lowerAll(keywords []string) []string {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return lowered
}
