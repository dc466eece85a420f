package cache

import (
	"strconv"
	"strings"
)

const (
	recommendationPrefix = "rec:"
	generationPrefix     = "recgen:"
)

// RecommendationKey is the cache key for one user's recommendation for a
// catalog entry in a size system, computed at history generation gen.
func RecommendationKey(userID string, gen uint64, catalogID, sizeSystem string) string {
	return strings.Join([]string{
		recommendationPrefix + userID,
		strconv.FormatUint(gen, 10),
		catalogID,
		sizeSystem,
	}, ":")
}

// UserRecommendationPrefix matches every cached recommendation for a user.
func UserRecommendationPrefix(userID string) string {
	return recommendationPrefix + userID + ":"
}

// UserGenerationKey holds the counter bumped whenever a user's shoe history
// changes. It sits outside UserRecommendationPrefix.
func UserGenerationKey(userID string) string {
	return generationPrefix + userID
}
