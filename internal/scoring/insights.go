package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// Insights derives short observations about a repository from its metadata.
// The output is stable for the same input.
func Insights(a entities.RepositoryAnalysis, now time.Time) []string {
	var insights []string

	if lang, share := dominantLanguage(a.Languages); lang != "" {
		insights = append(insights, fmt.Sprintf("Primarily written in %s (%d%% of the codebase).", lang, share))
	}

	switch {
	case a.Metrics.Stars >= 100:
		insights = append(insights, fmt.Sprintf("Strong community interest with %d stars.", a.Metrics.Stars))
	case a.Metrics.Stars >= 10:
		insights = append(insights, fmt.Sprintf("Gaining traction with %d stars.", a.Metrics.Stars))
	}

	if a.Metrics.Forks > 0 {
		insights = append(insights, fmt.Sprintf("Forked %d times, a sign others build on this work.", a.Metrics.Forks))
	}

	if a.Description == "" {
		insights = append(insights, "No description set; a short summary would help visitors.")
	}

	if len(a.Topics) == 0 {
		insights = append(insights, "No topics set; tagging improves discoverability.")
	}

	if a.PushedAt != nil {
		age := now.Sub(*a.PushedAt)
		switch {
		case age < 30*24*time.Hour:
			insights = append(insights, "Actively maintained with pushes in the last month.")
		case age > 365*24*time.Hour:
			insights = append(insights, "No pushes in over a year; consider archiving or reviving it.")
		}
	}

	return insights
}

// dominantLanguage returns the language with the most bytes and its share of
// the total, or empty when there is no language data.
func dominantLanguage(languages map[string]int64) (string, int) {
	if len(languages) == 0 {
		return "", 0
	}

	names := make([]string, 0, len(languages))
	var total int64
	for name, bytes := range languages {
		names = append(names, name)
		total += bytes
	}
	// Stable winner when byte counts tie.
	sort.Strings(names)

	best := ""
	var bestBytes int64 = -1
	for _, name := range names {
		if languages[name] > bestBytes {
			best = name
			bestBytes = languages[name]
		}
	}
	if total == 0 {
		return "", 0
	}
	return best, int(bestBytes * 100 / total)
}
