package scoring

import (
	"fmt"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

// defaultRecommendations is served when the profile gives us nothing specific
// to say.
var defaultRecommendations = []entities.Recommendation{
	{ID: 1, Text: "Create more public repositories to showcase your skills.", Category: "general"},
	{ID: 2, Text: "Add detailed README files to your projects.", Category: "documentation"},
	{ID: 3, Text: "Contribute to open-source projects related to your target job role.", Category: "community"},
	{ID: 4, Text: "Add topics and descriptions to your repositories.", Category: "metadata"},
	{ID: 5, Text: "Increase your GitHub activity with regular commits.", Category: "activity"},
}

// Recommend produces up to five recommendations tailored to the profile and
// role. When the profile data supports fewer than five specific suggestions,
// the defaults fill the remainder.
func Recommend(user *entities.User, analyses []entities.RepositoryAnalysis, jobRole string) []entities.Recommendation {
	role, known := RoleFor(jobRole)

	var recs []entities.Recommendation
	add := func(text, category string) {
		recs = append(recs, entities.Recommendation{
			ID:       len(recs) + 1,
			Text:     text,
			Category: category,
		})
	}

	if user.PublicRepos < 5 {
		add("Create more public repositories to showcase your skills.", "general")
	}

	undocumented := 0
	untagged := 0
	for _, a := range analyses {
		if a.Description == "" {
			undocumented++
		}
		if len(a.Topics) == 0 {
			untagged++
		}
	}
	if undocumented > 0 {
		add(fmt.Sprintf("Add descriptions to %d of your repositories so visitors understand them at a glance.", undocumented), "documentation")
	}
	if untagged > 0 {
		add(fmt.Sprintf("Tag %d of your repositories with topics to make them discoverable.", untagged), "metadata")
	}

	if known && len(role.Languages) > 0 && languageFitBelow(role, analyses, 40) {
		add(fmt.Sprintf("Build a project in a language core to the %s role to strengthen your fit.", role.Title), "language")
	}

	if user.Followers < 10 {
		add("Contribute to open-source projects related to your target job role.", "community")
	}

	stale := 0
	for _, a := range analyses {
		if a.PushedAt == nil {
			stale++
		}
	}
	if stale > 0 && stale == len(analyses) && len(analyses) > 0 {
		add("Increase your GitHub activity with regular commits.", "activity")
	}

	// Top up from the defaults, skipping categories already covered.
	if len(recs) < 5 {
		covered := make(map[string]bool, len(recs))
		for _, r := range recs {
			covered[r.Category] = true
		}
		for _, d := range defaultRecommendations {
			if len(recs) >= 5 {
				break
			}
			if covered[d.Category] {
				continue
			}
			add(d.Text, d.Category)
		}
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func languageFitBelow(role RoleProfile, analyses []entities.RepositoryAnalysis, threshold int) bool {
	return scoreLanguageFit(role, analyses) < threshold
}
