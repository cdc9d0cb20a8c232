package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

func newScoreCommand() *cobra.Command {
	var jobRole string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score your profile against a job role",
		Long: `Score your GitHub profile against a target job role.

Examples:
  gitmax score --role "backend developer"
  gitmax score --role "data engineer"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			query := url.Values{"job_role": {jobRole}}
			var score entities.ProfileScore
			if err := apiGet(cmd.Context(), cliCtx, "/api/analysis/profile-scoring", query, &score); err != nil {
				return err
			}

			return printMarkdown(renderScore(score))
		},
	}

	cmd.Flags().StringVar(&jobRole, "role", "", "Target job role (required)")
	cmd.MarkFlagRequired("role")

	return cmd
}

// renderScore formats a profile score as markdown
func renderScore(score entities.ProfileScore) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# Profile Score: %d/100\n\n", score.OverallScore)
	fmt.Fprintf(&md, "Role: **%s**\n\n", score.JobRole)
	fmt.Fprintf(&md, "Based on %d repositories and %d followers.\n\n",
		score.RepositoriesCount, score.FollowersCount)

	md.WriteString("| Category | Score | Weight |\n")
	md.WriteString("|----------|------:|-------:|\n")
	for _, cat := range score.Categories {
		fmt.Fprintf(&md, "| %s | %d | %.0f%% |\n", cat.Name, cat.Score, cat.Weight*100)
	}
	md.WriteString("\n")

	for _, cat := range score.Categories {
		if cat.Detail != "" {
			fmt.Fprintf(&md, "- **%s**: %s\n", cat.Name, cat.Detail)
		}
	}

	return md.String()
}
