package cli

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [REPOSITORY]",
		Short: "Analyze your recent repositories",
		Long: `Fetch and analyze your recent GitHub repositories.

With no arguments, analyzes your ten most recently updated repositories.
With a repository name, shows the detailed analysis for that one repository.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			if len(args) == 1 {
				var analysis entities.RepositoryAnalysis
				path := "/api/analysis/repository/" + url.PathEscape(args[0])
				if err := apiGet(cmd.Context(), cliCtx, path, nil, &analysis); err != nil {
					return err
				}
				return printMarkdown(renderAnalysis(analysis, true))
			}

			var analyses []entities.RepositoryAnalysis
			if err := apiGet(cmd.Context(), cliCtx, "/api/analysis/repositories", nil, &analyses); err != nil {
				return err
			}
			if len(analyses) == 0 {
				fmt.Println("No repositories to analyze.")
				return nil
			}

			var md strings.Builder
			md.WriteString("# Repository Analysis\n\n")
			for _, a := range analyses {
				md.WriteString(renderAnalysis(a, false))
			}
			return printMarkdown(md.String())
		},
	}
}

// renderAnalysis formats one repository analysis as markdown
func renderAnalysis(a entities.RepositoryAnalysis, detailed bool) string {
	var md strings.Builder

	fmt.Fprintf(&md, "## %s\n\n", a.FullName)
	if a.Description != "" {
		fmt.Fprintf(&md, "%s\n\n", a.Description)
	}
	fmt.Fprintf(&md, "Stars: **%d** | Forks: **%d** | Open issues: **%d**\n\n",
		a.Metrics.Stars, a.Metrics.Forks, a.Metrics.Issues)

	if len(a.Languages) > 0 {
		fmt.Fprintf(&md, "Languages: %s\n\n", formatLanguages(a.Languages))
	}
	if len(a.Topics) > 0 {
		fmt.Fprintf(&md, "Topics: %s\n\n", strings.Join(a.Topics, ", "))
	}

	if detailed || len(a.Insights) > 0 {
		for _, insight := range a.Insights {
			fmt.Fprintf(&md, "- %s\n", insight)
		}
		md.WriteString("\n")
	}

	return md.String()
}

// formatLanguages lists languages largest first
func formatLanguages(langs map[string]int64) string {
	type langSize struct {
		name string
		size int64
	}
	sorted := make([]langSize, 0, len(langs))
	for name, size := range langs {
		sorted = append(sorted, langSize{name, size})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].size != sorted[j].size {
			return sorted[i].size > sorted[j].size
		}
		return sorted[i].name < sorted[j].name
	})

	names := make([]string, len(sorted))
	for i, l := range sorted {
		names[i] = l.name
	}
	return strings.Join(names, ", ")
}
