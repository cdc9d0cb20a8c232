package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

func newRecommendCommand() *cobra.Command {
	var jobRole string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Get recommendations for improving your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			query := url.Values{"job_role": {jobRole}}
			var recs []entities.Recommendation
			if err := apiGet(cmd.Context(), cliCtx, "/api/analysis/recommendations", query, &recs); err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No recommendations; your profile looks good.")
				return nil
			}

			var md strings.Builder
			md.WriteString("# Recommendations\n\n")
			for _, rec := range recs {
				fmt.Fprintf(&md, "%d. **%s** %s\n", rec.ID, rec.Category, rec.Text)
			}
			return printMarkdown(md.String())
		},
	}

	cmd.Flags().StringVar(&jobRole, "role", "", "Target job role (required)")
	cmd.MarkFlagRequired("role")

	return cmd
}
