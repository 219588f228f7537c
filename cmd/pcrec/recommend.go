package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/recommender"
	"github.com/pribylovaa/pc-recommender/internal/session"
)

func (c *cli) recommendCmd() *cobra.Command {
	var (
		req     models.RecommendRequest
		explain int
		save    int
		name    string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Get PC build recommendations for a budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, err := c.session(ctx, "/", session.RequireAuth); err != nil {
				return err
			}

			resp, err := c.app.Recommender.Recommend(ctx, req)
			if errors.Is(err, recommender.ErrRecommendationFailed) && resp != nil {
				fmt.Fprintf(c.errOut, "Recommendation failed: %s\n", resp.Error)
				if len(resp.RawAIOutputOnError) > 0 {
					fmt.Fprintf(c.errOut, "Raw model output: %s\n", resp.RawAIOutputOnError)
				}
				return err
			}
			if err != nil {
				return userError(err)
			}

			printRecommendations(c.out, resp)

			if explain > 0 {
				build, err := pick(resp.Recommendations, explain)
				if err != nil {
					return err
				}

				text, err := c.app.Recommender.Explain(ctx, build, resp.SourcePromptForSaving)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(c.out, "\nWhy build %d:\n%s\n", explain, text)
			}

			if save > 0 {
				build, err := pick(resp.Recommendations, save)
				if err != nil {
					return err
				}

				spec, err := c.app.Recommender.Save(ctx, name, build, resp.SourcePromptForSaving)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(c.out, "\nSaved as #%d %q\n", spec.ID, spec.DisplayName())
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&req.Budget, "budget", 0, "total budget")
	f.StringVar(&req.Currency, "currency", "", "budget currency (backend default THB)")
	f.StringSliceVar(&req.PreferredGames, "games", nil, "games to optimise for, comma separated")
	f.StringVar(&req.DesiredCPU, "cpu", "", "preferred CPU")
	f.StringVar(&req.DesiredGPU, "gpu", "", "preferred GPU")
	f.StringVar(&req.DesiredRAM, "ram", "", "preferred RAM")
	f.StringVar(&req.DesiredStorageType, "storage-type", "", "preferred storage type")
	f.StringVar(&req.DesiredStorageSize, "storage-size", "", "preferred storage size")
	f.StringVar(&req.DesiredMotherboardChipset, "chipset", "", "preferred motherboard chipset")
	f.StringVar(&req.DesiredPSUWattage, "psu", "", "preferred PSU wattage")
	f.IntVar(&explain, "explain", 0, "explain build N of the result (1-based)")
	f.IntVar(&save, "save", 0, "save build N of the result (1-based)")
	f.StringVar(&name, "name", "", "name for the saved build")
	_ = cmd.MarkFlagRequired("budget")

	return cmd
}

func pick(builds []models.Build, n int) (models.Build, error) {
	if n < 1 || n > len(builds) {
		return models.Build{}, fmt.Errorf("build %d not found: got %d recommendations", n, len(builds))
	}

	return builds[n-1], nil
}

func printRecommendations(w io.Writer, resp *models.RecommendationResponse) {
	for i, b := range resp.Recommendations {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printBuild(w, fmt.Sprintf("%d. %s", i+1, orUnnamed(b.BuildName)), b)
	}

	if resp.AnalysisNotes != "" {
		fmt.Fprintf(w, "\n%s\n", resp.AnalysisNotes)
	}
}

func printBuild(w io.Writer, title string, b models.Build) {
	fmt.Fprintln(w, title)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, nc := range b.Components() {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", nc.Slot, nc.Component.Name, formatPrice(nc.Component.PriceTHB))
	}
	if b.TotalPriceEstimateTHB != nil {
		fmt.Fprintf(tw, "  Total\t\t%s\n", formatPrice(b.TotalPriceEstimateTHB))
	}
	_ = tw.Flush()

	if b.Notes != "" {
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(b.Notes))
	}
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}

	return fmt.Sprintf("%.0f THB", *p)
}

func orUnnamed(name string) string {
	if name == "" {
		return "Unnamed build"
	}

	return name
}
