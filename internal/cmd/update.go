package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"motorsportcal/internal/config"
	"motorsportcal/internal/fetch"
	"motorsportcal/internal/merge"
	"motorsportcal/internal/model"
	"motorsportcal/internal/pipeline"
	"motorsportcal/internal/schedule"
	"motorsportcal/internal/series"
	"motorsportcal/internal/store"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Fetch every enabled series and update the stored calendars",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runUpdate(cmd, cfg)
		},
	}
}

func runUpdate(cmd *cobra.Command, cfg *config.Config) error {
	providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	pl := pipeline.New(store.New(cfg.Output), merge.Strategy(cfg.MergeStrategy))
	results, err := pl.Run(cmd.Context(), providers, targetYear(cfg))

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Error: %v\n", r.Series, r.Err)
		case r.Updated:
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Updated\n", r.Series)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] No changes\n", r.Series)
		}
	}

	return err
}

// buildProviders assembles one provider per enabled series. Scraped pages
// optionally go through the rendered fetcher; feeds and APIs always use
// plain HTTP.
func buildProviders(cfg *config.Config) ([]series.Provider, error) {
	httpFetcher := fetch.NewHTTPFetcher(cfg.FetchTimeout)

	var scrapeFetcher fetch.Fetcher = httpFetcher
	if cfg.FetchMode == config.FetchRendered {
		scrapeFetcher = fetch.NewRenderedFetcher(cfg.FetchTimeout)
	}

	var providers []series.Provider
	for _, s := range model.AllSeries() {
		sc := cfg.SeriesFor(s)
		if sc.Disabled {
			continue
		}
		policy := schedule.ConfirmPolicy{ByRecency: sc.ConfirmByRecency}

		switch s {
		case model.SeriesFormula1:
			if cfg.Formula1CalendarURL == "" {
				return nil, errors.New("formula1 calendar URL is required (--formula1-calendar-url)")
			}
			providers = append(providers,
				series.NewFormula1(httpFetcher, cfg.Formula1CalendarURL, policy))
		case model.SeriesWRC:
			if sc.Provider == "results" {
				providers = append(providers,
					series.NewWRCResults(scrapeFetcher, "", cfg.ScrapeTimezone, policy))
			} else {
				providers = append(providers,
					series.NewWRC(httpFetcher, "", "", policy))
			}
		case model.SeriesWEC:
			providers = append(providers,
				series.NewWEC(httpFetcher, "", policy))
		}
	}
	return providers, nil
}
