package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"motorsportcal/internal/config"
	appLog "motorsportcal/internal/log"
)

const envPrefix = "MSC"

var (
	cfgFile      string
	flagOutput   string
	flagYear     int
	flagF1URL    string
	flagStrategy string
	flagMode     string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "motorsportcal",
	Short: "Aggregates motorsport schedules into canonical per-series calendars",
	Long: `motorsportcal fetches event schedules from heterogeneous sources
(iCal feeds, JSON APIs and scraped results pages), normalizes them into a
canonical per-series, per-year event sequence and merges each run's result
with the previously stored snapshot so settled history is never regressed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		appLog.Init(flagDebug)
		if flagDebug {
			appLog.SetDebug()
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	defer appLog.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./motorsportcal.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "",
		"directory holding per-series snapshot files and the update ledger")
	rootCmd.PersistentFlags().IntVar(&flagYear, "year", 0,
		"target season year (default: current year)")
	rootCmd.PersistentFlags().StringVar(&flagF1URL, "formula1-calendar-url", "",
		"iCal feed URL for the Formula 1 season")
	rootCmd.PersistentFlags().StringVar(&flagStrategy, "merge-strategy", "",
		"snapshot merge strategy: not-ended or missed-events")
	rootCmd.PersistentFlags().StringVar(&flagMode, "fetch-mode", "",
		"retrieval mode for scraped pages: http or rendered")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"enable debug logging")

	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}

// initConfig wires environment variables into flags so every option can be
// set as MSC_<FLAG> without repeating it on the command line.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("motorsportcal")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// bindFlags applies viper values (config file and environment) to flags
// that were not set explicitly.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not set flag value for %s: %v", f.Name, err)
			}
		}
	})
}

// loadConfig reads the YAML config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("motorsportcal.yaml"); err == nil {
			path = "motorsportcal.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagYear != 0 {
		cfg.Year = flagYear
	}
	if flagF1URL != "" {
		cfg.Formula1CalendarURL = flagF1URL
	}
	if flagStrategy != "" {
		cfg.MergeStrategy = flagStrategy
	}
	if flagMode != "" {
		cfg.FetchMode = flagMode
	}
	cfg.Normalize()
	return cfg, nil
}

func targetYear(cfg *config.Config) int {
	return cfg.TargetYear(time.Now())
}
