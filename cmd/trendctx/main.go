// trendctx — trend-context pipeline for content generation.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/trendctx/internal/aggregate"
	"github.com/seenimoa/trendctx/internal/config"
	"github.com/seenimoa/trendctx/internal/content"
	"github.com/seenimoa/trendctx/internal/score"
	"github.com/seenimoa/trendctx/internal/source"
	"github.com/seenimoa/trendctx/internal/source/coinmarketcap"
	"github.com/seenimoa/trendctx/internal/source/rss"
	"github.com/seenimoa/trendctx/internal/source/static"
	"github.com/seenimoa/trendctx/internal/validate"
	"github.com/seenimoa/trendctx/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trendctx",
	Short: "trendctx — trend-context pipeline for content generation",
	Long: `trendctx ingests raw trend signals from pluggable sources, scores and
validates them, and emits a canonical ranked trend-context list ready
for downstream content generation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(sourcesCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trendctx %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Trends Command ---

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Aggregate, filter, and rank current trends",
	RunE: func(cmd *cobra.Command, args []string) error {
		minScore, _ := cmd.Flags().GetFloat64("min-score")
		if !cmd.Flags().Changed("min-score") {
			minScore = cfg.Pipeline.MinScore
		}
		categoryNames, _ := cmd.Flags().GetStringSlice("category")
		asJSON, _ := cmd.Flags().GetBool("json")

		var categories []models.Category
		for _, name := range categoryNames {
			cat, ok := models.ParseCategory(name)
			if !ok {
				return fmt.Errorf("unknown category %q", name)
			}
			categories = append(categories, cat)
		}

		agg, err := buildAggregator(cfg)
		if err != nil {
			return err
		}

		contexts := agg.Aggregate(cmd.Context())
		for _, srcErr := range agg.Errors() {
			fmt.Fprintf(os.Stderr, "warning: %v\n", srcErr)
		}

		contexts = aggregate.Filter(contexts, minScore, categories...)
		contexts = aggregate.Build(contexts, cfg.Pipeline.MaxTrends)

		if asJSON {
			out, err := json.MarshalIndent(contexts, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		if len(contexts) == 0 {
			fmt.Println("No trends passed the pipeline.")
			return nil
		}
		for i, tc := range contexts {
			fmt.Printf("%2d. %-40s %6.1f  %s  [%s]\n",
				i+1, tc.Topic, tc.RelevanceScore, tc.Category, tc.Source)
		}
		return nil
	},
}

func init() {
	trendsCmd.Flags().Float64("min-score", aggregate.DefaultMinScore, "minimum relevance score (0 disables)")
	trendsCmd.Flags().StringSlice("category", nil, "restrict to categories (repeatable)")
	trendsCmd.Flags().Bool("json", false, "emit JSON instead of a table")
}

// --- Generate Command ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate trend-infused content",
	RunE: func(cmd *cobra.Command, args []string) error {
		contentType, _ := cmd.Flags().GetString("type")
		maxTrends, _ := cmd.Flags().GetInt("max-trends")

		agg, err := buildAggregator(cfg)
		if err != nil {
			return err
		}

		contexts := agg.Aggregate(cmd.Context())
		contexts = aggregate.Filter(contexts, cfg.Pipeline.MinScore)
		contexts = aggregate.Build(contexts, cfg.Pipeline.MaxTrends)

		result := content.Generate(contexts, contentType, maxTrends)
		fmt.Println(result.Content)
		if len(result.TrendsUsed) > 0 {
			fmt.Printf("\n(trends used: %v)\n", result.TrendsUsed)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("type", content.TypeArticle, "content type: article or summary")
	generateCmd.Flags().Int("max-trends", 3, "maximum trends worked into the content")
}

// --- Sources Command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured trend sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg, err := buildAggregator(cfg)
		if err != nil {
			return err
		}
		for _, src := range agg.Sources() {
			fmt.Println(src.Name())
		}
		return nil
	},
}

// buildAggregator assembles the pipeline from the loaded configuration.
func buildAggregator(cfg *config.Config) (*aggregate.Aggregator, error) {
	var sources []source.Adapter

	if cfg.Sources.Static.Enabled {
		sources = append(sources, static.NewDefault())
	}
	if cfg.Sources.RSS.Enabled {
		var feeds []rss.Feed
		for _, fc := range cfg.Sources.RSS.Feeds {
			feed := rss.Feed{Name: fc.Name, URL: fc.URL}
			if cat, ok := models.ParseCategory(fc.Category); ok {
				feed.Category = cat
			}
			feeds = append(feeds, feed)
		}
		sources = append(sources, rss.New("rss", feeds))
	}
	if cfg.Sources.CoinMarketCap.Enabled {
		sources = append(sources, coinmarketcap.New(cfg.Sources.CoinMarketCap.APIKey))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no trend sources enabled in configuration")
	}

	var scorer score.Scorer
	switch cfg.Scoring.Strategy {
	case "linear":
		scorer = score.Linear{Divisor: cfg.Scoring.Divisor}
	default:
		scorer = score.Log{Ceiling: cfg.Scoring.Ceiling}
	}

	return aggregate.New(sources, aggregate.Config{
		Scorer:        scorer,
		Validator:     &validate.Validator{MaxKeywords: cfg.Pipeline.MaxKeywords},
		SourceTimeout: time.Duration(cfg.Pipeline.SourceTimeoutSec) * time.Second,
		FetchLimit:    cfg.Pipeline.FetchLimit,
	}), nil
}
