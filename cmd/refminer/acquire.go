// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refminer/internal/acquire"
	"github.com/pdiddy/refminer/internal/store"
	"github.com/pdiddy/refminer/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultMaxTrial  = 3
	defaultUserAgent = "refminer/0.1"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire [refid [doi]]",
	Short: "Download the full text of PubMed articles",
	Long: `Acquire reads the full-text links of each PubMed article page, tries
PubMed Central first and then every publisher link in page order, and
stops at the first provider that delivers. Files land in <dest>/<refid>/
with a result.yaml describing the outcome.

Give one article as arguments, or many with --batch: a file with one
"refid [doi]" per line (blank lines and # comments are ignored).`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAcquire,
}

func init() {
	f := acquireCmd.Flags()
	f.String("batch", "", "file listing one \"refid [doi]\" per line")
	f.String("dest", "articles", "destination root; each article gets <dest>/<refid>/")
	f.Bool("allow-direct", false, "capture publisher pages in a browser when the API has no content")
	f.Int("max-trial", defaultMaxTrial, "attempts at fetching the PubMed article page")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Duration("delay", defaultDelay, "delay between consecutive articles")
	f.String("user-agent", defaultUserAgent, "User-Agent header for HTTP requests")
	f.String("email", "", "contact email sent to the NCBI ID conversion service")
	f.StringSlice("browser-flag", nil, "Chrome switch for page captures (repeatable; default --no-sandbox --headless)")
	f.Duration("settle", 0, "wait after page navigation before capture (default 10s)")
	f.String("chrome", "", "Chrome binary (default: found or downloaded by rod)")
	f.BoolP("verbose", "v", false, "print discovered links and per-provider failures")

	for key, flag := range map[string]string{
		"acquire.dest":           "dest",
		"acquire.allow_direct":   "allow-direct",
		"acquire.max_trial":      "max-trial",
		"acquire.timeout":        "timeout",
		"acquire.download_delay": "delay",
		"acquire.user_agent":     "user-agent",
		"acquire.email":          "email",
		"acquire.browser.flags":  "browser-flag",
		"acquire.browser.settle": "settle",
		"acquire.browser.bin":    "chrome",
		"acquire.verbose":        "verbose",
	} {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(acquireCmd)
}

func acquisitionConfig() types.AcquisitionConfig {
	cfg := types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("acquire.timeout"),
			UserAgent: viper.GetString("acquire.user_agent"),
		},
		Dest:          viper.GetString("acquire.dest"),
		AllowDirect:   viper.GetBool("acquire.allow_direct"),
		Email:         viper.GetString("acquire.email"),
		MaxTrial:      viper.GetInt("acquire.max_trial"),
		DownloadDelay: viper.GetDuration("acquire.download_delay"),
		Browser: types.BrowserConfig{
			SettleDelay: viper.GetDuration("acquire.browser.settle"),
			Bin:         viper.GetString("acquire.browser.bin"),
		},
		Verbose: viper.GetBool("acquire.verbose"),
	}
	if flags := viper.GetStringSlice("acquire.browser.flags"); len(flags) > 0 {
		cfg.Browser.Flags = flags
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

func runAcquire(cmd *cobra.Command, args []string) error {
	arts, err := articlesFromArgs(cmd, args)
	if err != nil {
		return err
	}

	keys, err := resolver()
	if err != nil {
		return err
	}

	a := acquire.New(acquisitionConfig(),
		acquire.WithSecrets(keys),
		acquire.WithLogger(logger),
		acquire.WithOutput(os.Stdout),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result := a.Batch(ctx, arts)

	if dbPath := viper.GetString("db"); dbPath != "" {
		s, err := store.NewStore(types.StoreConfig{Path: dbPath})
		if err != nil {
			return err
		}
		defer s.Close()
		for _, res := range result.Results {
			if err := s.Record(ctx, res); err != nil {
				logger.Warn().Err(err).Str("refid", res.RefID).Msg("history: record failed")
			}
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d article(s) failed acquisition", result.Failed)
	}
	return nil
}

func articlesFromArgs(cmd *cobra.Command, args []string) ([]acquire.Article, error) {
	batch, _ := cmd.Flags().GetString("batch")
	switch {
	case batch != "" && len(args) > 0:
		return nil, fmt.Errorf("give either an article or --batch, not both")
	case batch != "":
		f, err := os.Open(batch)
		if err != nil {
			return nil, fmt.Errorf("opening batch file: %w", err)
		}
		defer f.Close()
		return parseArticles(f)
	case len(args) == 0:
		return nil, fmt.Errorf("provide a PubMed id (and optionally its DOI) or --batch")
	}
	art := acquire.Article{RefID: args[0]}
	if len(args) > 1 {
		art.DOI = args[1]
	}
	return []acquire.Article{art}, nil
}

// parseArticles reads "refid [doi]" lines. Everything after the first
// field is the DOI, so PubMed's "doi: 10.x/y" form is accepted as is.
func parseArticles(r io.Reader) ([]acquire.Article, error) {
	var arts []acquire.Article
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		arts = append(arts, acquire.Article{RefID: fields[0], DOI: strings.Join(fields[1:], " ")})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	return arts, nil
}
