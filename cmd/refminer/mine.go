// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refminer/internal/mining"
	"github.com/pdiddy/refminer/internal/store"
	"github.com/pdiddy/refminer/pkg/types"
)

var mineCmd = &cobra.Command{
	Use:   "mine <pattern> <path>",
	Short: "Mine files for regular-expression matches with context",
	Long: `Mine scans a file or directory for matches of a regular expression and
prints them grouped by matched term and file, each with a few characters
of context. Directories are walked recursively after archives in them are
expanded in place. PDFs additionally get a <name>_extract.json page dump
and their images written under contents/.`,
	Args: cobra.ExactArgs(2),
	RunE: runMine,
}

func init() {
	f := mineCmd.Flags()
	f.String("format", "yaml", "output format: yaml or json")
	f.String("refid", "", "article id the matches are recorded under (with --db)")
	f.Int("radius", mining.DefaultRadius, "characters of context on each side of a match")
	f.Int64("max-xlsx-bytes", types.DefaultMaxSpreadsheetBytes, "skip spreadsheets larger than this")

	viper.BindPFlag("mine.context_radius", f.Lookup("radius"))
	viper.BindPFlag("mine.max_spreadsheet_bytes", f.Lookup("max-xlsx-bytes"))

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	refID, _ := cmd.Flags().GetString("refid")
	dbPath := viper.GetString("db")
	if dbPath != "" && refID == "" {
		return fmt.Errorf("--refid is required to record matches with --db")
	}

	cfg := types.MiningConfig{
		ContextRadius:       viper.GetInt("mine.context_radius"),
		MaxSpreadsheetBytes: viper.GetInt64("mine.max_spreadsheet_bytes"),
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c := types.Collector{}
	if err := mining.New(cfg, logger).MinePath(ctx, c, args[0], args[1]); err != nil {
		return err
	}

	if dbPath != "" {
		s, err := store.NewStore(types.StoreConfig{Path: dbPath})
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.RecordMatches(ctx, refID, c); err != nil {
			return err
		}
	}

	return writeCollector(os.Stdout, c, format)
}

func writeCollector(w io.Writer, c types.Collector, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
