// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/refminer/internal/store"
	"github.com/pdiddy/refminer/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded acquisitions, or the matches of one article",
	Long: `History reads the database given by --db. Without --refid it lists the
most recent acquisitions, newest first, with the number of matches
recorded for each article. With --refid it prints that article's mined
matches, optionally filtered by --term.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", store.DefaultHistoryLimit, "maximum number of acquisitions listed")
	historyCmd.Flags().String("refid", "", "print the recorded matches of this article")
	historyCmd.Flags().String("term", "", "only matches whose term contains this text")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	if dbPath == "" {
		return fmt.Errorf("--db is required")
	}
	s, err := store.NewStore(types.StoreConfig{Path: dbPath})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	refID, _ := cmd.Flags().GetString("refid")

	if refID != "" {
		term, _ := cmd.Flags().GetString("term")
		matches, err := s.Matches(ctx, refID, term)
		if err != nil {
			return err
		}
		if jsonOutput {
			return encodeJSON(os.Stdout, matches)
		}
		formatMatches(os.Stdout, matches)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := s.History(ctx, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(os.Stdout, entries)
	}
	formatHistory(os.Stdout, entries)
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatHistory(w io.Writer, entries []store.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No acquisitions recorded.")
		return
	}
	fmt.Fprintf(w, "%-20s  %-10s  %-8s  %-20s  %-7s  %s\n",
		"Recorded", "RefID", "Status", "Source", "Matches", "Path / Message")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		detail := e.Path
		if e.Status != types.StatusSuccess {
			detail = e.Message
		}
		fmt.Fprintf(w, "%-20s  %-10s  %-8s  %-20s  %-7d  %s\n",
			e.RecordedAt.Format("2006-01-02 15:04:05"), e.RefID, e.Status,
			truncate(e.Source, 20), e.Matches, detail)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
}

func formatMatches(w io.Writer, matches []types.MinedMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches recorded.")
		return
	}
	fmt.Fprintf(w, "%-20s  %-30s  %s\n", "Term", "File", "Context")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, m := range matches {
		fmt.Fprintf(w, "%-20s  %-30s  %s\n", truncate(m.Term, 20), truncate(m.File, 30), m.Context)
	}
	fmt.Fprintf(w, "\n%d matches\n", len(matches))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
