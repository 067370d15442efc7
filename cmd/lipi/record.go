package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lipi/internal/annotate"
	"lipi/internal/dataset"
)

var recordCmd = &cobra.Command{
	Use:   "record [flags]",
	Short: "Annotate a single JSON record from stdin",
	Long: `Record reads one JSON object on stdin and prints an augmented copy
with <key>_lang fields added for every target key`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringSlice("keys", nil, "keys to annotate (default from lipi.toml)")
	recordCmd.Flags().Bool("no-cache", false, "do not persist the cache after the call")
	recordCmd.Flags().Bool("scores", false, "also emit <key>_score fields")
}

func runRecord(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}
	keys := s.columns
	if cmd.Flags().Changed("keys") {
		keys, _ = cmd.Flags().GetStringSlice("keys")
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	scores, _ := cmd.Flags().GetBool("scores")

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stdin is not a JSON object: %w", err)
	}
	rec := dataset.RowFromObject(raw)

	det, err := s.detector()
	if err != nil {
		return err
	}
	ann := annotate.New(det, s.loadCache(cmd), s.cachePath)

	out, err := ann.Record(rec, keys, annotate.Options{
		AutoCache:     !noCache,
		MinCacheScore: s.minScore,
		Scores:        scores,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
