package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect [flags] text...",
	Short: "Classify strings by writing script",
	Long:  `Detect reports the language code and confidence for each argument`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	detectCmd.Flags().Int("sample", 0, "significant characters to inspect (default from lipi.toml or 6)")
}

type detection struct {
	Text  string  `json:"text"`
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	s, err := resolveSettings()
	if err != nil {
		return err
	}
	if sample, _ := cmd.Flags().GetInt("sample"); sample > 0 {
		s.sampleChars = sample
	}
	det, err := s.detector()
	if err != nil {
		return err
	}

	results := make([]detection, len(args))
	for i, text := range args {
		r := det.Detect(text)
		results[i] = detection{Text: text, Code: string(r.Code), Score: r.Score}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "pretty":
		codeColor := color.New(color.FgCyan, color.Bold)
		if !colorEnabled(cmd, os.Stdout) {
			codeColor.DisableColor()
		}
		for _, d := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f\n", d.Text, codeColor.Sprint(d.Code), d.Score)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
