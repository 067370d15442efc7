package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lipi/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lipi",
	Short: "Script and language tagging for tabular name data",
	Long: `lipi classifies short strings by writing script using Unicode
code-point ranges and bulk-annotates CSV / JSON-lines datasets
with per-field language tags`,
}

// main wires up the subcommands and global flags, then executes the
// root command; a command error exits with status 1.
func main() {
	// .env может переопределить путь к кэшу (LIPI_CACHE)
	_ = godotenv.Load()

	rootCmd.Version = version.Version

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

func showTimings(cmd *cobra.Command) bool {
	t, _ := cmd.Root().PersistentFlags().GetBool("timings")
	return t
}
