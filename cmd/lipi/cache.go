package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lipi/internal/wordcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or drop the word cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and entry count",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the cache file",
	Args:  cobra.NoArgs,
	RunE:  runCacheDrop,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheDropCmd)
	cacheCmd.PersistentFlags().String("cache", "", "cache file path (default from lipi.toml or lang_cache.json)")
}

func cachePathFromFlags(cmd *cobra.Command) (string, error) {
	s, err := resolveSettings()
	if err != nil {
		return "", err
	}
	if cmd.Flags().Changed("cache") {
		path, _ := cmd.Flags().GetString("cache")
		return path, nil
	}
	return s.cachePath, nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	path, err := cachePathFromFlags(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "cache: %s\n", path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "status: not created yet")
		return nil
	}
	cache, loadErr := wordcache.Load(path)
	if loadErr != nil {
		fmt.Fprintf(out, "status: unreadable (%v)\n", loadErr)
		return nil
	}
	fmt.Fprintf(out, "entries: %d\n", cache.Len())
	return nil
}

func runCacheDrop(cmd *cobra.Command, args []string) error {
	path, err := cachePathFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", path)
	}
	return nil
}
