package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lipi/internal/annotate"
	"lipi/internal/dataset"
	"lipi/internal/observ"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [flags] path",
	Short: "Annotate a dataset with language codes",
	Long: `Annotate adds a <column>_lang companion column to the target columns
of a CSV / JSON-lines file, or of every such file under a folder`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringSlice("cols", nil, "columns to annotate (default from lipi.toml)")
	annotateCmd.Flags().String("out", "", "output path (default <input>_lang.<ext>; ignored for folders)")
	annotateCmd.Flags().String("cache", "", "cache file path (default from lipi.toml or lang_cache.json)")
	annotateCmd.Flags().Int("sample", 0, "significant characters to inspect per cell")
	annotateCmd.Flags().Float64("threshold", 0, "min confidence for a result to enter the cache file")
	annotateCmd.Flags().Bool("no-cache", false, "do not persist the cache after the run")
	annotateCmd.Flags().Int("chunk", 0, "rows per batch for huge inputs (0 = whole file)")
	annotateCmd.Flags().Bool("scores", false, "also emit <column>_score columns")
	annotateCmd.Flags().Bool("no-ui", false, "disable the progress UI")
}

type annotateJob struct {
	in  string
	out string
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	timer := observ.NewTimer()

	s, err := resolveSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cols") {
		s.columns, _ = cmd.Flags().GetStringSlice("cols")
	}
	if cmd.Flags().Changed("cache") {
		s.cachePath, _ = cmd.Flags().GetString("cache")
	}
	if cmd.Flags().Changed("threshold") {
		s.minScore, _ = cmd.Flags().GetFloat64("threshold")
	}
	if sample, _ := cmd.Flags().GetInt("sample"); sample > 0 {
		s.sampleChars = sample
	}
	if chunk, _ := cmd.Flags().GetInt("chunk"); chunk > 0 {
		s.chunkSize = chunk
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	scores, _ := cmd.Flags().GetBool("scores")
	noUI, _ := cmd.Flags().GetBool("no-ui")

	det, err := s.detector()
	if err != nil {
		return err
	}

	loadPhase := timer.Begin("load")
	cache := s.loadCache(cmd)
	timer.End(loadPhase, fmt.Sprintf("%d cached words", cache.Len()))

	ann := annotate.New(det, cache, s.cachePath)
	opts := annotate.Options{
		MinCacheScore: s.minScore,
		ChunkSize:     s.chunkSize,
		Scores:        scores,
	}

	jobs, err := collectJobs(cmd, args[0])
	if err != nil {
		return err
	}

	files := make([]string, len(jobs))
	for i, j := range jobs {
		files[i] = j.in
	}

	work := func(events annotate.EventSink) (annotate.Stats, error) {
		var mu sync.Mutex
		var total annotate.Stats
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(runtime.NumCPU())
		for _, j := range jobs {
			j := j
			g.Go(func() error {
				src, err := dataset.Open(j.in, opts.ChunkSize)
				if err != nil {
					return err
				}
				defer src.Close()
				sink, err := dataset.Create(j.out)
				if err != nil {
					return err
				}
				st, err := ann.Stream(ctx, j.in, src, sink, s.columns, opts, events)
				if err != nil {
					sink.Close()
					return fmt.Errorf("%s: %w", j.in, err)
				}
				if err := sink.Close(); err != nil {
					return fmt.Errorf("%s: %w", j.out, err)
				}
				mu.Lock()
				total.Add(st)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return total, err
		}
		return total, nil
	}

	annotatePhase := timer.Begin("annotate")
	var stats annotate.Stats
	if !noUI && !quiet(cmd) && isTerminal(os.Stdout) {
		stats, err = runAnnotateWithUI(fmt.Sprintf("annotating %d file(s)", len(jobs)), files, work)
	} else {
		stats, err = work(nil)
	}
	timer.End(annotatePhase, fmt.Sprintf("%d rows", stats.Rows))
	if err != nil {
		return err
	}

	if !noCache {
		flushPhase := timer.Begin("flush")
		err := ann.FlushCache()
		timer.End(flushPhase, s.cachePath)
		if err != nil {
			return err
		}
	}

	if !quiet(cmd) {
		printAnnotateSummary(cmd, jobs, stats)
	}
	if showTimings(cmd) {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

// collectJobs expands a folder into one job per annotatable file.
func collectJobs(cmd *cobra.Command, path string) ([]annotateJob, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = dataset.OutputPath(path)
		}
		return []annotateJob{{in: path, out: out}}, nil
	}
	files, err := dataset.ListFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no .csv or .jsonl files found", path)
	}
	jobs := make([]annotateJob, len(files))
	for i, f := range files {
		jobs[i] = annotateJob{in: f, out: dataset.OutputPath(f)}
	}
	return jobs, nil
}

func printAnnotateSummary(cmd *cobra.Command, jobs []annotateJob, stats annotate.Stats) {
	numColor := color.New(color.FgGreen, color.Bold)
	if !colorEnabled(cmd, os.Stdout) {
		numColor.DisableColor()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "annotated %s rows across %s file(s)\n",
		numColor.Sprintf("%d", stats.Rows), numColor.Sprintf("%d", len(jobs)))
	fmt.Fprintf(out, "distinct values %d, classified %d, cache hits %d\n",
		stats.Distinct, stats.Detected, stats.CacheHits)
	for _, j := range jobs {
		fmt.Fprintf(out, "  %s -> %s\n", j.in, j.out)
	}
}
