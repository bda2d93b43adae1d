package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
)

const summarySuffix = ".summary.md"

type summarizeOptions struct {
	globs       []string
	urls        []string
	write       bool
	concurrency int
	noProgress  bool
	engine      string
	singleShot  bool
	choices     summarizer.UserChoices
}

// job is one input: a local file or a remote source.
type job struct {
	name   string
	path   string
	source string
}

type result struct {
	job     job
	summary summarizer.Response
}

func addSummarizeFlags(cmd *cobra.Command, root *rootOptions) {
	opts := &summarizeOptions{}
	cmd.Args = cobra.ArbitraryArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, root, opts, args)
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.globs, "glob", "g", nil, "glob of transcript files, ** supported (repeatable)")
	flags.StringSliceVarP(&opts.urls, "url", "u", nil, "YouTube URL or video id to fetch captions for (repeatable)")
	flags.BoolVarP(&opts.write, "write", "w", false, "write <name>"+summarySuffix+" next to each input instead of printing")
	flags.IntVarP(&opts.concurrency, "concurrency", "j", 2, "number of inputs summarized at once")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")
	flags.StringVarP(&opts.engine, "engine", "e", "", "generation engine (openai, ollama, gemini); default from config")
	flags.BoolVar(&opts.singleShot, "single-shot", false, "send the whole transcript in one prompt")
	flags.StringVarP(&opts.choices.Language, "language", "l", "", "summary language")
	flags.StringVar(&opts.choices.DetailLevel, "detail", "", "short, medium or detailed")
	flags.StringVar(&opts.choices.SummaryType, "type", "", "full, tools or insights")
	flags.StringVar(&opts.choices.Style, "style", "", "bullet, text or mixed")
	flags.StringVar(&opts.choices.AddEmojis, "emojis", "", "yes or no")
	flags.StringVar(&opts.choices.AddTables, "tables", "", "yes or no")
	flags.StringVar(&opts.choices.SpecificInstructions, "instructions", "", "extra instructions appended to the prompt")
}

func runSummarize(cmd *cobra.Command, root *rootOptions, opts *summarizeOptions, args []string) error {
	jobs, err := collectJobs(args, opts.globs, opts.urls)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return cmd.Help()
	}

	svc, _, log, err := newService(root)
	if err != nil {
		return err
	}

	var progress *chunkProgress
	if !opts.noProgress {
		progress = newChunkProgress(cmd.ErrOrStderr())
	}

	ctx := cmd.Context()

	results := make([]result, len(jobs))
	var g errgroup.Group
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}
	for i, j := range jobs {
		g.Go(func() error {
			resp, err := summarizeJob(ctx, svc, j, opts, progress)
			if err != nil {
				log.Error("summarization failed", "input", j.name, "error", err)
				return fmt.Errorf("%s: %w", j.name, err)
			}
			results[i] = result{job: j, summary: resp}
			if opts.write && j.path != "" {
				return writeSummary(j.path, resp.Text)
			}
			return nil
		})
	}
	runErr := g.Wait()
	progress.finish()

	if !opts.write {
		printResults(cmd.OutOrStdout(), results)
	}
	return runErr
}

func summarizeJob(ctx context.Context, svc summarizer.Service, j job, opts *summarizeOptions, progress *chunkProgress) (summarizer.Response, error) {
	req := summarizer.Request{
		Source:     j.source,
		Engine:     opts.engine,
		SingleShot: opts.singleShot,
		Choices:    opts.choices,
	}
	if j.path != "" {
		data, err := os.ReadFile(j.path)
		if err != nil {
			return summarizer.Response{}, err
		}
		req.Text = string(data)
	}
	if progress != nil {
		req.Progress = progress.track()
	}
	return svc.Summarize(ctx, req)
}

// collectJobs expands args and globs into a sorted, de-duplicated file list
// followed by remote sources.
func collectJobs(args, globs, urls []string) ([]job, error) {
	seen := make(map[string]struct{})
	var paths []string
	add := func(path string) {
		if strings.HasSuffix(path, summarySuffix) {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory, use --glob", arg)
		}
		add(filepath.Clean(arg))
	}
	for _, pattern := range globs {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid glob %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			add(filepath.Clean(m))
		}
	}
	sort.Strings(paths)

	jobs := make([]job, 0, len(paths)+len(urls))
	for _, p := range paths {
		jobs = append(jobs, job{name: p, path: p})
	}
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			jobs = append(jobs, job{name: u, source: u})
		}
	}
	return jobs, nil
}

func summaryPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + summarySuffix
}

func writeSummary(path, text string) error {
	return os.WriteFile(summaryPath(path), []byte(strings.TrimSpace(text)+"\n"), 0o644)
}

func printResults(w io.Writer, results []result) {
	printed := 0
	for _, r := range results {
		if r.job.name == "" {
			continue
		}
		if len(results) > 1 {
			if printed > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "<!-- %s -->\n", r.job.name)
		}
		fmt.Fprintln(w, strings.TrimSpace(r.summary.Text))
		printed++
	}
}

// chunkProgress aggregates per-chunk callbacks from concurrent runs into one bar.
type chunkProgress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	max int
}

func newChunkProgress(w io.Writer) *chunkProgress {
	return &chunkProgress{
		bar: progressbar.NewOptions(1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("[cyan]Summarizing[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w)
			}),
		),
	}
}

// track returns a callback for one run. The first report announces the run's
// chunk total.
func (p *chunkProgress) track() func(summarizer.ChunkProgress) {
	var counted bool
	return func(cp summarizer.ChunkProgress) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !counted {
			counted = true
			p.max += cp.Total
			p.bar.ChangeMax(p.max)
		}
		_ = p.bar.Add(1)
	}
}

func (p *chunkProgress) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}
