package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/benoitkugler/cssbox/backend/raster"
	"github.com/benoitkugler/cssbox/config"
	"github.com/benoitkugler/cssbox/html/document"
	"github.com/benoitkugler/cssbox/html/tree"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
	"github.com/benoitkugler/cssbox/version"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Worst is the score of a test which could not be run.
const Worst float32 = 1

// Case is a test document, compared with the reference it links to.
type Case struct {
	Name string
	URL  string
}

// Runner renders the reference tests of a suite.
type Runner struct {
	Fetcher utils.UrlFetcher
	Options document.Options
	// Workers is the number of tests rendered in parallel.
	Workers int
	// Timeout limits the duration of each test.
	Timeout time.Duration
	// Blacklist are the tags of the skipped tests.
	Blacklist []string
	// SaveDir, when not empty, receives the renderings of the failed tests.
	SaveDir string

	// test computes the score of a case, defaulting to compareRendering
	test func(ctx context.Context, c Case) (float32, error)

	log       *zap.Logger
	completed atomic.Int32
}

// NewRunner returns a runner configured by `cfg`, rendering at the
// size of the configured viewport.
func NewRunner(cfg config.Config) *Runner {
	return &Runner{
		Fetcher:   utils.DefaultUrlFetcher,
		Options:   document.OptionsFromConfig(cfg),
		Workers:   cfg.Batch.Workers,
		Timeout:   cfg.Batch.Timeout,
		Blacklist: DefaultBlacklist,
	}
}

// Cases returns the tests of `entries` to run: the blacklisted tests are
// skipped, as well as the tests not in `selected`, when it is not empty.
func (r *Runner) Cases(suiteURL string, entries []Entry, selected []string) []Case {
	var out []Case
	for _, entry := range entries {
		if entry.HasTag(r.Blacklist) || (len(selected) != 0 && !utils.IsIn(selected, entry.Name)) {
			logger.ProgressLogger.Printf("Skipped %s", entry.Name)
			continue
		}
		out = append(out, Case{Name: entry.Name, URL: utils.ResolveUrl(suiteURL, entry.Src)})
	}
	return out
}

// Run runs the tests of the suite at `suiteURL` (see LoadTOC).
func (r *Runner) Run(ctx context.Context, suiteURL string, selected []string) (*Report, error) {
	entries, err := LoadTOC(r.Fetcher, suiteURL)
	if err != nil {
		return nil, err
	}
	return r.RunCases(ctx, r.Cases(suiteURL, entries, selected))
}

// RunCases runs the given tests in parallel. The results are in the order
// of `cases`; a test which fails, panics or times out gets the score Worst.
// An error is only returned when `ctx` is canceled.
func (r *Runner) RunCases(ctx context.Context, cases []Case) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Version: version.VersionString,
		Started: time.Now(),
		Results: make([]Result, len(cases)),
	}
	r.log = logger.Base().Named("batch").With(zap.String("run", report.RunID))
	r.completed.Store(0)
	if r.test == nil {
		r.test = r.compareRendering
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if gctx.Err() != nil {
				report.Results[i] = Result{Name: c.Name, Score: Worst, Error: gctx.Err().Error()}
				return nil
			}
			score, err := r.runCase(gctx, c)
			res := Result{Name: c.Name, Score: score}
			if err != nil {
				r.log.Error("test failed", zap.String("test", c.Name), zap.Error(err))
				res.Error = err.Error()
			}
			report.Results[i] = res
			if n := r.completed.Add(1); n%10 == 0 {
				logger.ProgressLogger.Printf("Completed %d/%d", n, len(cases))
			}
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors
	report.Duration = time.Since(report.Started)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("running tests: %w", err)
	}
	return report, nil
}

// runCase runs one test with the configured timeout.
func (r *Runner) runCase(ctx context.Context, c Case) (float32, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	type outcome struct {
		score float32
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{Worst, fmt.Errorf("panic: %v", p)}
			}
		}()
		score, err := r.test(ctx, c)
		done <- outcome{score, err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return Worst, o.err
		}
		return o.score, nil
	case <-ctx.Done():
		return Worst, fmt.Errorf("%s: %w", c.Name, ctx.Err())
	}
}

var selMatch = cascadia.MustCompile("link[rel][href]")

// referenceURL returns the URL of the <link rel="match"> of the document.
func referenceURL(doc *tree.HTML) (string, error) {
	for _, link := range selMatch.MatchAll(doc.Root.AsHtml()) {
		node := (*utils.HTMLNode)(link)
		if strings.EqualFold(strings.TrimSpace(node.Get("rel")), "match") {
			if href := strings.TrimSpace(node.Get("href")); href != "" {
				return utils.ResolveUrl(doc.BaseUrl, href), nil
			}
		}
	}
	return "", errors.New("no reference link")
}

func (r *Runner) load(url string) (*tree.HTML, error) {
	fetcher := r.Fetcher
	if fetcher == nil {
		fetcher = utils.DefaultUrlFetcher
	}
	res, err := fetcher(url)
	if err != nil {
		return nil, err
	}
	content, err := io.ReadAll(res.Content)
	if err != nil {
		return nil, err
	}
	return tree.NewHTML(content, url, fetcher)
}

func (r *Runner) render(doc *tree.HTML) image.Image {
	return raster.Render(document.Render(doc, r.Options)).Image()
}

// compareRendering renders the test and its reference, and returns
// the proportion of different pixels.
func (r *Runner) compareRendering(ctx context.Context, c Case) (float32, error) {
	doc, err := r.load(c.URL)
	if err != nil {
		return Worst, fmt.Errorf("loading test %s: %w", c.Name, err)
	}
	ref, err := referenceURL(doc)
	if err != nil {
		return Worst, fmt.Errorf("test %s: %w", c.Name, err)
	}
	testImg := r.render(doc)
	if err := ctx.Err(); err != nil {
		return Worst, err
	}

	refDoc, err := r.load(ref)
	if err != nil {
		return Worst, fmt.Errorf("loading reference of %s: %w", c.Name, err)
	}
	refImg := r.render(refDoc)

	cmp := Compare(testImg, refImg)
	if cmp.Description != "" {
		r.log.Warn(cmp.Description, zap.String("test", c.Name))
	}
	if r.SaveDir != "" && cmp.ErrorRate > 0 {
		r.saveImages(c, testImg, refImg, cmp.Diff)
	}
	return cmp.ErrorRate, nil
}

func (r *Runner) saveImages(c Case, test, ref, diff image.Image) {
	base := filepath.Join(r.SaveDir, "test-"+filepath.Base(c.URL))
	for suffix, img := range map[string]image.Image{".srcA.png": test, ".srcB.png": ref, ".diff.png": diff} {
		if err := imaging.Save(img, base+suffix); err != nil {
			r.log.Warn("saving image", zap.Error(err))
		}
	}
}
