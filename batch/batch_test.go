package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/benoitkugler/cssbox/html/document"
	"github.com/benoitkugler/cssbox/text"
	"github.com/benoitkugler/cssbox/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const toc = `<html><body><table>
<thead><tr><th>Test</th><th>Flags</th></tr></thead>
<tbody id="a">
	<tr><td><a href="a.html"> a-001 </a></td><td><abbr>AHEM</abbr></td></tr>
	<tr><td><a href="a-ref.html">reference</a></td></tr>
</tbody>
<tbody id="b">
	<tr><td><a href="b.html">b-001</a></td><td><abbr>SVG</abbr></td></tr>
</tbody>
<tbody id="c">
	<tr><td><a href="c.html">c-001</a></td><td></td></tr>
</tbody>
</table></body></html>`

func TestParseTOC(t *testing.T) {
	entries, err := ParseTOC(strings.NewReader(toc))
	require.NoError(t, err)
	want := []Entry{
		{Name: "a-001", Src: "a.html", Tags: []string{"ahem"}},
		{Name: "b-001", Src: "b.html", Tags: []string{"svg"}},
		{Name: "c-001", Src: "c.html"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("unexpected entries (-want +got):\n%s", diff)
	}

	_, err = ParseTOC(strings.NewReader(`<p>no table</p>`))
	assert.Error(t, err)
}

func TestCases(t *testing.T) {
	entries, err := ParseTOC(strings.NewReader(toc))
	require.NoError(t, err)
	r := &Runner{Blacklist: DefaultBlacklist}

	cases := r.Cases("http://suite/css/", entries, nil)
	assert.Equal(t, []Case{
		{Name: "a-001", URL: "http://suite/css/a.html"},
		{Name: "c-001", URL: "http://suite/css/c.html"},
	}, cases)

	cases = r.Cases("http://suite/css/", entries, []string{"c-001"})
	assert.Equal(t, []Case{{Name: "c-001", URL: "http://suite/css/c.html"}}, cases)
}

func TestCompare(t *testing.T) {
	img1 := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img2 := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	assert.Equal(t, float32(0), Compare(img1, img2).ErrorRate)

	img2.SetNRGBA(1, 0, color.NRGBA{R: 10, A: 255})
	c := Compare(img1, img2)
	assert.Equal(t, float32(0.25), c.ErrorRate)
	assert.Equal(t, highlight, color.NRGBAModel.Convert(c.Diff.At(1, 0)))
	assert.Equal(t, color.NRGBA{}, color.NRGBAModel.Convert(c.Diff.At(0, 0)))
	// the input is not modified
	assert.Equal(t, color.NRGBA{}, img1.NRGBAAt(1, 0))

	c = Compare(img1, image.NewNRGBA(image.Rect(0, 0, 3, 2)))
	assert.Equal(t, Worst, c.ErrorRate)
	assert.NotEmpty(t, c.Description)
}

func TestRunCasesScores(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &Runner{Workers: 3, Timeout: 50 * time.Millisecond}
	r.test = func(ctx context.Context, c Case) (float32, error) {
		switch c.Name {
		case "error":
			return 0, errors.New("broken test")
		case "panic":
			panic("unexpected")
		case "slow":
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 0.5, nil
	}
	var cases []Case
	for _, name := range []string{"ok1", "error", "panic", "slow", "ok2"} {
		cases = append(cases, Case{Name: name})
	}
	report, err := r.RunCases(context.Background(), cases)
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)

	var names []string
	var scores []float32
	for _, res := range report.Results {
		names = append(names, res.Name)
		scores = append(scores, res.Score)
	}
	assert.Equal(t, []string{"ok1", "error", "panic", "slow", "ok2"}, names)
	assert.Equal(t, []float32{0.5, Worst, Worst, Worst, 0.5}, scores)
	assert.Contains(t, report.Results[2].Error, "panic")
	assert.Contains(t, report.Results[3].Error, context.DeadlineExceeded.Error())
	assert.Equal(t, Summary{Fail: 5, Fatal: 3}, Summarize(report.Results))
}

func TestRunCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Workers: 2}
	r.test = func(ctx context.Context, c Case) (float32, error) { return 0, nil }
	report, err := r.RunCases(ctx, []Case{{Name: "a"}, {Name: "b"}})
	assert.ErrorIs(t, err, context.Canceled)
	for _, res := range report.Results {
		assert.Equal(t, Worst, res.Score)
	}
}

// memoryFetcher serves documents from a map.
func memoryFetcher(files map[string]string) utils.UrlFetcher {
	return func(url string) (utils.RemoteRessource, error) {
		content, ok := files[url]
		if !ok {
			return utils.RemoteRessource{}, fmt.Errorf("not found: %s", url)
		}
		return utils.RemoteRessource{Content: bytes.NewReader([]byte(content)), MimeType: "text/html", URL: url}, nil
	}
}

func TestRunSuite(t *testing.T) {
	defer goleak.VerifyNone(t)

	const style = `<style>body { margin: 0 }</style>`
	files := map[string]string{
		"mem://suite/" + TOCFile: `<table>
			<tbody><tr><td><a href="same.html">same</a></td></tr></tbody>
			<tbody><tr><td><a href="other.html">other</a></td></tr></tbody>
			<tbody><tr><td><a href="noref.html">noref</a></td></tr></tbody>
			<tbody><tr><td><a href="missing.html">missing</a></td></tr></tbody>
		</table>`,
		"mem://suite/same.html":  `<link rel="match" href="ref.html">` + style + `<div style="width:10px;height:10px;background:red"></div>`,
		"mem://suite/ref.html":   style + `<p style="margin:0;width:10px;height:10px;background:red"></p>`,
		"mem://suite/other.html": `<link rel="Match" href="ref.html">` + style + `<div style="width:10px;height:5px;background:red"></div>`,
		"mem://suite/noref.html": style + `<div></div>`,
	}
	r := &Runner{
		Fetcher: memoryFetcher(files),
		Options: document.Options{ViewportWidth: 20, ViewportHeight: 20, HTMLExtensions: true, Fonts: text.FixedFonts{}},
		Workers: 2,
		Timeout: time.Minute,
	}
	report, err := r.Run(context.Background(), "mem://suite/", nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 4)

	assert.Equal(t, Result{Name: "same", Score: 0}, report.Results[0])
	assert.Equal(t, float32(50)/400, report.Results[1].Score)
	assert.Equal(t, Worst, report.Results[2].Score)
	assert.Contains(t, report.Results[2].Error, "no reference link")
	assert.Equal(t, Worst, report.Results[3].Score)
}

func TestReportOutput(t *testing.T) {
	report := &Report{RunID: "id", Results: []Result{{Name: "a", Score: 0}, {Name: "b", Score: 0.25}, {Name: "c", Score: 1}}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))
	assert.Equal(t, "a,0\nb,0.25\nc,1\n", buf.String())
	read, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Result{{Name: "a"}, {Name: "b", Score: 0.25}, {Name: "c", Score: 1}}, read)

	buf.Reset()
	require.NoError(t, report.WriteJSON(&buf))
	var decoded struct {
		RunID   string  `json:"run_id"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "id", decoded.RunID)
	assert.Equal(t, Summary{Success: 1, Fail: 2, Fatal: 1}, decoded.Summary)

	regressions := report.Regressions([]Result{{Name: "a", Score: 0.5}, {Name: "b", Score: 0.1}})
	assert.Equal(t, []Regression{{Name: "b", Reference: 0.1, Got: 0.25}}, regressions)
}
