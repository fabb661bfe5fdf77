package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/cssbox/backend/raster"
	"github.com/benoitkugler/cssbox/backend/svg"
	"github.com/benoitkugler/cssbox/html/document"
	"github.com/benoitkugler/cssbox/html/tree"
	"github.com/benoitkugler/cssbox/utils"
	"github.com/benoitkugler/cssbox/utils/testutils/tracer"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	output    string
	format    string
	userFiles []string
}

func newRenderCmd(a *app) *cobra.Command {
	var rf renderFlags
	cmd := &cobra.Command{
		Use:   "render <file or url>",
		Short: "Render a document to an image",
		Long: "Render a document to a PNG or SVG image. The format is deduced from the\n" +
			"output file extension unless --format is given; the trace format lists\n" +
			"the painting operations.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.OutOrStdout(), args[0], rf)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&rf.output, "output", "o", "", "output file (default is the standard output)")
	flags.StringVarP(&rf.format, "format", "f", "", "output format: png, svg or trace")
	flags.StringSliceVar(&rf.userFiles, "css", nil, "user style sheets")
	flags.Int("width", 1200, "initial viewport width")
	flags.Int("height", 600, "initial viewport height")
	flags.Bool("images", true, "load the content images")
	flags.Bool("backgrounds", true, "load the background images")
	flags.Bool("fixed-fonts", false, "use fixed metrics fonts")
	a.bindFlags(flags, map[string]string{
		"width":       "viewport.width",
		"height":      "viewport.height",
		"images":      "images.load",
		"backgrounds": "images.background",
		"fixed-fonts": "fonts.fixed",
	})
	return cmd
}

// loadDocument parses a local file or fetches an URL.
func loadDocument(input string) (*tree.HTML, error) {
	if !strings.Contains(input, "://") {
		return tree.NewHTMLFromFile(input)
	}
	res, err := utils.DefaultUrlFetcher(input)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", input, err)
	}
	content, err := io.ReadAll(res.Content)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", input, err)
	}
	return tree.NewHTML(content, res.URL, nil)
}

func outputFormat(rf renderFlags) (string, error) {
	format := strings.ToLower(rf.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(rf.output)), ".")
	}
	switch format {
	case "":
		return "png", nil
	case "png", "svg", "trace":
		return format, nil
	}
	return "", fmt.Errorf("unsupported output format %q", format)
}

func (a *app) render(stdout io.Writer, input string, rf renderFlags) error {
	format, err := outputFormat(rf)
	if err != nil {
		return err
	}
	opts := document.OptionsFromConfig(a.cfg)
	for _, file := range rf.userFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading user style sheet: %w", err)
		}
		sheet, err := tree.NewCSS(string(content), tree.OriginUser)
		if err != nil {
			return fmt.Errorf("parsing user style sheet %s: %w", file, err)
		}
		opts.UserSheets = append(opts.UserSheets, sheet)
	}

	html, err := loadDocument(input)
	if err != nil {
		return err
	}
	doc := document.Render(html, opts)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = raster.Render(doc).WritePNG(&buf)
	case "svg":
		_, err = svg.Render(doc).WriteTo(&buf)
	case "trace":
		doc.Paint(tracer.NewDrawer(&buf))
	}
	if err != nil {
		return err
	}

	if rf.output == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(rf.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
