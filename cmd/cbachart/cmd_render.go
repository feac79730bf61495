package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iafilius/CBACharts/src/dashboard"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/echarts"
	"github.com/iafilius/CBACharts/src/logging"
	"github.com/iafilius/CBACharts/src/page"
	"github.com/iafilius/CBACharts/src/render"
	"github.com/iafilius/CBACharts/src/surface"
)

type renderOptions struct {
	input   string
	out     string
	width   int
	dpr     float64
	format  string
	html    bool
	caption string
}

func newRenderCmd() *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the ratio and cost/benefit charts as image files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadInput(o.input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			files, err := renderAll(cmd.Context(), doc, o)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "payload file (.json, .xlsx) or - for stdin (required)")
	f.StringVarP(&o.out, "out", "o", "charts", "output directory")
	f.IntVar(&o.width, "width", 800, "chart width in CSS pixels")
	f.Float64Var(&o.dpr, "dpr", 1, "device pixel ratio")
	f.StringVar(&o.format, "format", "png", "png or svg")
	f.BoolVar(&o.html, "html", false, "also write an interactive HTML page")
	f.StringVar(&o.caption, "caption", "", "caption drawn at the bottom of PNG charts")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// renderAll renders every chart on its own surface and dashboard, concurrently,
// and returns the written paths in a stable order.
func renderAll(ctx context.Context, doc decision.Payload, o renderOptions) ([]string, error) {
	if o.format != "png" && o.format != "svg" {
		return nil, fmt.Errorf("unsupported format %q (png or svg)", o.format)
	}
	if o.width <= 0 {
		return nil, fmt.Errorf("width must be positive")
	}
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	raw, err := decision.EncodeItems(decision.Normalize(doc.Records))
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	cfg := dashboard.DefaultConfig()
	ids := []string{cfg.RatioCanvasID, cfg.VectorCanvasID}
	n := len(ids)
	if o.html {
		n++
	}
	paths := make([]string, n)
	g, _ := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			data, err := renderOne(raw, id, o)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			p := filepath.Join(o.out, id+"."+o.format)
			if err := os.WriteFile(p, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
			paths[i] = p
			return nil
		})
	}
	if o.html {
		htmlPath := filepath.Join(o.out, "interactive.html")
		paths[n-1] = htmlPath
		g.Go(func() error { return renderHTML(raw, htmlPath, o) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// newChartPage builds a page holding the given canvases and the payload script.
func newChartPage(raw string, o renderOptions, ids ...string) (*page.Document, *page.Window) {
	cfg := dashboard.DefaultConfig()
	doc := page.NewDocument()
	for _, id := range ids {
		s := surface.New(id, o.width, o.width*3/8)
		s.CSSWidth = float64(o.width)
		s.Format = surface.ParseFormat(o.format)
		doc.AddCanvas(s)
	}
	doc.AddLegend(cfg.LegendID)
	doc.SetScript(cfg.PayloadID, raw)
	return doc, page.NewWindow(o.dpr)
}

func renderOne(raw, id string, o renderOptions) ([]byte, error) {
	doc, win := newChartPage(raw, o, id)
	d := dashboard.New(doc, win, nil, dashboard.Config{})
	defer d.Close()
	d.InitCharts()

	s := doc.Canvas(id)
	data := s.Bytes()
	if len(data) == 0 {
		return nil, fmt.Errorf("nothing rendered")
	}
	if o.caption == "" || s.Format != surface.PNG {
		return data, nil
	}
	img, err := s.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, render.Caption(img, o.caption)); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

func renderHTML(raw, path string, o renderOptions) error {
	cfg := dashboard.DefaultConfig()
	doc, win := newChartPage(raw, o, cfg.RatioCanvasID, cfg.VectorCanvasID)
	d := dashboard.New(doc, win, echarts.NewLibrary(), dashboard.Config{})
	defer d.Close()
	d.InitCharts()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := echarts.Page(f, "Choosing By Advantages", d.Instances()...); err != nil {
		return err
	}
	logging.Debugf("wrote %s with %d charts", path, len(d.Instances()))
	return nil
}
