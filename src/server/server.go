// Package server exposes the dashboard over HTTP: a page with the embedded payload,
// rendered chart images, click resolution, the library page and the assistant.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/iafilius/CBACharts/src/assistant"
	"github.com/iafilius/CBACharts/src/config"
	"github.com/iafilius/CBACharts/src/dashboard"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/echarts"
	"github.com/iafilius/CBACharts/src/notebook"
	"github.com/iafilius/CBACharts/src/page"
	"github.com/iafilius/CBACharts/src/surface"
)

type Options struct {
	Config  config.Config
	Payload decision.Payload
	// Notebook supplies the saved notebook snapshot; nil uses Config.Notebook.
	Notebook notebook.Store
	// Summarizer answers /ai/decision; nil builds an assistant client from Config.
	Summarizer assistant.Summarizer
}

// Server owns one dashboard per chart backend. Each dashboard mutates shared
// canvases, so requests touching it are serialized.
type Server struct {
	cfg      config.Config
	payload  decision.Payload
	raw      string
	notebook notebook.Snapshot
	ai       *assistant.Handler

	mu      sync.Mutex
	canvas  *dashboard.Dashboard
	library *dashboard.Dashboard
}

func New(o Options) (*Server, error) {
	raw, err := encodeDocument(o.Payload)
	if err != nil {
		return nil, err
	}
	store := o.Notebook
	if store == nil {
		store = notebook.MapStore(o.Config.Notebook)
	}
	sum := o.Summarizer
	if sum == nil {
		sum = assistant.NewClient(assistant.Config{
			APIKey:   o.Config.Assistant.APIKey,
			Model:    o.Config.Assistant.Model,
			Endpoint: o.Config.Assistant.Endpoint,
			Timeout:  o.Config.Assistant.Timeout(),
		})
	}
	s := &Server{
		cfg:      o.Config,
		payload:  o.Payload,
		raw:      raw,
		notebook: notebook.Load(store),
		ai:       assistant.NewHandler(sum),
	}
	s.canvas = s.newDashboard(nil)
	s.library = s.newDashboard(echarts.NewLibrary())
	return s, nil
}

// encodeDocument builds the embedded payload document {setup, dashboard}.
func encodeDocument(p decision.Payload) (string, error) {
	records := p.Records
	if records == nil {
		records = []decision.Record{}
	}
	b, err := json.Marshal(map[string]interface{}{"setup": p.Setup, "dashboard": records})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}

func (s *Server) newDashboard(lib dashboard.Library) *dashboard.Dashboard {
	dcfg := dashboard.DefaultConfig()
	dcfg.Debounce = s.cfg.Debounce
	dcfg.HitThreshold = s.cfg.HitThreshold

	doc := page.NewDocument()
	for _, id := range []string{dcfg.RatioCanvasID, dcfg.VectorCanvasID} {
		c := surface.New(id, s.cfg.Width, s.cfg.Width*3/8)
		c.CSSWidth = float64(s.cfg.Width)
		doc.AddCanvas(c)
	}
	doc.AddTooltip(dcfg.TooltipID)
	doc.AddLegend(dcfg.LegendID)
	doc.SetScript(dcfg.PayloadID, s.raw)

	d := dashboard.New(doc, page.NewWindow(s.cfg.DPR), lib, dcfg)
	d.InitCharts()
	return d
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler { return s.routes() }

// Close tears down both dashboards.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.Close()
	s.library.Close()
}
