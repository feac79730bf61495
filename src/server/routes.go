package server

import (
	"bytes"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/echarts"
	"github.com/iafilius/CBACharts/src/logging"
	"github.com/iafilius/CBACharts/src/surface"
)

const (
	minChartWidth = 120
	maxChartWidth = 4096
	maxDPR        = 4
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /charts/{file}", WithLogging(s.chartImage))
	mux.HandleFunc("POST /charts/{id}/click", WithLogging(s.chartClick))
	mux.HandleFunc("GET /items", WithLogging(s.items))
	mux.HandleFunc("GET /interactive", WithLogging(s.interactive))
	mux.HandleFunc("POST /ai/decision", WithLogging(s.ai.ServeHTTP))
	mux.HandleFunc("GET /{$}", WithLogging(s.home))

	return mux
}

// queryFloat reads a positive finite number from the query, def otherwise.
func queryFloat(r *http.Request, key string, def float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return def
	}
	return v
}

// chartImage handles GET /charts/{id}.png and /charts/{id}.svg with optional
// width (CSS px) and dpr query parameters.
func (s *Server) chartImage(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 {
		ErrorResponse(w, http.StatusNotFound, "unknown chart")
		return
	}
	id, ext := file[:dot], strings.ToLower(file[dot+1:])
	if ext != "png" && ext != "svg" {
		ErrorResponse(w, http.StatusNotFound, "unsupported chart format "+ext)
		return
	}
	width := math.Min(math.Max(queryFloat(r, "width", float64(s.cfg.Width)), minChartWidth), maxChartWidth)
	dpr := math.Min(queryFloat(r, "dpr", s.cfg.DPR), maxDPR)

	s.mu.Lock()
	c := s.canvas.Surface(id)
	if c == nil {
		s.mu.Unlock()
		ErrorResponse(w, http.StatusNotFound, "unknown chart "+id)
		return
	}
	c.Format = surface.ParseFormat(ext)
	c.CSSWidth = width
	s.canvas.Window().SetDevicePixelRatio(dpr)
	s.canvas.DrawCharts(s.canvas.Items())
	data := append([]byte(nil), c.Bytes()...)
	format := c.Format
	s.mu.Unlock()

	if len(data) == 0 {
		ErrorResponse(w, http.StatusInternalServerError, "chart could not be rendered")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

type clickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type clickResponse struct {
	Hit   bool     `json:"hit"`
	Lines []string `json:"lines"`
	Left  float64  `json:"left"`
	Top   float64  `json:"top"`
}

// chartClick handles POST /charts/{id}/click with CSS pixel coordinates relative to
// the last image served for that chart.
func (s *Server) chartClick(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req clickRequest
	if err := ParseJSONBody(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.mu.Lock()
	if s.canvas.Surface(id) == nil {
		s.mu.Unlock()
		ErrorResponse(w, http.StatusNotFound, "unknown chart "+id)
		return
	}
	lines, hit := s.canvas.Click(id, req.X, req.Y)
	resp := clickResponse{Hit: hit, Lines: lines}
	if tip := s.canvas.Document().Tooltip(s.canvas.Config().TooltipID); tip != nil && hit {
		resp.Left, resp.Top = tip.Position()
	}
	s.mu.Unlock()

	if resp.Lines == nil {
		resp.Lines = []string{}
	}
	JSONResponse(w, http.StatusOK, resp)
}

type itemsResponse struct {
	Items  []decision.Item `json:"items"`
	Winner *string         `json:"winner"`
}

// items handles GET /items: named rows sorted by total benefit, plus the winner.
func (s *Server) items(w http.ResponseWriter, r *http.Request) {
	items := namedItems(s.payload.Records)
	resp := itemsResponse{Items: items}
	if win, ok := decision.Winner(items); ok {
		resp.Winner = &win.Name
	}
	JSONResponse(w, http.StatusOK, resp)
}

func namedItems(records []decision.Record) []decision.Item {
	named := make([]decision.Record, 0, len(records))
	for _, r := range records {
		if decision.Name(r) != "" {
			named = append(named, r)
		}
	}
	items := decision.Normalize(named)
	decision.SortByTotalDesc(items)
	return items
}

// interactive handles GET /interactive: the library charts on one page.
func (s *Server) interactive(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := echarts.Page(&buf, pageTitle, s.library.Instances()...)
	s.mu.Unlock()
	if err != nil {
		logging.Errorf("interactive page: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, "failed to render charts")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
