package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/logging"
)

// Summarizer produces the recommendation paragraph; *Client implements it.
type Summarizer interface {
	Summarize(ctx context.Context, setup map[string]interface{}, records []decision.Record) string
}

// Reply is the JSON body of every handler answer.
type Reply struct {
	OK      bool   `json:"ok"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler serves POST {setup?, dashboard: [...]} and answers {ok, content}.
type Handler struct {
	s Summarizer
}

func NewHandler(s Summarizer) *Handler { return &Handler{s: s} }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeReply(w, http.StatusBadRequest, Reply{Error: "JSON inválido."})
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		writeReply(w, http.StatusBadRequest, Reply{Error: "JSON inválido."})
		return
	}

	setup, _ := body["setup"].(map[string]interface{})
	list, ok := body["dashboard"].([]interface{})
	if !ok || len(list) == 0 {
		writeReply(w, http.StatusBadRequest, Reply{Error: "No hay datos del dashboard."})
		return
	}

	records := make([]decision.Record, 0, len(list))
	for _, el := range list {
		m, ok := el.(map[string]interface{})
		if !ok {
			continue
		}
		rec := decision.Record(m)
		name := decision.Name(rec)
		if name == "" {
			continue
		}
		records = append(records, decision.Record{
			"name":  name,
			"cost":  lookup(decision.CostField, rec),
			"total": lookup(decision.TotalField, rec),
			"ratio": lookup(decision.RatioField, rec),
		})
	}
	if len(records) == 0 {
		writeReply(w, http.StatusBadRequest, Reply{Error: "Datos insuficientes."})
		return
	}

	ctx := WithOrigin(r.Context(), origin(r))
	writeReply(w, http.StatusOK, Reply{OK: true, Content: h.s.Summarize(ctx, setup, records)})
}

func lookup(f decision.Field, r decision.Record) interface{} {
	v, _ := f.Lookup(r)
	return v
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func writeReply(w http.ResponseWriter, status int, reply Reply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		logging.Errorf("assistant: encode reply: %v", err)
	}
}
