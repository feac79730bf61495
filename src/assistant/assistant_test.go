package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iafilius/CBACharts/src/decision"
)

func abRecords() []decision.Record {
	return []decision.Record{
		{"name": "B", "cost": 30, "total": 10},
		{"name": "A", "cost": 10, "total": 5},
	}
}

func TestSoles(t *testing.T) {
	cases := []struct {
		v    float64
		dec  int
		want string
	}{
		{2, 2, "S/ 2,00"},
		{1234.5, 2, "S/ 1234,50"},
		{0.333333, 2, "S/ 0,33"},
		{-1.5, 2, "S/ -1,50"},
		{7, 0, "S/ 7"},
	}
	for _, c := range cases {
		if got := Soles(c.v, c.dec); got != c.want {
			t.Fatalf("Soles(%v,%d)=%q want %q", c.v, c.dec, got, c.want)
		}
	}
}

func TestFallbackWinnerAndRunnerUp(t *testing.T) {
	setup := map[string]interface{}{"project_name": "Puente", "objective": "Cruzar el río"}
	got := Fallback(setup, abRecords())
	want := `Para el proyecto "Puente" cuyo objetivo es "Cruzar el río" se recomienda A para cumplirlo porque presenta el menor costo por unidad de ventaja (S/ 2,00 por unidad), alcanzando 5 de ventaja total con un costo total de S/ 10,00, lo que implica un ahorro de S/ 1,00 (33.33% menos) por unidad (frente a B, S/ 3,00 por unidad).`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackWithoutWinner(t *testing.T) {
	got := Fallback(nil, []decision.Record{{"name": "A", "cost": 0, "total": 5}, {"cost": 3, "total": 1}})
	want := "Para este proyecto se requiere completar costos y/o ventajas para emitir una recomendación basada en costo por unidad de ventaja."
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackExplicitRatioAndSingleCandidate(t *testing.T) {
	got := Fallback(nil, []decision.Record{{"candidatos": "Solo", "costo": "12", "ventaja": "4", "ratio": 99}})
	if !strings.Contains(got, "se recomienda Solo porque") || !strings.Contains(got, "(S/ 99,00 por unidad)") {
		t.Fatalf("unexpected fallback %q", got)
	}
	if strings.Contains(got, "ahorro") {
		t.Fatalf("single candidate must not compare: %q", got)
	}
	if !strings.HasSuffix(got, "S/ 12,00.") {
		t.Fatalf("paragraph should end with the cost and a period: %q", got)
	}
}

func TestAccept(t *testing.T) {
	long := "La alternativa recomendada es A " + strings.Repeat("x", MaxSummaryLength)
	accented := "La alternativa recomendada es A " + strings.Repeat("é", 850)
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"sentence", "La alternativa  recomendada es A porque\ntiene el menor costo por unidad.", true},
		{"recomienda only", "Se recomienda A porque tiene el menor costo por unidad.", false},
		{"too long", long, false},
		{"accented under the limit", accented, true},
		{"bullets", "La alternativa recomendada es A:\n- barato\n- rápido", false},
		{"field dump", "Recomendación: A. Ratio: 2", false},
		{"variable name", "La alternativa recomendada es A con delta_pct 33", false},
		{"no recommendation", "A es la mejor alternativa.", false},
		{"empty", "   ", false},
	}
	for _, c := range cases {
		text, ok := Accept(c.in)
		if ok != c.ok {
			t.Fatalf("%s: Accept ok=%v want %v (%q)", c.name, ok, c.ok, text)
		}
	}
	text, _ := Accept("La alternativa  recomendada es A porque\ntiene el menor costo por unidad.")
	if text != "La alternativa recomendada es A porque tiene el menor costo por unidad." {
		t.Fatalf("whitespace not collapsed: %q", text)
	}
}

func completionServer(t *testing.T, status int, content string, seen *completionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("authorization header %q", got)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"code":429}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{map[string]interface{}{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
}

func TestSummarizeUsesAcceptedAnswer(t *testing.T) {
	var seen completionRequest
	srv := completionServer(t, http.StatusOK, "La alternativa recomendada es A porque cuesta S/ 2,00 por unidad frente a B.", &seen)
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", Model: "m", Endpoint: srv.URL})
	got := c.Summarize(context.Background(), nil, abRecords())
	if got != "La alternativa recomendada es A porque cuesta S/ 2,00 por unidad frente a B." {
		t.Fatalf("got %q", got)
	}
	if seen.Model != "m" || seen.Temperature != Temperature || len(seen.Messages) != 2 {
		t.Fatalf("unexpected request %+v", seen)
	}
	if seen.Messages[0].Role != "system" || !strings.Contains(seen.Messages[1].Content, `"winner":{"name":"A"`) {
		t.Fatalf("prompt missing computed winner: %q", seen.Messages[1].Content)
	}
}

func TestSummarizeFallsBack(t *testing.T) {
	want := Fallback(nil, abRecords())

	rejected := completionServer(t, http.StatusOK, "Recomendación: A\n- ratio: 2", nil)
	defer rejected.Close()
	if got := NewClient(Config{APIKey: "k", Endpoint: rejected.URL}).Summarize(context.Background(), nil, abRecords()); got != want {
		t.Fatalf("rejected answer: got %q", got)
	}

	// "recomienda" does not contain "recomend", so the guard rejects it
	recomienda := completionServer(t, http.StatusOK, "Se recomienda A porque cuesta menos por unidad.", nil)
	defer recomienda.Close()
	if got := NewClient(Config{APIKey: "k", Endpoint: recomienda.URL}).Summarize(context.Background(), nil, abRecords()); got != want {
		t.Fatalf("recomienda answer: got %q", got)
	}

	limited := completionServer(t, http.StatusTooManyRequests, "", nil)
	defer limited.Close()
	c := NewClient(Config{APIKey: "k", Endpoint: limited.URL})
	if got := c.Summarize(context.Background(), nil, abRecords()); got != want {
		t.Fatalf("http error: got %q", got)
	}
	_, err := c.Complete(context.Background(), nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected APIError 429, got %v", err)
	}

	noKey := NewClient(Config{})
	if _, err := noKey.Complete(context.Background(), nil); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	if got := noKey.Summarize(context.Background(), nil, abRecords()); got != want {
		t.Fatalf("no key: got %q", got)
	}
}

func TestNewClientDefaults(t *testing.T) {
	cfg := NewClient(Config{}).Config()
	if cfg.Endpoint != DefaultEndpoint || cfg.Model != DefaultModel || cfg.Timeout != DefaultTimeout {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

type stubSummarizer struct {
	setup   map[string]interface{}
	records []decision.Record
}

func (s *stubSummarizer) Summarize(_ context.Context, setup map[string]interface{}, records []decision.Record) string {
	s.setup, s.records = setup, records
	return "Se recomienda A."
}

func TestHandler(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		want   Reply
	}{
		{"invalid json", "{", http.StatusBadRequest, Reply{Error: "JSON inválido."}},
		{"empty body", "", http.StatusBadRequest, Reply{Error: "No hay datos del dashboard."}},
		{"dashboard not a list", `{"dashboard":{"a":1}}`, http.StatusBadRequest, Reply{Error: "No hay datos del dashboard."}},
		{"only nameless rows", `{"dashboard":[{"cost":1},"x"]}`, http.StatusBadRequest, Reply{Error: "Datos insuficientes."}},
		{"ok", `{"setup":"ignored","dashboard":[{"CANDIDATOS":" A ","COSTO":"10","VENTAJA":5},{"name":""}]}`, http.StatusOK, Reply{OK: true, Content: "Se recomienda A."}},
	}
	for _, c := range cases {
		stub := &stubSummarizer{}
		req := httptest.NewRequest(http.MethodPost, "/ai/decision", strings.NewReader(c.body))
		w := httptest.NewRecorder()
		NewHandler(stub).ServeHTTP(w, req)
		if w.Code != c.status {
			t.Fatalf("%s: status %d want %d", c.name, w.Code, c.status)
		}
		var got Reply
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("%s: decode: %v", c.name, err)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Fatalf("%s: reply mismatch (-want +got):\n%s", c.name, diff)
		}
		if c.name == "ok" {
			if stub.setup != nil {
				t.Fatalf("non-object setup must be dropped, got %v", stub.setup)
			}
			if len(stub.records) != 1 || stub.records[0]["name"] != "A" || stub.records[0]["cost"] != "10" {
				t.Fatalf("unexpected records %v", stub.records)
			}
		}
	}
}
