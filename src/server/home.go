package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/iafilius/CBACharts/src/logging"
	"github.com/iafilius/CBACharts/src/notebook"
)

const pageTitle = "Choosing By Advantages"

type homeData struct {
	Title        string
	Payload      template.JS
	Library      bool
	Width        int
	RatioID      string
	VectorID     string
	TooltipID    string
	PayloadID    string
	HasNotebook  bool
	NotebookWin  string
	NotebookHTML template.HTML
}

var homeTemplate = template.Must(template.New("home").Parse(`<!doctype html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:24px;color:#111827}
figure{position:relative;margin:0 0 24px 0;max-width:100%}
figure img{width:100%;display:block}
#{{.TooltipID}}{position:absolute;display:none;background:#111827;color:#fff;padding:4px 8px;border-radius:4px;font-size:12px;pointer-events:none;white-space:pre}
.notebook{border-left:3px solid #2563eb;padding-left:12px}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .HasNotebook}}<section class="notebook">
{{if .NotebookWin}}<p>Última alternativa elegida: <strong>{{.NotebookWin}}</strong></p>{{end}}
<p>{{.NotebookHTML}}</p>
</section>{{end}}
{{if .Library}}<iframe src="/interactive" width="100%" height="{{.Width}}" style="border:0"></iframe>
{{else}}<figure><img id="{{.RatioID}}" alt="ratio" data-chart="{{.RatioID}}"></figure>
<figure><img id="{{.VectorID}}" alt="costo vs ventaja" data-chart="{{.VectorID}}"><div id="{{.TooltipID}}"></div></figure>
{{end}}
<section><button id="assistant">Resumen</button><p id="assistant-text"></p></section>
<script type="application/json" id="{{.PayloadID}}">{{.Payload}}</script>
<script>
(function(){
  var doc = JSON.parse(document.getElementById("{{.PayloadID}}").textContent || "{}");
  var tip = document.getElementById("{{.TooltipID}}");
  var timer = null;
  function load(){
    document.querySelectorAll("img[data-chart]").forEach(function(img){
      var w = Math.round(img.parentNode.clientWidth || {{.Width}});
      img.src = "/charts/" + img.dataset.chart + ".png?width=" + w + "&dpr=" + (window.devicePixelRatio || 1);
    });
  }
  document.querySelectorAll("img[data-chart]").forEach(function(img){
    img.addEventListener("click", function(ev){
      var r = img.getBoundingClientRect();
      fetch("/charts/" + img.dataset.chart + "/click", {method: "POST", body: JSON.stringify({x: ev.clientX - r.left, y: ev.clientY - r.top})})
        .then(function(res){ return res.json(); })
        .then(function(out){
          if (!tip) { return; }
          if (!out.hit) { tip.style.display = "none"; return; }
          tip.textContent = out.lines.join("\n");
          tip.style.left = out.left + "px";
          tip.style.top = out.top + "px";
          tip.style.display = "block";
        });
    });
  });
  window.addEventListener("resize", function(){ clearTimeout(timer); timer = setTimeout(load, 150); });
  document.getElementById("assistant").addEventListener("click", function(){
    fetch("/ai/decision", {method: "POST", body: JSON.stringify(doc)})
      .then(function(res){ return res.json(); })
      .then(function(out){ document.getElementById("assistant-text").textContent = out.ok ? out.content : out.error; });
  });
  load();
})();
</script>
</body>
</html>
`))

// home handles GET /: the dashboard page with the payload embedded as JSON.
func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	dcfg := s.canvas.Config()
	data := homeData{
		Title:        pageTitle,
		Payload:      template.JS(s.raw),
		Library:      s.cfg.UseECharts(),
		Width:        s.cfg.Width,
		RatioID:      dcfg.RatioCanvasID,
		VectorID:     dcfg.VectorCanvasID,
		TooltipID:    dcfg.TooltipID,
		PayloadID:    dcfg.PayloadID,
		HasNotebook:  !s.notebook.Empty(),
		NotebookWin:  s.notebook.Winner,
		NotebookHTML: notebook.RenderBold(s.notebook.Text),
	}
	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, data); err != nil {
		logging.Errorf("home page: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
