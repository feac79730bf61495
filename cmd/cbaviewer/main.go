package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/CBACharts/cmd/cbaviewer/uihelpers"
	"github.com/iafilius/CBACharts/src/assistant"
	"github.com/iafilius/CBACharts/src/config"
	"github.com/iafilius/CBACharts/src/dashboard"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/interact"
	"github.com/iafilius/CBACharts/src/logging"
	"github.com/iafilius/CBACharts/src/notebook"
	"github.com/iafilius/CBACharts/src/page"
	"github.com/iafilius/CBACharts/src/render"
	"github.com/iafilius/CBACharts/src/surface"
)

type uiState struct {
	app    fyne.App
	window fyne.Window
	cfg    config.Config

	filePath string
	payload  decision.Payload
	dash     *dashboard.Dashboard
	dcfg     dashboard.Config
	renders  int

	ratioImg     *canvas.Image
	vectorImg    *canvas.Image
	ratioTap     *chartOverlay
	vectorTap    *chartOverlay
	adviceLabel  *widget.Label
	winnerText   *widget.RichText
	notebookText *widget.RichText
	advice       string
}

func main() {
	var fileFlag, envFlag, levelFlag string
	flag.StringVar(&fileFlag, "file", "", "Path to a CBA payload (.json or .xlsx)")
	flag.StringVar(&envFlag, "env", ".env", "dotenv file with OPENROUTER_* settings")
	flag.StringVar(&levelFlag, "log-level", "info", "debug, info, warn or error")
	flag.Parse()
	logging.SetLevel(levelFlag)

	cfg := config.Default()
	env, err := config.ReadEnv(envFlag)
	if err == nil {
		err = env.Apply(&cfg)
	}
	if err != nil {
		logging.Warnf("viewer: ignoring env settings: %v", err)
	}

	a := app.NewWithID("com.cba.viewer")
	w := a.NewWindow("CBA Viewer")
	w.Resize(fyne.NewSize(1100, 800))

	state := &uiState{app: a, window: w, cfg: cfg, filePath: fileFlag, dcfg: dashboard.DefaultConfig()}
	state.dcfg.Debounce = cfg.Debounce
	state.dcfg.HitThreshold = cfg.HitThreshold

	fileLabel := widget.NewLabel(uihelpers.TruncatePath(state.filePath, 60))
	openBtn := widget.NewButton("Abrir…", func() { openFileDialog(state, fileLabel) })
	adviceBtn := widget.NewButton("Asistente", func() { requestAdvice(state) })
	saveBtn := widget.NewButton("Guardar en cuaderno", func() { saveNotebook(state) })
	top := container.NewHBox(openBtn, fileLabel, widget.NewSeparator(), adviceBtn, saveBtn)

	state.ratioImg = newChartImage()
	state.vectorImg = newChartImage()
	state.ratioTap = newChartOverlay(state.dcfg.RatioCanvasID, state.tap)
	state.vectorTap = newChartOverlay(state.dcfg.VectorCanvasID, state.tap)
	state.adviceLabel = widget.NewLabel("")
	state.adviceLabel.Wrapping = fyne.TextWrapWord

	charts := container.NewVBox(
		widget.NewLabel("Costo por unidad de ventaja"),
		container.NewStack(state.ratioImg, state.ratioTap),
		widget.NewLabel("Costo vs. ventaja"),
		container.NewStack(state.vectorImg, state.vectorTap),
		widget.NewSeparator(),
		state.adviceLabel,
	)
	chartsScroll := container.NewVScroll(charts)
	chartsScroll.SetMinSize(fyne.NewSize(900, 650))

	state.winnerText = widget.NewRichText()
	state.notebookText = widget.NewRichText()
	state.notebookText.Wrapping = fyne.TextWrapWord
	refreshNotebook(state)

	tabs := container.NewAppTabs(
		container.NewTabItem("Gráficos", chartsScroll),
		container.NewTabItem("Cuaderno", container.NewVScroll(container.NewVBox(state.winnerText, state.notebookText))),
	)
	w.SetContent(container.NewBorder(top, nil, nil, nil, tabs))
	buildMenus(state, fileLabel)

	loadAll(state, fileLabel)

	// Lay the charts out again on window resize; the dashboard debounces the redraw
	// and the ticker picks up finished frames.
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		done := make(chan struct{})
		w.SetOnClosed(func() {
			close(done)
			if state.dash != nil {
				state.dash.Close()
			}
		})
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					scale := c.Scale()
					fyne.Do(func() {
						if curW != prevW {
							prevW = curW
							relayout(state, float32(curW), scale)
						}
						syncImages(state)
					})
				}
			}
		}()
	}

	w.ShowAndRun()
}

func newChartImage() *canvas.Image {
	img := canvas.NewImageFromImage(render.Blank(800, 300))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(900, 338))
	return img
}

func buildMenus(state *uiState, fileLabel *widget.Label) {
	fileMenu := fyne.NewMenu("Archivo",
		fyne.NewMenuItem("Abrir…", func() { openFileDialog(state, fileLabel) }),
		fyne.NewMenuItem("Recargar", func() { loadAll(state, fileLabel) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exportar gráfico de ratio…", func() { exportChartPNG(state, state.ratioImg, state.dcfg.RatioCanvasID+".png") }),
		fyne.NewMenuItem("Exportar costo vs. ventaja…", func() { exportChartPNG(state, state.vectorImg, state.dcfg.VectorCanvasID+".png") }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Salir", func() { state.window.Close() }),
	)
	decisionMenu := fyne.NewMenu("Decisión",
		fyne.NewMenuItem("Asistente", func() { requestAdvice(state) }),
		fyne.NewMenuItem("Guardar en cuaderno", func() { saveNotebook(state) }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, decisionMenu))

	if canv := state.window.Canvas(); canv != nil {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: mod}, func(fyne.Shortcut) { openFileDialog(state, fileLabel) })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: mod}, func(fyne.Shortcut) { loadAll(state, fileLabel) })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { state.window.Close() })
		}
	}
}

func openFileDialog(state *uiState, fileLabel *widget.Label) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		fileLabel.SetText(uihelpers.TruncatePath(state.filePath, 60))
		loadAll(state, fileLabel)
	}, state.window)
	d.Show()
}

// loadAll reads the payload file and rebuilds the dashboard around it.
func loadAll(state *uiState, fileLabel *widget.Label) {
	if state.filePath == "" {
		if _, err := os.Stat("dashboard.json"); err != nil {
			return
		}
		state.filePath = "dashboard.json"
		fileLabel.SetText(uihelpers.TruncatePath(state.filePath, 60))
	}
	p, err := decision.LoadDocument(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	raw, err := decision.EncodeItems(decision.Normalize(p.Records))
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.payload = p
	state.advice = ""
	state.adviceLabel.SetText("")
	logging.Infof("viewer: loaded %d rows from %s", len(p.Records), state.filePath)

	if state.dash != nil {
		state.dash.Close()
	}
	scale := float32(1)
	width := state.cfg.Width
	if c := state.window.Canvas(); c != nil {
		scale = c.Scale()
		if cw := c.Size().Width; cw > 0 {
			width = uihelpers.ComputeChartWidth(cw)
		}
	}
	state.dash = newDashboard(raw, width, float64(scale), state.dcfg)
	state.renders = -1
	syncImages(state)
}

// newDashboard builds a page with both chart canvases and draws it once.
func newDashboard(raw string, cssWidth int, dpr float64, dcfg dashboard.Config) *dashboard.Dashboard {
	cw, ch := uihelpers.ComputeChartDimensions(cssWidth)
	doc := page.NewDocument()
	for _, id := range []string{dcfg.RatioCanvasID, dcfg.VectorCanvasID} {
		s := surface.New(id, cw, ch)
		s.CSSWidth = float64(cw)
		doc.AddCanvas(s)
	}
	doc.AddTooltip(dcfg.TooltipID)
	doc.AddLegend(dcfg.LegendID)
	doc.SetScript(dcfg.PayloadID, raw)
	d := dashboard.New(doc, page.NewWindow(dpr), nil, dcfg)
	d.InitCharts()
	return d
}

func relayout(state *uiState, winW, scale float32) {
	if state.dash == nil {
		return
	}
	state.dash.Layout(float64(uihelpers.ComputeChartWidth(winW)))
	win := state.dash.Window()
	win.SetDevicePixelRatio(float64(scale))
	win.Dispatch(page.Resize)
}

// syncImages swaps in new frames when the dashboard finished another draw pass.
func syncImages(state *uiState) {
	if state.dash == nil {
		return
	}
	n := state.dash.Renders()
	if n == state.renders {
		return
	}
	state.renders = n
	dpr := state.dash.Window().DevicePixelRatio()
	setFrame(state.ratioImg, state.dash.Frame(state.dcfg.RatioCanvasID), dpr)
	setFrame(state.vectorImg, state.dash.Frame(state.dcfg.VectorCanvasID), dpr)
	state.ratioTap.clear()
	state.vectorTap.clear()
}

// setFrame decodes a PNG frame into img. The bitmap is in device pixels, so its
// layout size is scaled back by dpr.
func setFrame(img *canvas.Image, data []byte, dpr float64) {
	if img == nil || len(data) == 0 {
		return
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		logging.Warnf("viewer: decode frame: %v", err)
		return
	}
	b := decoded.Bounds()
	dpr = surface.NormalizeDPR(dpr)
	img.Image = decoded
	img.SetMinSize(fyne.NewSize(float32(float64(b.Dx())/dpr), float32(float64(b.Dy())/dpr)))
	img.Refresh()
}

// tap maps a tap on an overlay to chart CSS pixels, resolves it through the
// dashboard and returns where the tooltip anchor lands in the overlay.
func (state *uiState) tap(canvasID string, pos fyne.Position, size fyne.Size) ([]string, fyne.Position, bool) {
	img := state.ratioImg
	other := state.vectorTap
	if canvasID == state.dcfg.VectorCanvasID {
		img = state.vectorImg
		other = state.ratioTap
	}
	if state.dash == nil || img.Image == nil {
		return nil, fyne.Position{}, false
	}
	other.clear()
	b := img.Image.Bounds()
	dpr := float32(state.dash.Window().DevicePixelRatio())
	cx, cy, ok := uihelpers.ViewToCSS(pos.X, pos.Y, float32(b.Dx()), float32(b.Dy()), size.Width, size.Height, dpr)
	if !ok {
		return nil, fyne.Position{}, false
	}
	lines, hit := state.dash.Click(canvasID, float64(cx), float64(cy))
	if !hit {
		return nil, fyne.Position{}, false
	}
	// anchor at the tooltip element's clamped position
	tx, ty := state.dash.Document().Tooltip(state.dcfg.TooltipID).Position()
	vx, vy := uihelpers.CSSToView(float32(tx), float32(ty), float32(b.Dx()), float32(b.Dy()), size.Width, size.Height, dpr)
	return lines, fyne.NewPos(vx, vy), true
}

func exportChartPNG(state *uiState, img *canvas.Image, defaultName string) {
	if img == nil || img.Image == nil || state.dash == nil {
		dialog.ShowInformation("Exportar", "No hay gráfico para exportar.", state.window)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		out := img.Image
		if state.filePath != "" {
			out = render.Caption(out, filepath.Base(state.filePath))
		}
		if err := png.Encode(wc, out); err != nil {
			dialog.ShowError(fmt.Errorf("export %s: %w", defaultName, err), state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}

// requestAdvice asks the assistant in the background; the client always returns
// a paragraph, falling back to the local one.
func requestAdvice(state *uiState) {
	if len(state.payload.Records) == 0 {
		dialog.ShowInformation("Asistente", "No hay datos del dashboard.", state.window)
		return
	}
	state.adviceLabel.SetText("Consultando al asistente…")
	c := assistant.NewClient(assistant.Config{
		APIKey:   state.cfg.Assistant.APIKey,
		Model:    state.cfg.Assistant.Model,
		Endpoint: state.cfg.Assistant.Endpoint,
		Timeout:  state.cfg.Assistant.Timeout(),
	})
	p := state.payload
	go func() {
		text := c.Summarize(context.Background(), p.Setup, p.Records)
		fyne.Do(func() {
			state.advice = text
			state.adviceLabel.SetText(text)
		})
	}()
}

// saveNotebook stores the current winner and advice in the app preferences.
func saveNotebook(state *uiState) {
	snap := notebookSnapshot(state.payload.Records, state.advice)
	if snap.Empty() {
		dialog.ShowInformation("Cuaderno", "Nada que guardar todavía.", state.window)
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString(notebook.WinnerKey, snap.Winner)
	prefs.SetString(notebook.TextKey, snap.Text)
	refreshNotebook(state)
}

// notebookSnapshot picks the winner among named rows and bolds it in the text.
func notebookSnapshot(records []decision.Record, advice string) notebook.Snapshot {
	named := make([]decision.Record, 0, len(records))
	for _, r := range records {
		if decision.Name(r) != "" {
			named = append(named, r)
		}
	}
	var snap notebook.Snapshot
	if w, ok := decision.Winner(decision.Normalize(named)); ok {
		snap.Winner = w.Name
		if advice == "" {
			advice = fmt.Sprintf("Alternativa recomendada: %s (%s por unidad de ventaja).", w.Name, interact.RatioText(w.Ratio))
		}
		if !strings.Contains(advice, "**") {
			advice = strings.Replace(advice, w.Name, "**"+w.Name+"**", 1)
		}
	}
	snap.Text = strings.TrimSpace(advice)
	return snap
}

func refreshNotebook(state *uiState) {
	snap := notebook.Load(state.app.Preferences())
	state.winnerText.Segments = winnerSegments(snap)
	state.winnerText.Refresh()
	state.notebookText.Segments = notebookSegments(snap.Text)
	state.notebookText.Refresh()
}

func winnerSegments(snap notebook.Snapshot) []widget.RichTextSegment {
	if snap.Empty() {
		return []widget.RichTextSegment{&widget.TextSegment{Text: "Sin notas guardadas."}}
	}
	if snap.Winner == "" {
		return nil
	}
	return []widget.RichTextSegment{
		&widget.TextSegment{Text: "Última alternativa elegida: ", Style: widget.RichTextStyleInline},
		&widget.TextSegment{Text: snap.Winner, Style: widget.RichTextStyleStrong},
	}
}

// notebookSegments renders **x** markers as strong runs.
func notebookSegments(text string) []widget.RichTextSegment {
	var out []widget.RichTextSegment
	for _, s := range notebook.Spans(text) {
		style := widget.RichTextStyleInline
		if s.Bold {
			style = widget.RichTextStyleStrong
		}
		out = append(out, &widget.TextSegment{Text: s.Text, Style: style})
	}
	return out
}
