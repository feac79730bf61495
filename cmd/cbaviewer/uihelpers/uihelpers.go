package uihelpers

import "math"

// ComputeChartWidth derives the chart CSS width from the window width: ~95% of the
// window minus a margin for scrollbars, never below 480.
func ComputeChartWidth(winW float32) int {
	w := int(winW*95/100) - 12
	if w < 480 {
		w = 480
	}
	return w
}

// ComputeChartDimensions returns the chart CSS size for a width, keeping the 8:3
// aspect of the dashboard canvases.
func ComputeChartDimensions(w int) (int, int) {
	if w < 1 {
		w = 1
	}
	return w, w * 3 / 8
}

// ComputeContainRect returns where an image of imgW x imgH lands inside a view
// of viewW x viewH with contain scaling: origin, drawn size and scale factor.
func ComputeContainRect(imgW, imgH, viewW, viewH float32) (x, y, w, h, scale float32) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, 0, 0, 0
	}
	scale = float32(math.Min(float64(viewW/imgW), float64(viewH/imgH)))
	w = imgW * scale
	h = imgH * scale
	x = (viewW - w) / 2
	y = (viewH - h) / 2
	return x, y, w, h, scale
}

// ViewToCSS maps a position in the view to chart CSS pixels. imgW/imgH is the bitmap
// in device pixels and dpr its ratio to CSS pixels. ok is false outside the image.
func ViewToCSS(px, py, imgW, imgH, viewW, viewH, dpr float32) (cx, cy float32, ok bool) {
	x, y, w, h, scale := ComputeContainRect(imgW, imgH, viewW, viewH)
	if scale == 0 || dpr <= 0 {
		return 0, 0, false
	}
	if px < x || py < y || px > x+w || py > y+h {
		return 0, 0, false
	}
	return (px - x) / scale / dpr, (py - y) / scale / dpr, true
}

// CSSToView is the inverse of ViewToCSS.
func CSSToView(cx, cy, imgW, imgH, viewW, viewH, dpr float32) (float32, float32) {
	x, y, _, _, scale := ComputeContainRect(imgW, imgH, viewW, viewH)
	return x + cx*dpr*scale, y + cy*dpr*scale
}

// TruncatePath shortens p to at most n runes keeping its tail.
func TruncatePath(p string, n int) string {
	r := []rune(p)
	if n <= 3 || len(r) <= n {
		return p
	}
	return "..." + string(r[len(r)-(n-3):])
}
