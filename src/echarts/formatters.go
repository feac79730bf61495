package echarts

import "github.com/go-echarts/go-echarts/v2/opts"

// Tooltip formatters run in the browser. The ratio bar carries "-" for missing
// ratios; the vector series carry [cost, total, ratio] on the data vertex.
var (
	ratioTooltip = opts.FuncOpts(`function (p) {
		var v = p.value;
		if (v === '-' || v === null || v === undefined) { return p.name + '<br/>Sin dato'; }
		return p.name + '<br/>S/ ' + Number(v).toFixed(6);
	}`)

	vectorTooltip = opts.FuncOpts(`function (p) {
		if (p.dataIndex === 0) { return ''; }
		var v = p.value || [];
		var r = (v[2] === null || v[2] === undefined) ? 'Sin dato' : Number(v[2]).toFixed(6);
		return p.seriesName + '<br/>Costo: S/ ' + Number(v[0]).toFixed(2) +
			'<br/>Ventaja: ' + Number(v[1]).toFixed(2) + '<br/>Ratio: ' + r;
	}`)
)
