package report

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Go-routine-4595/faultzero-sim/model"
)

const (
	margin     = 20.0
	topY       = 20.0
	rowHeight  = 8.0
	maxAlerts  = 10
	errMarker  = "(text rendering error)"
	dateLayout = "2006-01-02"
)

var (
	machineHeaders = []string{"ID", "Status", "Health", "RUL", "Temp", "Energy", "Idle"}
	machineCols    = []float64{15, 25, 20, 20, 20, 20, 20}
	idleHeaders    = []string{"Machine", "Idle Time", "Energy Waste", "Potential Savings"}
	idleCols       = []float64{30, 30, 40, 40}

	whitespace = regexp.MustCompile(`\s+`)
)

// Data is everything a report is drawn from.
type Data struct {
	Machines []model.MachineSnapshot
	Summary  model.DashboardSummary
	Alerts   []model.Alert
	Energy   model.EnergyBundle
	Insights model.ProductionInsights
	Config   Config
}

// DataFrom takes the report input out of a telemetry batch.
func DataFrom(t model.Telemetry, conf Config) Data {
	return Data{
		Machines: t.Machines,
		Summary:  t.Summary,
		Alerts:   t.Alerts,
		Energy:   t.Energy,
		Insights: t.Insights,
		Config:   conf,
	}
}

type Result struct {
	Path  string `json:"file"`
	Pages int    `json:"pages"`
}

type Generator struct {
	dir      string
	pageSize PageSize
	factory  DocumentFactory
	now      func() time.Time
	logger   zerolog.Logger
}

func NewGenerator(conf ReportConfig, factory DocumentFactory, logger zerolog.Logger) *Generator {
	if factory == nil {
		factory = NewPDFDocument
	}
	dir := conf.OutputDir
	if dir == "" {
		dir = "."
	}
	size := PageSize(conf.PageSize)
	if size == "" {
		size = PageA4
	}
	return &Generator{
		dir:      dir,
		pageSize: size,
		factory:  factory,
		now:      time.Now,
		logger:   logger,
	}
}

// FileName is where a report generated on day for customer is written.
func FileName(customer string, day time.Time) string {
	name := strings.TrimSpace(customer)
	name = strings.NewReplacer("/", "", "\\", "").Replace(name)
	name = whitespace.ReplaceAllString(name, "_")
	if name != "" {
		name += "_"
	}
	return name + "Machine_Report_" + day.Format(dateLayout) + ".pdf"
}

// Generate lays the data out on a new document and saves it. onProgress, when
// not nil, receives monotonically increasing values in [0,1].
func (g *Generator) Generate(data Data, onProgress func(float64)) (Result, error) {
	var (
		conf = data.Config
		now  = g.now()
		res  Result
	)

	if conf.PageSize == "" {
		conf.PageSize = g.pageSize
	}
	if err := conf.Validate(); err != nil {
		return res, err
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return res, errors.Join(ErrGenerationFailed, err)
	}

	doc, err := g.factory(conf.PageSize)
	if err != nil {
		return res, errors.Join(ErrGenerationFailed, err)
	}

	l := newLayout(doc, g.logger, onProgress)
	l.header(conf, now)
	l.summary(data.Summary)
	if conf.IncludeMachineDetails {
		l.machines(filterMachines(data.Machines, conf))
	}
	if conf.IncludeAlerts && len(data.Alerts) > 0 {
		l.alerts(data.Alerts)
	}
	if conf.IncludeEnergyAnalysis {
		l.energy(data.Energy, conf)
	}
	if conf.IncludeRecommendations && len(data.Insights.Recommendations) > 0 {
		l.recommendations(data.Insights.Recommendations)
	}
	l.footer(now)

	res.Path = filepath.Join(g.dir, FileName(conf.CustomerName, now))
	res.Pages = doc.PageCount()
	if err = doc.Save(res.Path); err != nil {
		return Result{}, errors.Join(ErrGenerationFailed, err)
	}
	l.progress(1)

	g.logger.Info().Str("file", res.Path).Int("pages", res.Pages).Msg("report generated")
	return res, nil
}

func filterMachines(machines []model.MachineSnapshot, conf Config) []model.MachineSnapshot {
	out := make([]model.MachineSnapshot, 0, len(machines))
	for _, m := range machines {
		if conf.selected(m.MachineID) {
			out = append(out, m)
		}
	}
	return out
}

type layout struct {
	doc        Document
	logger     zerolog.Logger
	onProgress func(float64)
	width      float64
	height     float64
	y          float64
}

func newLayout(doc Document, logger zerolog.Logger, onProgress func(float64)) *layout {
	w, h := doc.PageSize()
	return &layout{doc: doc, logger: logger, onProgress: onProgress, width: w, height: h, y: topY}
}

func (l *layout) progress(p float64) {
	if l.onProgress != nil {
		l.onProgress(math.Min(1, math.Max(0, p)))
	}
}

// breakIfNeeded starts a new page when required does not fit on the current one.
func (l *layout) breakIfNeeded(required float64) bool {
	if l.y+required > l.height-margin {
		l.doc.NewPage()
		l.y = topY
		return true
	}
	return false
}

// text draws s with the non ASCII characters removed. A drawing error leaves
// a marker in place of the text.
func (l *layout) text(s string, x, y float64) {
	if err := l.doc.DrawText(asciiOnly(s), x, y); err != nil {
		l.logger.Warn().Err(err).Msg("failed to draw report text")
		if err = l.doc.DrawText(errMarker, x, y); err != nil {
			l.logger.Error().Err(err).Msg("failed to draw report text marker")
		}
	}
}

func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7f {
			return -1
		}
		return r
	}, s)
}

func (l *layout) heading(s string) {
	l.doc.SetStyle(Style{Size: 16, Bold: true, Color: black})
	l.text(s, margin, l.y)
	l.y += 15
}

// pairs draws a striped two column label/value table.
func (l *layout) pairs(rows [][2]string) {
	for i, row := range rows {
		l.breakIfNeeded(rowHeight)
		if i%2 == 0 {
			l.doc.FillRect(margin, l.y-3, l.width-2*margin, rowHeight, stripe)
		}
		l.text(row[0], 25, l.y+2)
		l.text(row[1], l.width-60, l.y+2)
		l.y += rowHeight
	}
}

func (l *layout) tableHeader(headers []string, cols []float64) {
	l.doc.SetStyle(Style{Size: 9, Bold: true, Color: black})
	l.doc.FillRect(margin, l.y-5, l.width-2*margin, rowHeight, headerBg)
	x := 25.0
	for i, h := range headers {
		l.text(h, x, l.y)
		x += cols[i]
	}
	l.y += 10
	l.doc.SetStyle(Style{Size: 9, Color: black})
}

func (l *layout) header(conf Config, now time.Time) {
	l.doc.SetStyle(Style{Size: 24, Bold: true, Color: logoGrey})
	l.text("FAULT", margin, l.y)
	l.doc.SetStyle(Style{Size: 24, Bold: true, Color: logoBlue})
	l.text("ZERO", 75, l.y)
	l.y += 15

	title := conf.ReportTitle
	if title == "" {
		title = DefaultTitle
	}
	l.doc.SetStyle(Style{Size: 18, Bold: true, Color: black})
	l.text(title, margin, l.y)
	l.y += 10

	l.doc.SetStyle(Style{Size: 12, Color: black})
	if conf.CustomerName != "" {
		l.text("Customer: "+conf.CustomerName, margin, l.y)
		l.y += 6
	}
	l.text("Generated: "+now.Format(dateLayout), margin, l.y)
	l.text("Report Period: "+conf.DateRange.Label(), margin, l.y+6)
	l.y += 20

	if conf.ReportDescription != "" {
		l.doc.SetStyle(Style{Size: 10, Color: black})
		lines := l.doc.SplitText(asciiOnly(conf.ReportDescription), l.width-2*margin)
		for i, line := range lines {
			l.text(line, margin, l.y+float64(i)*4)
		}
		l.y += float64(len(lines))*4 + 10
	}
	l.progress(0.15)
}

func (l *layout) summary(s model.DashboardSummary) {
	l.breakIfNeeded(40)
	l.doc.SetStyle(Style{Size: 16, Bold: true, Color: black})
	l.text("Executive Summary", margin, l.y)
	l.y += 10

	l.doc.SetStyle(Style{Size: 10, Color: black})
	l.pairs([][2]string{
		{"Total Machines", strconv.Itoa(s.TotalMachines)},
		{"Healthy Machines", strconv.Itoa(s.HealthyMachines)},
		{"Warning Machines", strconv.Itoa(s.WarningMachines)},
		{"Critical Machines", strconv.Itoa(s.CriticalMachines)},
		{"Average Health Score", formatNumber(s.AvgHealthScore, 2) + "%"},
		{"Recent Anomalies", strconv.Itoa(s.RecentAnomalies)},
		{"Average Efficiency", formatNumber(s.AvgEfficiency, 2) + "%"},
		{"Total Energy Consumption", formatNumber(s.TotalEnergyConsumption, 2) + " kWh"},
		{"Potential Energy Savings", formatNumber(s.PotentialEnergySavings, 2) + " kWh"},
		{"Estimated ROI", strconv.Itoa(s.EstimatedROIDays) + " days"},
	})
	l.y += 10
	l.progress(0.3)
}

func statusColor(s model.Status) Color {
	switch s {
	case model.StatusHealthy:
		return green
	case model.StatusWarning:
		return amber
	}
	return red
}

func (l *layout) machines(machines []model.MachineSnapshot) {
	l.breakIfNeeded(60)
	l.heading("Machine Status Overview")
	l.tableHeader(machineHeaders, machineCols)

	for i, m := range machines {
		if l.breakIfNeeded(rowHeight) {
			l.tableHeader(machineHeaders, machineCols)
		}
		if i%2 == 0 {
			l.doc.FillRect(margin, l.y-3, l.width-2*margin, rowHeight, rowStripe)
		}
		row := []string{
			strconv.Itoa(m.MachineID),
			string(m.Status),
			formatNumber(m.HealthScore, 2) + "%",
			formatNumber(m.RULDays, 0) + "d",
			formatNumber(m.Temperature, 2) + "C",
			formatNumber(m.EnergyKW, 2) + "kW",
			formatNumber(m.IdleTimePct, 2) + "%",
		}
		x := 25.0
		for c, cell := range row {
			color := black
			if c == 1 {
				color = statusColor(m.Status)
			}
			l.doc.SetStyle(Style{Size: 9, Color: color})
			l.text(cell, x, l.y+2)
			x += machineCols[c]
		}
		l.y += rowHeight
	}
	l.y += 15
	l.progress(0.5)
}

func priorityColor(p model.Priority) Color {
	switch p {
	case model.PriorityHigh:
		return red
	case model.PriorityMedium:
		return amber
	}
	return blue
}

func (l *layout) alerts(alerts []model.Alert) {
	l.breakIfNeeded(40)
	l.heading("Active Alerts & Anomalies")

	if len(alerts) > maxAlerts {
		alerts = alerts[:maxAlerts]
	}
	for _, a := range alerts {
		l.breakIfNeeded(12)
		l.doc.SetStyle(Style{Size: 10, Bold: true, Color: priorityColor(a.Priority)})
		l.text(fmt.Sprintf("%s - Machine %d", strings.ToUpper(string(a.Priority)), a.MachineID), 25, l.y)
		l.doc.SetStyle(Style{Size: 10, Color: black})
		l.text(a.Message, 25, l.y+5)
		l.doc.SetStyle(Style{Size: 8, Color: grey})
		l.text(a.Timestamp.Format(time.RFC3339), 25, l.y+9)
		l.y += 15
	}
	l.y += 10
	l.progress(0.65)
}

func (l *layout) energy(e model.EnergyBundle, conf Config) {
	l.breakIfNeeded(50)
	l.heading("Energy Analysis & ROI")

	roi := e.ROI
	l.doc.SetStyle(Style{Size: 10, Color: black})
	l.pairs([][2]string{
		{"Initial Investment", "$" + formatNumber(roi.InitialInvestment, 2)},
		{"Annual Energy Savings", "$" + formatNumber(roi.EnergySavingsPerYear, 2)},
		{"Annual Maintenance Savings", "$" + formatNumber(roi.MaintenanceSavingsPerYear, 2)},
		{"Total Annual Savings", "$" + formatNumber(roi.TotalSavingsPerYear, 2)},
		{"ROI Period", formatNumber(roi.ROIYears, 2) + " years"},
		{"Payback Date", paybackDate(roi.PaybackDate)},
	})
	l.y += 15

	if len(e.IdleTimeWaste) > 0 {
		l.breakIfNeeded(30)
		l.doc.SetStyle(Style{Size: 14, Bold: true, Color: black})
		l.text("Idle Time Analysis", margin, l.y)
		l.y += 10
		l.tableHeader(idleHeaders, idleCols)

		i := 0
		for _, w := range e.IdleTimeWaste {
			if !conf.selected(w.MachineID) {
				continue
			}
			if l.breakIfNeeded(rowHeight) {
				l.tableHeader(idleHeaders, idleCols)
			}
			if i%2 == 0 {
				l.doc.FillRect(margin, l.y-3, l.width-2*margin, rowHeight, rowStripe)
			}
			row := []string{
				fmt.Sprintf("Machine %d", w.MachineID),
				formatNumber(w.IdleTimePct, 2) + "%",
				formatNumber(w.EnergyWasteKWh, 2) + " kWh",
				"$" + formatNumber(w.PotentialSavingsUSD, 2),
			}
			x := 25.0
			for c, cell := range row {
				l.text(cell, x, l.y+2)
				x += idleCols[c]
			}
			l.y += rowHeight
			i++
		}
		l.y += 15
	}
	l.progress(0.8)
}

func paybackDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(dateLayout)
}

func (l *layout) recommendations(recs []string) {
	l.breakIfNeeded(40)
	l.heading("AI-Powered Recommendations")

	for i, rec := range recs {
		l.doc.SetStyle(Style{Size: 10, Color: black})
		lines := l.doc.SplitText(asciiOnly(rec), l.width-50)
		l.breakIfNeeded(math.Max(15, float64(len(lines))*4+5))

		l.doc.SetStyle(Style{Size: 10, Color: blue})
		l.text(fmt.Sprintf("%d.", i+1), 25, l.y)
		l.doc.SetStyle(Style{Size: 10, Color: black})
		for j, line := range lines {
			l.text(line, 35, l.y+float64(j)*4)
		}
		l.y += float64(len(lines))*4 + 5
	}
	l.y += 10
	l.progress(0.9)
}

func (l *layout) footer(now time.Time) {
	total := l.doc.PageCount()
	for i := 1; i <= total; i++ {
		l.doc.SetPage(i)
		l.doc.SetStyle(Style{Size: 8, Color: grey})
		l.text(fmt.Sprintf("Page %d of %d | Generated by FaultZero AI | %s", i, total, now.Format(dateLayout)), margin, l.height-10)
	}
	l.progress(0.95)
}

// formatNumber renders v with at most decimals digits and no trailing zeros.
func formatNumber(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return trimZeros(strconv.FormatFloat(v, 'f', decimals, 64))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
