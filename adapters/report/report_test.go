package report

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Go-routine-4595/faultzero-sim/model"
	"github.com/Go-routine-4595/faultzero-sim/service"
)

type drawn struct {
	page int
	text string
	x, y float64
}

// fakeDocument records what is drawn, page by page.
type fakeDocument struct {
	width, height float64
	pages         int
	current       int
	texts         []drawn
	failOn        string
	saveErr       error
	saved         string
}

func newFakeDocument(height float64) *fakeDocument {
	return &fakeDocument{width: 210, height: height, pages: 1, current: 1}
}

func (f *fakeDocument) SetStyle(Style)                       {}
func (f *fakeDocument) FillRect(_, _, _, _ float64, _ Color) {}
func (f *fakeDocument) PageCount() int                       { return f.pages }
func (f *fakeDocument) PageSize() (float64, float64)         { return f.width, f.height }

func (f *fakeDocument) DrawText(text string, x, y float64) error {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return errors.New("glyph missing")
	}
	f.texts = append(f.texts, drawn{page: f.current, text: text, x: x, y: y})
	return nil
}

func (f *fakeDocument) NewPage() {
	f.pages++
	f.current = f.pages
}

func (f *fakeDocument) SetPage(n int) { f.current = n }

func (f *fakeDocument) SplitText(text string, width float64) []string {
	if text == "" {
		return nil
	}
	// roughly two characters per millimetre
	var (
		lines []string
		limit = int(width * 2)
	)
	for len(text) > limit {
		lines = append(lines, text[:limit])
		text = text[limit:]
	}
	return append(lines, text)
}

func (f *fakeDocument) Save(path string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = path
	return os.WriteFile(path, []byte("%PDF-fake"), 0o644)
}

func (f *fakeDocument) find(sub string) []drawn {
	var out []drawn
	for _, d := range f.texts {
		if strings.Contains(d.text, sub) {
			out = append(out, d)
		}
	}
	return out
}

var reportDay = time.Date(2024, time.March, 13, 9, 30, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, doc *fakeDocument) *Generator {
	g := NewGenerator(ReportConfig{OutputDir: t.TempDir()}, func(PageSize) (Document, error) {
		return doc, nil
	}, zerolog.Nop())
	g.now = func() time.Time { return reportDay }
	return g
}

func sampleData(conf Config) Data {
	s := service.NewService(service.WithSeed(5))
	return DataFrom(s.Generate(model.Focus{MachineID: 1, Metric: model.MetricTemperature}, 1), conf)
}

func TestGenerateFullReport(t *testing.T) {
	var (
		doc      = newFakeDocument(297)
		g        = newTestGenerator(t, doc)
		conf     = DefaultConfig()
		progress []float64
	)
	conf.CustomerName = "Acme Metal Works"
	conf.ReportDescription = strings.Repeat("Quarterly review of the press line. ", 10)

	res, err := g.Generate(sampleData(conf), func(p float64) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(res.Path) != "Acme_Metal_Works_Machine_Report_2024-03-13.pdf" {
		t.Fatalf("unexpected file name %s", res.Path)
	}
	if _, err = os.Stat(res.Path); err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if res.Pages != doc.pages || res.Pages < 2 {
		t.Fatalf("expected multi page report, got %d pages (doc has %d)", res.Pages, doc.pages)
	}

	want := []float64{0.15, 0.3, 0.5, 0.65, 0.8, 0.9, 0.95, 1}
	if len(progress) != len(want) {
		t.Fatalf("expected progress %v, got %v", want, progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("expected progress %v, got %v", want, progress)
		}
	}

	for _, title := range []string{"Executive Summary", "Machine Status Overview", "Active Alerts & Anomalies", "Energy Analysis & ROI", "Idle Time Analysis", "AI-Powered Recommendations"} {
		if len(doc.find(title)) != 1 {
			t.Fatalf("section %q missing", title)
		}
	}
	if got := len(doc.find("Customer: Acme Metal Works")); got != 1 {
		t.Fatalf("customer line drawn %d times", got)
	}
}

func TestFooterOnEveryPage(t *testing.T) {
	doc := newFakeDocument(120)
	g := newTestGenerator(t, doc)

	if _, err := g.Generate(sampleData(DefaultConfig()), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	footers := doc.find("Generated by FaultZero AI")
	if len(footers) != doc.pages {
		t.Fatalf("expected %d footers, got %d", doc.pages, len(footers))
	}
	for i, f := range footers {
		want := "Page " + strconv.Itoa(i+1) + " of " + strconv.Itoa(doc.pages) + " | Generated by FaultZero AI | 2024-03-13"
		if f.page != i+1 || f.text != want {
			t.Fatalf("footer %d: got %q on page %d", i, f.text, f.page)
		}
		if f.y != 110 {
			t.Fatalf("footer drawn at y=%v", f.y)
		}
	}
}

func TestContentStaysAboveBottomMargin(t *testing.T) {
	doc := newFakeDocument(120)
	g := newTestGenerator(t, doc)

	if _, err := g.Generate(sampleData(DefaultConfig()), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range doc.texts {
		if strings.Contains(d.text, "Generated by FaultZero AI") {
			continue
		}
		// rows are drawn 2mm below the tracked position
		if d.y > 120-margin+2 {
			t.Fatalf("%q drawn at y=%v on page %d", d.text, d.y, d.page)
		}
	}
}

func TestAlertAfterBreakDrawnOnNewPage(t *testing.T) {
	doc := newFakeDocument(120)
	g := newTestGenerator(t, doc)
	conf := DefaultConfig()
	conf.IncludeMachineDetails = false
	conf.IncludeEnergyAnalysis = false
	conf.IncludeRecommendations = false

	data := sampleData(conf)
	data.Alerts = nil
	for i := 0; i < maxAlerts; i++ {
		data.Alerts = append(data.Alerts, model.Alert{
			MachineID: i%5 + 1,
			Message:   "Bearing check " + strconv.Itoa(i),
			Timestamp: reportDay,
			Priority:  model.PriorityHigh,
		})
	}

	if _, err := g.Generate(data, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	heading := doc.find("Active Alerts & Anomalies")
	if len(heading) != 1 {
		t.Fatalf("alerts heading drawn %d times", len(heading))
	}

	page := heading[0].page
	for i, a := range data.Alerts {
		msg := doc.find(a.Message)
		if len(msg) != 1 {
			t.Fatalf("alert %d drawn %d times", i, len(msg))
		}
		var head *drawn
		for _, d := range doc.find("HIGH - Machine " + strconv.Itoa(a.MachineID)) {
			if d.page == msg[0].page && d.y == msg[0].y-5 {
				head = &d
				break
			}
		}
		if head == nil {
			t.Fatalf("alert %d split from its headline on page %d", i, msg[0].page)
		}
		if head.page != page {
			if head.y != topY {
				t.Fatalf("alert %d after a break drawn at y=%v, want %v", i, head.y, float64(topY))
			}
			page = head.page
		}
	}
	if page == heading[0].page {
		t.Fatalf("expected the alerts to run onto a new page")
	}
}

func TestMachineHeaderRepeatsAfterBreak(t *testing.T) {
	doc := newFakeDocument(130)
	g := newTestGenerator(t, doc)
	conf := DefaultConfig()
	conf.IncludeAlerts = false
	conf.IncludeEnergyAnalysis = false
	conf.IncludeRecommendations = false

	data := sampleData(conf)
	for i := 0; i < 3; i++ {
		data.Machines = append(data.Machines, data.Machines...)
	}
	if _, err := g.Generate(data, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages := map[int]bool{}
	for _, d := range doc.texts {
		if d.text == "Health" {
			pages[d.page] = true
		}
	}
	if len(pages) < 2 {
		t.Fatalf("expected machine table header on several pages, got pages %v", pages)
	}
}

func TestSelectedMachinesFilterTables(t *testing.T) {
	doc := newFakeDocument(297)
	g := newTestGenerator(t, doc)
	conf := DefaultConfig()
	conf.SelectedMachines = []int{2, 4}

	if _, err := g.Generate(sampleData(conf), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range doc.texts {
		if d.x == 25 && (d.text == "1" || d.text == "3" || d.text == "5") {
			t.Fatalf("unselected machine %s in machine table", d.text)
		}
		if d.text == "Machine 5" || d.text == "Machine 1" {
			t.Fatalf("unselected %s in idle table", d.text)
		}
	}
	if len(doc.find("Machine 2")) == 0 || len(doc.find("Machine 4")) == 0 {
		t.Fatalf("selected machines missing from idle table")
	}
}

func TestValidationHappensBeforeDocument(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"empty selection", func(c *Config) { c.SelectedMachines = []int{} }, ErrNoMachinesSelected},
		{"unknown machine", func(c *Config) { c.SelectedMachines = []int{7} }, ErrInvalidConfig},
		{"report type", func(c *Config) { c.ReportType = "weekly" }, ErrInvalidConfig},
		{"date range", func(c *Config) { c.DateRange = "1year" }, ErrInvalidConfig},
		{"page size", func(c *Config) { c.PageSize = "A3" }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			g := NewGenerator(ReportConfig{OutputDir: t.TempDir()}, func(PageSize) (Document, error) {
				called = true
				return newFakeDocument(297), nil
			}, zerolog.Nop())

			conf := DefaultConfig()
			tt.edit(&conf)
			if _, err := g.Generate(sampleData(conf), nil); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if called {
				t.Fatalf("document created for invalid config")
			}
		})
	}
}

func TestCollaboratorFailuresAreRetryable(t *testing.T) {
	g := NewGenerator(ReportConfig{OutputDir: t.TempDir()}, func(PageSize) (Document, error) {
		return nil, errors.New("no fonts")
	}, zerolog.Nop())
	if _, err := g.Generate(sampleData(DefaultConfig()), nil); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed from factory, got %v", err)
	}

	doc := newFakeDocument(297)
	doc.saveErr = errors.New("disk full")
	g = newTestGenerator(t, doc)
	var last float64
	if _, err := g.Generate(sampleData(DefaultConfig()), func(p float64) { last = p }); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed from save, got %v", err)
	}
	if last != 0.95 {
		t.Fatalf("progress must stop before 1 on a failed save, got %v", last)
	}
}

func TestSafeText(t *testing.T) {
	doc := newFakeDocument(297)
	g := newTestGenerator(t, doc)
	doc.failOn = "Acme"
	conf := DefaultConfig()
	conf.CustomerName = "Acme"
	conf.ReportTitle = "Bericht für Maschinen"

	if _, err := g.Generate(sampleData(conf), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.find(errMarker)) != 1 {
		t.Fatalf("expected one error marker, got %d", len(doc.find(errMarker)))
	}
	if len(doc.find("Bericht fr Maschinen")) != 1 {
		t.Fatalf("non ASCII characters not stripped from title")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		customer string
		want     string
	}{
		{"", "Machine_Report_2024-03-13.pdf"},
		{"Acme", "Acme_Machine_Report_2024-03-13.pdf"},
		{"  Big   Co ", "Big_Co_Machine_Report_2024-03-13.pdf"},
		{"../etc/passwd", "..etcpasswd_Machine_Report_2024-03-13.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.customer, reportDay); got != tt.want {
			t.Fatalf("FileName(%q) = %q, want %q", tt.customer, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     string
	}{
		{75.8, 2, "75.8"},
		{45, 2, "45"},
		{24.949, 2, "24.95"},
		{29.6, 0, "30"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.v, tt.decimals); got != tt.want {
			t.Fatalf("formatNumber(%v, %d) = %q, want %q", tt.v, tt.decimals, got, tt.want)
		}
	}
}
