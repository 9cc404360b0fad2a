package chart

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockanalyzer/internal/model"
)

func testBars(count int) []model.Bar {
	end := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		c := 100 + float64(i%7) - float64(i%3)
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: float64(1000 + i*10),
		}
	}
	return bars
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AAPL_chart.png")
	s := Settings{
		UpColor:    "#2ecc71",
		DownColor:  "#e74c3c",
		Background: "#1e1e1e",
		DPI:        100,
	}
	if err := Render(testBars(60), "AAPL", path, s); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}

	// PNG signature
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sig := make([]byte, 8)
	if _, err := f.Read(sig); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	for i := range want {
		if sig[i] != want[i] {
			t.Fatalf("not a PNG file: % x", sig)
		}
	}
}

func TestRenderEmptySeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := Render(nil, "AAPL", path, Settings{DPI: 100}); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestRenderSingleBar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.png")
	s := Settings{UpColor: "#2ecc71", DownColor: "#e74c3c", Background: "#1e1e1e", DPI: 100}
	if err := Render(testBars(1), "AAPL", path, s); err != nil {
		t.Fatalf("single bar should render: %v", err)
	}
}
