package calibration

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.json")
	var buf bytes.Buffer

	res, err := Run(context.Background(), Options{
		N:           2000,
		Workers:     []int{1, 2, 3},
		Repeats:     2,
		ProfilePath: path,
	}, &buf)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.BestWorkers < 1 || res.BestWorkers > 3 {
		t.Errorf("BestWorkers = %d, want one of 1..3", res.BestWorkers)
	}
	if len(res.results) != 3 {
		t.Errorf("got %d results, want 3", len(res.results))
	}
	for _, r := range res.results {
		if r.Err != nil {
			t.Errorf("workers=%d failed: %v", r.Workers, r.Err)
		}
	}

	out := buf.String()
	for _, want := range []string{"Calibration Summary", "Workers", "(Optimal)", "best worker count"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	w, ok := LoadCachedWorkers(path, "big", time.Hour)
	if !ok || w != res.BestWorkers {
		t.Errorf("saved profile = (%d, %v), want (%d, true)", w, ok, res.BestWorkers)
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	t.Parallel()
	_, err := Run(context.Background(), Options{N: 10, Backend: "abacus"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{N: 10, Workers: []int{1}}, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFastest(t *testing.T) {
	t.Parallel()
	results := []calibrationResult{
		{Workers: 1, Duration: 40 * time.Millisecond},
		{Workers: 2, Duration: 15 * time.Millisecond},
		{Workers: 4, Err: errors.New("boom")},
		{Workers: 8, Duration: 15 * time.Millisecond},
	}
	best, ok := fastest(results)
	if !ok || best.Workers != 2 {
		t.Errorf("fastest = (%d, %v), want (2, true)", best.Workers, ok)
	}

	if _, ok := fastest([]calibrationResult{{Workers: 1, Err: errors.New("x")}}); ok {
		t.Error("expected no result when every count failed")
	}
}

func TestPrintCalibrationResults(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printCalibrationResults(&buf, []calibrationResult{
		{Workers: 1, Duration: 40 * time.Millisecond},
		{Workers: 2, Duration: 20 * time.Millisecond},
		{Workers: 4, Err: errors.New("boom")},
	}, 2)

	out := buf.String()
	if !strings.Contains(out, "2.00x") {
		t.Errorf("expected a 2.00x speedup for two workers:\n%s", out)
	}
	if !strings.Contains(out, "N/A") {
		t.Errorf("expected N/A for the failed count:\n%s", out)
	}
	if strings.Count(out, "(Optimal)") != 1 {
		t.Errorf("expected exactly one optimal marker:\n%s", out)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	t.Parallel()
	full := Options{}.withDefaults()
	if !slices.Equal(full.Workers, GenerateWorkerCounts()) {
		t.Errorf("Workers = %v, want the full list %v", full.Workers, GenerateWorkerCounts())
	}
	if full.N != DefaultCalibrationN || full.Repeats != 1 || full.Logger == nil {
		t.Errorf("unexpected defaults: N=%d Repeats=%d Logger=%v", full.N, full.Repeats, full.Logger)
	}

	quick := Options{Quick: true}.withDefaults()
	if !slices.Equal(quick.Workers, GenerateQuickWorkerCounts()) {
		t.Errorf("Workers = %v, want the quick list %v", quick.Workers, GenerateQuickWorkerCounts())
	}

	pinned := Options{Quick: true, Workers: []int{3}}.withDefaults()
	if !slices.Equal(pinned.Workers, []int{3}) {
		t.Errorf("explicit Workers overridden: %v", pinned.Workers)
	}
}
