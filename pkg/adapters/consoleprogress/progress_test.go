package consoleprogress

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgress_RendersStages(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithLabels(map[string]string{"extract": "Extracting frames"}))

	for i := 1; i <= 3; i++ {
		p.Report("extract", i, 3)
	}
	p.Report("transform", 1, 4)
	p.Close()

	out := buf.String()
	if !strings.Contains(out, "Extracting frames") {
		t.Errorf("output missing label: %q", out)
	}
	if !strings.Contains(out, "transform") {
		t.Errorf("output missing unlabeled stage: %q", out)
	}
	if !strings.Contains(out, "3/3") {
		t.Errorf("output missing final count: %q", out)
	}
}

func TestProgress_StageSwitchFinishesBar(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Report("extract", 1, 10)
	if p.stage != "extract" || p.bar == nil {
		t.Fatal("expected an open extract bar")
	}

	p.Report("resample", 0, 5)
	if p.stage != "resample" {
		t.Errorf("stage = %q, want resample", p.stage)
	}

	p.Report("resample", 5, 5)
	if p.bar != nil {
		t.Error("expected bar to be finished when done reaches total")
	}
}

func TestProgress_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Report("extract", 1, 0)
	p.Report("extract", 2, 0)
	if p.bar == nil {
		t.Fatal("expected bar for unknown total to stay open")
	}
	p.Close()
	if p.bar != nil {
		t.Error("expected Close to finish the bar")
	}
}

func TestNoop(t *testing.T) {
	Noop{}.Report("extract", 1, 1)
}
