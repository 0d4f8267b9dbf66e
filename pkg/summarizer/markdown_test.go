package summarizer

import (
	"strings"
	"testing"
	"time"
)

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	formatter := NewMarkdownFormatter()

	s := FromRun(testRunResult()).
		WithModel("gemini-2.5-flash-image", time.Second, 5).
		Build()
	s.GeneratedAt = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	result := formatter.Format(s)

	checks := []string{
		"# Scribble Summary",
		"`run-1`",
		"2024-01-15T10:30:00Z",
		"input/clip.mp4",
		"30.00 fps",
		"640x360",
		"3.00 s",
		"gemini-2.5-flash-image",
		"10.00 fps",
		"| Frame Skip | 3 |",
		"| Duration Cutoff | 2.00 s |",
		"| Fallback Frames | 4 |",
		"output/scribbled_clip.mp4",
		"2.00 KB",
		"## Stage Timings",
		"| transform | 10.00 s |",
		"| resample | 1 ms |",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}

	if strings.Contains(result, "Resized Frames") {
		t.Error("Resized Frames should be omitted when zero")
	}
}

func TestMarkdownFormatter_Format_StageOrder(t *testing.T) {
	result := NewMarkdownFormatter().Format(FromRun(testRunResult()).Build())

	extract := strings.Index(result, "| extract |")
	resample := strings.Index(result, "| resample |")
	transform := strings.Index(result, "| transform |")
	assemble := strings.Index(result, "| assemble |")
	if extract < 0 || !(extract < resample && resample < transform && transform < assemble) {
		t.Errorf("stages out of order: %d %d %d %d", extract, resample, transform, assemble)
	}
}

func TestMarkdownFormatter_Format_Unknowns(t *testing.T) {
	tests := []struct {
		name    string
		summary *Summary
		want    string
	}{
		{
			name:    "unknown frame count",
			summary: &Summary{Input: InputInfo{FPS: 25}},
			want:    "| Frames | Unknown |",
		},
		{
			name:    "unknown resolution",
			summary: &Summary{},
			want:    "| Resolution | Unknown |",
		},
		{
			name:    "no stages",
			summary: &Summary{},
			want:    "Generated by scribbler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewMarkdownFormatter().Format(tt.summary)
			if !strings.Contains(result, tt.want) {
				t.Errorf("expected %q in\n%s", tt.want, result)
			}
			if strings.Contains(result, "Stage Timings") {
				t.Error("Stage Timings should be omitted without stages")
			}
		})
	}
}

func TestMarkdownFormatter_ExperimentalOmitsModel(t *testing.T) {
	s := &Summary{Settings: Settings{Mode: "experimental"}}
	result := NewMarkdownFormatter().Format(s)

	if strings.Contains(result, "| Model |") {
		t.Error("model row should be omitted without a model")
	}
	if strings.Contains(result, "Duration Cutoff") {
		t.Error("cutoff row should be omitted without a cutoff")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Scribble Summary": "落書きサマリー",
			"Source":           "入力",
			"Unknown":          "不明",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	formatter := NewMarkdownFormatter(WithTranslator(translator))
	result := formatter.Format(&Summary{GeneratedAt: time.Now()})

	for _, want := range []string{"落書きサマリー", "入力", "不明"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	formatter := NewMarkdownFormatter(WithVersion("v1.2.0"))

	result := formatter.Format(&Summary{GeneratedAt: time.Now()})

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 ms"},
		{250 * time.Millisecond, "250 ms"},
		{1500 * time.Millisecond, "1.50 s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
