package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// Translator maps an English label to the display language.
type Translator func(key string) string

// MarkdownFormatter renders a Summary as a markdown document.
type MarkdownFormatter struct {
	t       Translator
	version string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the label translator.
func WithTranslator(t Translator) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.t = t
	}
}

// WithVersion adds the program version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter. Labels stay in English
// unless a translator is given.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		t: func(key string) string { return key },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder
	t := f.t

	fmt.Fprintf(&b, "# %s\n\n", t("Scribble Summary"))
	if s.RunID != "" {
		fmt.Fprintf(&b, "- **%s**: `%s`\n", t("Run ID"), s.RunID)
	}
	fmt.Fprintf(&b, "- **%s**: %s\n\n", t("Generated At"), s.GeneratedAt.Format(time.RFC3339))

	// Input
	fmt.Fprintf(&b, "## %s\n\n", t("Input"))
	f.table(&b, [][2]string{
		{t("Source"), s.Input.Path},
		{t("Frame Rate"), fmt.Sprintf("%.2f fps", s.Input.FPS)},
		{t("Frames"), f.count(s.Input.FrameCount)},
		{t("Resolution"), resolution(s.Input.Width, s.Input.Height, t)},
		{t("Duration"), f.seconds(s.Input.DurationSec)},
	})

	// Settings
	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	rows := [][2]string{
		{t("Mode"), s.Settings.Mode},
	}
	if s.Settings.Model != "" {
		rows = append(rows, [2]string{t("Model"), s.Settings.Model})
	}
	rows = append(rows,
		[2]string{t("Target FPS"), fmt.Sprintf("%.2f fps", s.Settings.TargetFPS)},
		[2]string{t("Frame Skip"), fmt.Sprintf("%d", s.Settings.FrameSkip)},
	)
	if s.Settings.DurationCutoff != nil {
		rows = append(rows, [2]string{t("Duration Cutoff"), fmt.Sprintf("%.2f s", *s.Settings.DurationCutoff)})
	}
	if s.Settings.Concurrency > 0 {
		rows = append(rows, [2]string{t("Concurrency"), fmt.Sprintf("%d", s.Settings.Concurrency)})
	}
	if s.Settings.Delay > 0 {
		rows = append(rows, [2]string{t("Request Delay"), s.Settings.Delay.String()})
	}
	f.table(&b, rows)

	// Result
	fmt.Fprintf(&b, "## %s\n\n", t("Result"))
	rows = [][2]string{
		{t("Output"), s.Result.OutputPath},
		{t("Extracted Frames"), fmt.Sprintf("%d", s.Result.Extracted)},
		{t("Retained Frames"), fmt.Sprintf("%d", s.Result.Retained)},
		{t("Fallback Frames"), fmt.Sprintf("%d", s.Result.Fallbacks)},
	}
	if s.Result.Resized > 0 {
		rows = append(rows, [2]string{t("Resized Frames"), fmt.Sprintf("%d", s.Result.Resized)})
	}
	rows = append(rows,
		[2]string{t("Resolution"), resolution(s.Result.Width, s.Result.Height, t)},
		[2]string{t("Duration"), f.seconds(s.Result.DurationSec)},
	)
	if s.Result.SpeedFactor > 0 {
		rows = append(rows, [2]string{t("Speed"), fmt.Sprintf("%.2fx", s.Result.SpeedFactor)})
	}
	rows = append(rows, [2]string{t("File Size"), formatBytes(s.Result.FileSize)})
	f.table(&b, rows)

	if len(s.Stages) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Stage Timings"))
		rows = rows[:0]
		for _, st := range s.Stages {
			rows = append(rows, [2]string{t(st.Name), formatDuration(st.Duration)})
		}
		rows = append(rows, [2]string{t("Total"), formatDuration(s.TotalDuration())})
		f.table(&b, rows)
	}

	b.WriteString("---\n\n")
	if f.version != "" {
		fmt.Fprintf(&b, "*%s scribbler %s*\n", t("Generated by"), f.version)
	} else {
		fmt.Fprintf(&b, "*%s scribbler*\n", t("Generated by"))
	}

	return b.String()
}

func (f *MarkdownFormatter) table(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.t("Item"), f.t("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")
}

func (f *MarkdownFormatter) count(n int) string {
	if n <= 0 {
		return f.t("Unknown")
	}
	return fmt.Sprintf("%d", n)
}

func (f *MarkdownFormatter) seconds(sec float64) string {
	if sec <= 0 {
		return f.t("Unknown")
	}
	return fmt.Sprintf("%.2f s", sec)
}

func resolution(w, h int, t Translator) string {
	if w <= 0 || h <= 0 {
		return t("Unknown")
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
