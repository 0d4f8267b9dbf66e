package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"

	"github.com/user/scribbler/pkg/adapters/ffmpegdecoder"
	"github.com/user/scribbler/pkg/adapters/osfilesystem"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
	"github.com/user/scribbler/pkg/source"
)

// infoAction prints source metadata and the suggested output rates.
func infoAction(c *cli.Context) error {
	if !c.Args().Present() {
		return fmt.Errorf("%w: %s", pipeline.ErrInvalidRequest, l10n.T("a video argument is required"))
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	path := c.Args().First()
	if err := source.Validate(osfilesystem.New(), path); err != nil {
		return err
	}

	meta, err := ffmpegdecoder.New(log.WithComponent("decoder")).Probe(c.Context, path)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrSourceUnreadable, err)
	}

	fmt.Fprintln(c.App.Writer, renderMetadata(path, meta))
	fmt.Fprintln(c.App.Writer, renderFPSOptions(meta))
	return nil
}

func renderMetadata(path string, meta ports.VideoMetadata) string {
	frames := l10n.T("Unknown")
	duration := l10n.T("Unknown")
	if meta.FrameCount > 0 {
		frames = fmt.Sprintf("%d", meta.FrameCount)
		duration = fmt.Sprintf("%.2f s", meta.Duration())
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(l10n.T("Source"))
	tw.AppendRows([]table.Row{
		{l10n.T("File"), path},
		{l10n.T("Frame Rate"), fmt.Sprintf("%.2f fps", meta.FPS)},
		{l10n.T("Frames"), frames},
		{l10n.T("Resolution"), fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
		{l10n.T("Duration"), duration},
	})
	if meta.Codec != "" {
		tw.AppendRow(table.Row{l10n.T("Codec"), meta.Codec})
	}
	return tw.Render()
}

// renderFPSOptions lists each suggested rate with its skip and the
// resulting frame count and length.
func renderFPSOptions(meta ports.VideoMetadata) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(l10n.T("Output FPS options"))
	tw.AppendHeader(table.Row{l10n.T("FPS"), l10n.T("Keep every"), l10n.T("Frames"), l10n.T("Duration")})

	for _, fps := range pipeline.FPSOptions(meta.FPS) {
		skip := pipeline.FrameSkip(meta.FPS, float64(fps))
		frames, duration := "-", "-"
		if meta.FrameCount > 0 {
			n := pipeline.RetainedCount(meta.FrameCount, skip)
			frames = fmt.Sprintf("%d", n)
			duration = fmt.Sprintf("%.2f s", pipeline.OutputDuration(n, float64(fps)))
		}
		tw.AppendRow(table.Row{fps, skip, frames, duration})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}
