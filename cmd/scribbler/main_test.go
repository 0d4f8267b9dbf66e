package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/scribbler/pkg/adapters/doodle"
	"github.com/user/scribbler/pkg/adapters/gemini"
	"github.com/user/scribbler/pkg/config"
	"github.com/user/scribbler/pkg/mocks"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

func TestBuildStrategy(t *testing.T) {
	cfg := config.Defaults()
	cfg.AI.APIKey = "k"
	renderer := &mocks.Renderer{}

	t.Run("ai", func(t *testing.T) {
		s, err := buildStrategy(cfg, pipeline.ModeAI, renderer)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := s.Primary.(*gemini.Client); !ok {
			t.Errorf("Primary = %T, want *gemini.Client", s.Primary)
		}
		if _, ok := s.Fallback.(*doodle.Transformer); !ok {
			t.Errorf("Fallback = %T, want *doodle.Transformer", s.Fallback)
		}
		if s.Concurrency != 5 || !s.Throttled {
			t.Errorf("Concurrency = %d, Throttled = %v", s.Concurrency, s.Throttled)
		}
	})

	t.Run("experimental", func(t *testing.T) {
		s, err := buildStrategy(cfg, pipeline.ModeExperimental, renderer)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := s.Primary.(*doodle.Transformer); !ok {
			t.Errorf("Primary = %T, want *doodle.Transformer", s.Primary)
		}
		if s.Concurrency != 10 || s.Throttled {
			t.Errorf("Concurrency = %d, Throttled = %v", s.Concurrency, s.Throttled)
		}
	})

	t.Run("bad palette", func(t *testing.T) {
		bad := cfg
		bad.Doodle.Colors = []string{"nope"}
		if _, err := buildStrategy(bad, pipeline.ModeExperimental, renderer); err == nil {
			t.Error("expected error")
		}
	})
}

func TestRenderFPSOptions(t *testing.T) {
	out := renderFPSOptions(ports.VideoMetadata{FPS: 30, FrameCount: 90, Width: 640, Height: 360})

	for _, want := range []string{"30", "15", "10", "45", "3.00 s"} {
		if !strings.Contains(out, want) {
			t.Errorf("options table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFPSOptions_UnknownLength(t *testing.T) {
	out := renderFPSOptions(ports.VideoMetadata{FPS: 24})
	if !strings.Contains(out, "-") {
		t.Errorf("expected placeholders for unknown length:\n%s", out)
	}
}

func TestRenderMetadata(t *testing.T) {
	out := renderMetadata("input/clip.mp4", ports.VideoMetadata{FPS: 29.97, FrameCount: 300, Width: 1280, Height: 720, Codec: "avc1"})
	for _, want := range []string{"input/clip.mp4", "29.97 fps", "300", "1280x720", "avc1"} {
		if !strings.Contains(out, want) {
			t.Errorf("metadata table missing %q:\n%s", want, out)
		}
	}
}

func TestApp_Version(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	if err := app.Run([]string{"scribbler", "version"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("version output %q missing %q", out.String(), version)
	}
}

func TestApp_InfoRequiresArgument(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	if err := app.Run([]string{"scribbler", "info"}); err == nil {
		t.Error("expected error without a video argument")
	}
}

func TestApp_RunRejectsUnknownMode(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	if err := app.Run([]string{"scribbler", "run", "--mode", "sketchy", "clip.mp4"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestApp_RunRequiresAPIKeyInAIMode(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run([]string{"scribbler", "--mode", "ai", "clip.mp4"})
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}
}
