// Package ffmpegbin locates the ffmpeg and ffprobe executables.
//
// Lookup order: an explicit path set with SetPath, the FFMPEG_PATH or
// FFPROBE_PATH environment variable, PATH, then common install locations.
package ffmpegbin

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// Tool names an executable this package can locate.
type Tool string

const (
	FFmpeg  Tool = "ffmpeg"
	FFprobe Tool = "ffprobe"
)

// ErrNotFound is returned when an executable cannot be located.
var ErrNotFound = errors.New("ffmpegbin: executable not found")

var (
	mu          sync.RWMutex
	customPaths = map[Tool]string{}
)

// SetPath overrides the lookup for a tool. An empty path restores the default search.
func SetPath(tool Tool, path string) {
	mu.Lock()
	defer mu.Unlock()
	if path == "" {
		delete(customPaths, tool)
		return
	}
	customPaths[tool] = path
}

// Find returns the path of the requested tool.
func Find(tool Tool) (string, error) {
	mu.RLock()
	custom := customPaths[tool]
	mu.RUnlock()

	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: %s custom path %s", ErrNotFound, tool, custom)
	}

	envVar := envVarFor(tool)
	if envPath := os.Getenv(envVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s", ErrNotFound, envVar, envPath)
	}

	execName := string(tool)
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, dir := range commonDirs() {
		p := filepath.Join(dir, execName)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, tool)
}

// Available reports whether both ffmpeg and ffprobe can be located.
func Available() bool {
	if _, err := Find(FFmpeg); err != nil {
		return false
	}
	_, err := Find(FFprobe)
	return err == nil
}

func envVarFor(tool Tool) string {
	if tool == FFprobe {
		return "FFPROBE_PATH"
	}
	return "FFMPEG_PATH"
}

func commonDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	default:
		return []string{"/usr/bin", "/usr/local/bin", "/opt/homebrew/bin", "/snap/bin"}
	}
}
