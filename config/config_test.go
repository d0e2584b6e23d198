package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roitracker/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "tracker.yaml", `
session:
  tracker: csrt
  roi_percent: 25
  max_lost_frames: 15
video:
  codecs: [MJPG]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "CSRT", cfg.Session.Tracker)
	assert.Equal(t, 25.0, cfg.Session.ROIPercent)
	assert.Equal(t, 15, cfg.Session.MaxLostFrames)
	assert.Equal(t, "output.mp4", cfg.Session.OutputPath)
	assert.Equal(t, "log.csv", cfg.Session.LogPath)
	assert.Equal(t, []string{"MJPG"}, cfg.Video.Codecs)
	assert.Equal(t, 30.0, cfg.Video.FPS)
	assert.Equal(t, types.DefaultUIConfig(), cfg.UI)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"wrong extension", "tracker.json", `{}`},
		{"unknown key", "tracker.yaml", "session:\n  roi: 10\n"},
		{"roi out of range", "tracker.yaml", "session:\n  roi_percent: 150\n"},
		{"negative lost frames", "tracker.yaml", "session:\n  max_lost_frames: -1\n"},
		{"bad codec", "tracker.yaml", "video:\n  codecs: [h264x]\n"},
		{"not yaml", "tracker.yaml", "session: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
