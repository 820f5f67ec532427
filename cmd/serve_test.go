package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/podforge/podforge-api/pkg/audio"
	"github.com/podforge/podforge-api/pkg/config"
)

func TestServeCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{
			name:           "serve command with help",
			args:           []string{"serve", "--help"},
			wantErr:        false,
			expectedOutput: "Start the PodForge API server",
		},
		{
			name:           "serve command with invalid port",
			args:           []string{"serve", "--port", "invalid"},
			wantErr:        true,
			expectedOutput: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.expectedOutput != "" && !strings.Contains(buf.String(), tt.expectedOutput) {
				t.Errorf("Expected output to contain %q, got %q", tt.expectedOutput, buf.String())
			}
		})
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCmd()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	if err != nil {
		t.Fatalf("Failed to find serve command: %v", err)
	}

	// Test port flag
	portFlag := serveCmd.Flags().Lookup("port")
	if portFlag == nil {
		t.Error("Expected port flag to be registered")
	}

	// Test host flag
	hostFlag := serveCmd.Flags().Lookup("host")
	if hostFlag == nil {
		t.Error("Expected host flag to be registered")
	}
}

func TestVoicePool(t *testing.T) {
	pool := voicePool(config.VoicesConfig{
		Pool: []config.Voice{
			{ID: "v1", Name: "Aaron", Language: "en"},
			{ID: "v2", Name: "Bella"},
		},
	})

	if len(pool) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(pool))
	}
	if pool[0].ID != "v1" || pool[0].Name != "Aaron" || pool[0].Language != "en" {
		t.Errorf("Unexpected first voice: %+v", pool[0])
	}
	if pool[1].Language != "" {
		t.Errorf("Expected empty language for second voice, got %q", pool[1].Language)
	}
}

func TestLoadMusicBeds(t *testing.T) {
	t.Run("empty dir setting disables music", func(t *testing.T) {
		beds, err := loadMusicBeds("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if beds != nil {
			t.Errorf("Expected nil beds, got %v", beds)
		}
	})

	t.Run("missing directory disables music", func(t *testing.T) {
		beds, err := loadMusicBeds(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if beds != nil {
			t.Errorf("Expected nil beds, got %v", beds)
		}
	})

	t.Run("loads wav files by style name", func(t *testing.T) {
		dir := t.TempDir()
		clip := audio.Silence(24000, 100*time.Millisecond)
		if err := os.WriteFile(filepath.Join(dir, "calm.wav"), audio.EncodeWAV(clip), 0o644); err != nil {
			t.Fatalf("Failed to write music bed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}

		beds, err := loadMusicBeds(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(beds) != 1 {
			t.Fatalf("Expected 1 bed, got %d", len(beds))
		}
		if beds["calm"] == nil {
			t.Error("Expected bed registered under style 'calm'")
		}
	})
}
