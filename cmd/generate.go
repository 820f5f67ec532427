package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/pkg/config"
)

var (
	generateKind     string
	generateFile     string
	generateLanguage string
	generateMinutes  int
	generateTone     string
	generateMusic    string
	generateOutput   string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [payload]",
	Short: "Generate a podcast episode from the command line",
	Long: `Run one podcast generation end to end without the API server.

The payload is the topic, URL, or raw text to build the episode from,
depending on --kind. Document inputs read the file named by --file
instead of a payload argument.

Example:
  podforge-api generate "history of container shipping"
  podforge-api generate --kind url https://example.com/article
  podforge-api generate --kind document --file ./paper.pdf --minutes 15`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateKind, "kind", "topic", "input kind (topic, url, text, document)")
	generateCmd.Flags().StringVar(&generateFile, "file", "", "file to ingest for document inputs")
	generateCmd.Flags().StringVar(&generateLanguage, "language", "", "script language (overrides config default)")
	generateCmd.Flags().IntVar(&generateMinutes, "minutes", 0, "target episode length in minutes")
	generateCmd.Flags().StringVar(&generateTone, "tone", "", "tone directive for the script")
	generateCmd.Flags().StringVar(&generateMusic, "music", "", "music bed style")
	generateCmd.Flags().StringVar(&generateOutput, "output", "", "also write the episode WAV to this path")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	req, err := generationRequest(args)
	if err != nil {
		return err
	}

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.Processing.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Processing.JobTimeout)
		defer cancel()
	}

	started := time.Now()
	artifact, err := pipe.Run(ctx, req, func(stage models.Stage) error {
		log.Printf("[INFO] Stage: %s", stage)
		return nil
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Episode generated in %s\n", time.Since(started).Round(time.Second))
	fmt.Fprintf(out, "Duration:   %s\n", (time.Duration(artifact.DurationMs) * time.Millisecond).Round(time.Second))
	fmt.Fprintf(out, "Audio:      %s\n", artifact.AudioURL)
	if artifact.TextURL != "" {
		fmt.Fprintf(out, "Transcript: %s\n", artifact.TextURL)
	}
	if artifact.MusicTrack != "" {
		fmt.Fprintf(out, "Music:      %s\n", artifact.MusicTrack)
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, artifact.Audio, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", generateOutput, err)
		}
		fmt.Fprintf(out, "Saved:      %s\n", generateOutput)
	}

	return nil
}

// generationRequest builds the request from the command flags and argument
func generationRequest(args []string) (*models.GenerationRequest, error) {
	kind := models.InputKind(generateKind)
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported input kind %q", generateKind)
	}

	var payload string
	if kind == models.InputKindDocument {
		if generateFile == "" {
			return nil, fmt.Errorf("document inputs need --file")
		}
		content, err := os.ReadFile(generateFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", generateFile, err)
		}
		payload = base64.StdEncoding.EncodeToString(content)
	} else {
		if len(args) == 0 || args[0] == "" {
			return nil, fmt.Errorf("a payload argument is required for %s inputs", kind)
		}
		payload = args[0]
	}

	return &models.GenerationRequest{
		Kind:    kind,
		Payload: payload,
		Style: models.StyleDirectives{
			Language:      generateLanguage,
			TargetMinutes: generateMinutes,
			Tone:          generateTone,
			MusicStyle:    generateMusic,
		},
	}, nil
}
