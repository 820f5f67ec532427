package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/podforge/podforge-api/api"
	"github.com/podforge/podforge-api/api/types"
	"github.com/podforge/podforge-api/internal/database"
	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/internal/providers/extract"
	"github.com/podforge/podforge-api/internal/providers/objectstore"
	"github.com/podforge/podforge-api/internal/providers/speech"
	"github.com/podforge/podforge-api/internal/providers/textgen"
	"github.com/podforge/podforge-api/internal/providers/websearch"
	"github.com/podforge/podforge-api/internal/services/acquisition"
	"github.com/podforge/podforge-api/internal/services/assembly"
	"github.com/podforge/podforge-api/internal/services/cache"
	"github.com/podforge/podforge-api/internal/services/cleanup"
	"github.com/podforge/podforge-api/internal/services/jobs"
	"github.com/podforge/podforge-api/internal/services/pipeline"
	"github.com/podforge/podforge-api/internal/services/publish"
	"github.com/podforge/podforge-api/internal/services/script"
	"github.com/podforge/podforge-api/internal/services/synthesis"
	"github.com/podforge/podforge-api/internal/services/voices"
	"github.com/podforge/podforge-api/internal/services/workers"
	"github.com/podforge/podforge-api/pkg/audio"
	"github.com/podforge/podforge-api/pkg/config"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the PodForge API server with the configured settings.

The server accepts generation requests over HTTP, queues them as jobs,
and processes them in the background through acquisition, script
composition, speech synthesis, and audio assembly.

Example:
  podforge-api serve
  podforge-api serve --port 9090
  podforge-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if config.GetString("environment") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	if err := db.AutoMigrate(&models.Job{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	processor := workers.NewGenerationProcessor(pipe, jobService)
	pool := workers.NewWorkerPool(jobService, processor, cfg.Processing.Workers, cfg.Processing.PollInterval)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	if err := pool.Start(workerCtx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}

	janitor := cleanup.NewService(jobService, cfg.Processing.RetentionDays, cfg.Processing.CleanupInterval)
	janitor.Start(workerCtx)

	addr := fmt.Sprintf("%s:%d", serverHost, serverPort)
	server := api.NewServer(addr)
	server.SetDatabase(db)
	server.SetDependencies(&types.Dependencies{
		DB:         db,
		JobService: jobService,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	log.Printf("[INFO] Starting PodForge API server on %s", addr)

	// Channel to listen for interrupt signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case <-stop:
		log.Println("[INFO] Shutting down server...")
	case err := <-serverErr:
		log.Printf("[ERROR] %v", err)
		log.Println("[INFO] Shutting down server...")
	}

	// Stop claiming new jobs before draining HTTP connections
	janitor.Stop()
	pool.Stop()
	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server forced to shutdown: %v", err)
		return err
	}

	log.Println("[INFO] Server gracefully stopped")
	return nil
}

// buildPipeline wires the provider clients and stage services into a
// generation pipeline using the loaded configuration
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	searchClient := websearch.NewClient(websearch.Config{
		BaseURL: cfg.Search.BaseURL,
		APIKey:  cfg.Search.APIKey,
		Timeout: cfg.Search.Timeout,
	})
	extractClient := extract.NewClient(extract.Config{
		BaseURL: cfg.Extract.BaseURL,
		APIKey:  cfg.Extract.APIKey,
		Timeout: cfg.Extract.Timeout,
	})
	textgenClient := textgen.NewClient(textgen.Config{
		BaseURL: cfg.TextGen.BaseURL,
		APIKey:  cfg.TextGen.APIKey,
		Model:   cfg.TextGen.Model,
		Timeout: cfg.TextGen.Timeout,
	})
	speechClient := speech.NewClient(speech.Config{
		BaseURL:           cfg.Speech.BaseURL,
		APIKey:            cfg.Speech.APIKey,
		Timeout:           cfg.Speech.Timeout,
		RequestsPerMinute: cfg.Speech.RequestsPerMinute,
		BurstSize:         cfg.Speech.BurstSize,
	})
	storeClient := objectstore.NewClient(objectstore.Config{
		BaseURL:   cfg.ObjectStore.BaseURL,
		PublicURL: cfg.ObjectStore.PublicURL,
		APIKey:    cfg.ObjectStore.APIKey,
		Bucket:    cfg.ObjectStore.Bucket,
		Timeout:   cfg.ObjectStore.Timeout,
	})

	// The extraction provider also handles document ingestion
	acquirer := acquisition.NewService(
		searchClient,
		extractClient,
		extractClient,
		acquisition.NewTextgenSuggester(textgenClient),
		acquisition.Options{
			SearchResultCount:    cfg.Acquisition.SearchResultCount,
			SupplementaryResults: cfg.Acquisition.SupplementaryQueries,
			MinExtractChars:      cfg.Acquisition.MinExtractChars,
			ChunkChars:           cfg.Acquisition.ChunkChars,
		},
	)
	// The same page often appears in both primary and supplementary results
	acquirer.SetPageCache(cache.NewMemoryCache(64), time.Hour)

	composer := script.NewService(textgenClient, script.Options{
		TotalBudgetChars:         cfg.Composer.ContextBudgetChars,
		PrimaryBudgetChars:       cfg.Composer.PrimaryBudgetChars,
		SupplementaryBudgetChars: cfg.Composer.SupplementBudgetChars,
		DefaultTargetMinutes:     cfg.Composer.DefaultTargetMinutes,
		DefaultLanguage:          cfg.Composer.DefaultLanguage,
		MaxTokens:                cfg.Composer.MaxTokens,
		Temperature:              cfg.Composer.Temperature,
		RegenRetries:             cfg.Composer.RegenerationRetries,
	})

	assigner := voices.NewService(voicePool(cfg.Voices))

	coordinator := synthesis.NewService(speechClient, synthesis.Options{
		Workers:        cfg.Synthesis.Workers,
		MaxRetries:     cfg.Synthesis.RetryAttempts,
		InitialBackoff: cfg.Synthesis.RetryBackoff,
		MaxTTSChars:    cfg.Synthesis.MaxTurnChars,
	})

	music, err := loadMusicBeds(cfg.Assembly.MusicDir)
	if err != nil {
		return nil, fmt.Errorf("loading music beds: %w", err)
	}
	assembler := assembly.NewService(music, assembly.Options{
		InterTurnPause: time.Duration(cfg.Assembly.PauseMs) * time.Millisecond,
		MusicGainDB:    cfg.Assembly.MusicGainDB,
		SampleRate:     cfg.Assembly.SampleRate,
		DefaultStyle:   cfg.Assembly.DefaultMusic,
	})

	publisher := publish.NewService(storeClient)

	return pipeline.New(acquirer, composer, assigner, coordinator, assembler, publisher), nil
}

// voicePool converts the configured voice entries into the model type
func voicePool(cfg config.VoicesConfig) []models.VoiceIdentity {
	pool := make([]models.VoiceIdentity, 0, len(cfg.Pool))
	for _, v := range cfg.Pool {
		pool = append(pool, models.VoiceIdentity{
			ID:       v.ID,
			Name:     v.Name,
			Language: v.Language,
		})
	}
	return pool
}

// loadMusicBeds reads every WAV file in dir and registers it as a music
// style named after the file. A missing directory just disables music.
func loadMusicBeds(dir string) (map[string]*audio.Clip, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[INFO] Music directory %s not found, generating without music beds", dir)
			return nil, nil
		}
		return nil, err
	}

	beds := make(map[string]*audio.Clip)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wav") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading music bed %s: %w", entry.Name(), err)
		}
		clip, err := audio.DecodeWAV(data)
		if err != nil {
			return nil, fmt.Errorf("decoding music bed %s: %w", entry.Name(), err)
		}
		style := strings.TrimSuffix(entry.Name(), ".wav")
		beds[style] = clip
	}

	if len(beds) > 0 {
		log.Printf("[INFO] Loaded %d music bed(s) from %s", len(beds), dir)
	}
	return beds, nil
}
