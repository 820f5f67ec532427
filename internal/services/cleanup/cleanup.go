package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/podforge/podforge-api/internal/services/jobs"
)

// Service periodically purges finished job records older than the
// retention window
type Service struct {
	jobService      jobs.Service
	retentionDays   int
	cleanupInterval time.Duration
	cancel          context.CancelFunc
}

// NewService creates a new cleanup service
func NewService(jobService jobs.Service, retentionDays int, cleanupInterval time.Duration) *Service {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 6 * time.Hour
	}
	return &Service{
		jobService:      jobService,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
	}
}

// Start begins the cleanup service
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Run initial cleanup
	s.cleanup(ctx)

	// Run periodic cleanup
	go func() {
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.cleanup(ctx)
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, retention: %d days)", s.cleanupInterval, s.retentionDays)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// cleanup removes completed and failed jobs past the retention window
func (s *Service) cleanup(ctx context.Context) {
	removed, err := s.jobService.CleanupOldJobs(ctx, s.retentionDays)
	if err != nil {
		log.Printf("[ERROR] Job cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[INFO] Job cleanup removed %d old job(s)", removed)
	}
}
