package types

import (
	"github.com/podforge/podforge-api/internal/database"
	"github.com/podforge/podforge-api/internal/services/jobs"
)

// Dependencies holds everything the HTTP handlers need
type Dependencies struct {
	DB         *database.DB
	JobService jobs.Service
}
