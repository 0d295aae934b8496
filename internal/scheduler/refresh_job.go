package scheduler

import (
	"fundscope/internal/modules/funds"

	"github.com/rs/zerolog"
)

// RefreshFundsJob re-fetches NAV history for every persisted fund. It
// runs daily so latest NAVs and active flags stay current.
type RefreshFundsJob struct {
	sync *funds.SyncService
	log  zerolog.Logger
}

// NewRefreshFundsJob creates a new fund refresh job.
func NewRefreshFundsJob(sync *funds.SyncService, log zerolog.Logger) *RefreshFundsJob {
	return &RefreshFundsJob{
		sync: sync,
		log:  log.With().Str("job", "refresh_funds").Logger(),
	}
}

// Name returns the job identifier used in logs.
func (j *RefreshFundsJob) Name() string {
	return "refresh_funds"
}

// Run executes one refresh pass.
func (j *RefreshFundsJob) Run() error {
	result, err := j.sync.RefreshAll()
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		j.log.Warn().
			Int("failed", result.Failed).
			Int("synced", result.Synced).
			Msg("Refresh pass finished with failures")
	}
	return nil
}
