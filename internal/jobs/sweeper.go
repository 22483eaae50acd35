package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ExpiringSessions is a session store that needs explicit cleanup.
type ExpiringSessions interface {
	DeleteExpired(now time.Time) int
}

// RevocationList is a revoked-token cache that needs explicit cleanup.
type RevocationList interface {
	Cleanup(now time.Time) int
}

// Sweeper periodically removes expired sessions and revoked-token entries.
type Sweeper struct {
	cron     *cron.Cron
	schedule string
	sessions ExpiringSessions
	revoked  RevocationList
	nowTime  func() time.Time
}

// NewSweeper builds a sweeper for schedule (a cron spec such as "@every 5m").
// Either target may be nil.
func NewSweeper(schedule string, sessions ExpiringSessions, revoked RevocationList) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		schedule: schedule,
		sessions: sessions,
		revoked:  revoked,
		nowTime:  time.Now,
	}
}

func (s *Sweeper) Start() error {
	if s.sessions == nil && s.revoked == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return fmt.Errorf("[Sweeper Start] invalid schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Sweep runs one cleanup pass.
func (s *Sweeper) Sweep() {
	now := s.nowTime()
	var sessions, revoked int
	if s.sessions != nil {
		sessions = s.sessions.DeleteExpired(now)
	}
	if s.revoked != nil {
		revoked = s.revoked.Cleanup(now)
	}
	if sessions > 0 || revoked > 0 {
		log.Info().Int("sessions", sessions).Int("revoked_tokens", revoked).Msg("swept expired session state")
	}
}
