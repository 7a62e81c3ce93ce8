package crontab

import (
	"context"
	"fmt"
	"time"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/metrics"
	"betline-server/services/support-api/internal/utils/platformerrors"

	"github.com/mileusna/crontab"
)

const (
	DefaultSweepInterval = 60              // in minutes
	CronJobTimeout       = 5 * time.Minute // Timeout for each cron job execution
)

// HealthProbe is an extraction collaborator that can report liveness.
type HealthProbe interface {
	Name() string
	Health(ctx context.Context) error
}

type Crontab struct {
	ctab     *crontab.Crontab
	sessions *session.Service
	probes   []HealthProbe
}

func NewCrontab(sessions *session.Service, probes []HealthProbe) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		sessions: sessions,
		probes:   probes,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	// Schedule idle session sweep if enabled
	cfg := config.GetGlobal()
	if cfg != nil && cfg.SessionSweepEnabled {
		// execute once on server start
		c.sweepIdleSessions(ctx, cfg.SessionIdleTTL)

		sweepInterval := cfg.SessionSweepIntervalMinutes
		if sweepInterval <= 0 {
			sweepInterval = DefaultSweepInterval
		}

		cronExpr := fmt.Sprintf("*/%d * * * *", sweepInterval)
		if err := c.ctab.AddJob(cronExpr, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()

			ttl := config.GetGlobal().SessionIdleTTL
			c.sweepIdleSessions(jobCtx, ttl)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add session sweep job")
		}
		log.Warn().Msgf("Idle session sweep scheduled: every %d minute(s)", sweepInterval)
	}

	// Schedule collaborator health probes
	if len(c.probes) > 0 {
		c.probeCollaborators(ctx)
		if err := c.ctab.AddJob("* * * * *", func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			c.probeCollaborators(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add health probe job")
		}
	}

	// Schedule environment reload job
	if err := c.ctab.AddJob("* * * * *", func() {
		// Reload config
		config.Load()
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add env reload job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) probeCollaborators(ctx context.Context) {
	log := logger.GetLogger()

	for _, probe := range c.probes {
		err := probe.Health(ctx)
		metrics.SetCollaboratorHealth(probe.Name(), err == nil)
		if err != nil {
			log.Warn().Err(err).Str("collaborator", probe.Name()).Msg("Collaborator health probe failed")
		}
	}
}

func (c *Crontab) sweepIdleSessions(ctx context.Context, ttl time.Duration) {
	log := logger.GetLogger()

	closed, err := c.sessions.CloseIdle(ctx, ttl)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sweep idle sessions")
		return
	}
	if closed > 0 {
		log.Info().Msgf("Closed %d idle sessions", closed)
	}
}
