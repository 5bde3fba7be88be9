// Package stealth - session-level rate limiting and block-signal backoff
package stealth

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"linkedin-easyapply/internal/config"
)

// JobDecision is the rate limiter's answer to "may I process the next job?"
type JobDecision int

const (
	// DecisionPermit means the job may be processed now
	DecisionPermit JobDecision = iota
	// DecisionCooldown means a block cooldown is active; wait or restart
	DecisionCooldown
	// DecisionRestartSession means a session ceiling was hit; tear down the
	// browser session, call ResetSession, then continue
	DecisionRestartSession
)

func (d JobDecision) String() string {
	switch d {
	case DecisionPermit:
		return "permit"
	case DecisionCooldown:
		return "cooldown"
	case DecisionRestartSession:
		return "restart-session"
	default:
		return "unknown"
	}
}

// SessionLimiter tracks per-session job counts, elapsed time and block
// signals, and decides when to pause, back off or force a session restart.
// All state is session-scoped; nothing here touches persisted records.
type SessionLimiter struct {
	logger zerolog.Logger
	mu     sync.Mutex

	maxJobsPerSession int
	minJobSpacing     time.Duration
	maxSessionTime    time.Duration
	blockCooldown     time.Duration

	jobCount          int
	sessionStart      time.Time
	lastJobStart      time.Time
	consecutiveBlocks int
	totalBlocks       int
	cooldownUntil     time.Time

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSessionLimiter creates a session limiter from the configured ceilings
func NewSessionLimiter(cfg *config.SessionConfig, logger zerolog.Logger) *SessionLimiter {
	l := &SessionLimiter{
		logger:            logger.With().Str("module", "ratelimit").Logger(),
		maxJobsPerSession: cfg.MaxJobsPerSession,
		minJobSpacing:     time.Duration(cfg.MinJobSpacingSeconds) * time.Second,
		maxSessionTime:    time.Duration(cfg.MaxSessionMinutes) * time.Minute,
		blockCooldown:     time.Duration(cfg.BlockCooldownMinutes) * time.Minute,
		now:               time.Now,
		sleep:             time.Sleep,
	}
	l.sessionStart = l.now()
	return l
}

// BeforeJob must be called before processing each job. When it permits, it
// has already slept out the minimum spacing from the previous job plus a
// small jitter, and has counted the job against the session.
func (r *SessionLimiter) BeforeJob() JobDecision {
	r.mu.Lock()

	now := r.now()

	if !r.cooldownUntil.IsZero() && now.Before(r.cooldownUntil) {
		remaining := r.cooldownUntil.Sub(now)
		r.logger.Warn().
			Dur("remaining", remaining).
			Msg("Cooldown active, refusing job")
		r.mu.Unlock()
		return DecisionCooldown
	}

	if r.jobCount >= r.maxJobsPerSession {
		r.logger.Info().
			Int("jobCount", r.jobCount).
			Int("limit", r.maxJobsPerSession).
			Msg("Session job limit reached")
		r.mu.Unlock()
		return DecisionRestartSession
	}

	if elapsed := now.Sub(r.sessionStart); elapsed > r.maxSessionTime {
		r.logger.Info().
			Dur("elapsed", elapsed).
			Dur("limit", r.maxSessionTime).
			Msg("Session duration limit reached")
		r.mu.Unlock()
		return DecisionRestartSession
	}

	// Enforce minimum spacing from the previous job's start
	var wait time.Duration
	if !r.lastJobStart.IsZero() {
		if sinceLast := now.Sub(r.lastJobStart); sinceLast < r.minJobSpacing {
			wait = r.minJobSpacing - sinceLast
		}
	}

	r.jobCount++
	r.lastJobStart = now.Add(wait)
	r.mu.Unlock()

	if wait > 0 {
		r.logger.Debug().Dur("wait", wait).Msg("Enforcing job spacing")
		r.sleep(wait)
	}

	// Small human jitter between jobs
	r.sleep(time.Duration(500+rand.Intn(1000)) * time.Millisecond)

	return DecisionPermit
}

// OnBlockSignal records an anti-bot block. It returns true when the caller
// may retry the current job once after the backoff sleep, false when a
// cooldown was entered and processing must stop until BeforeJob permits again.
func (r *SessionLimiter) OnBlockSignal() bool {
	r.mu.Lock()

	r.consecutiveBlocks++
	r.totalBlocks++
	consecutive := r.consecutiveBlocks
	total := r.totalBlocks

	r.logger.Warn().
		Int("consecutive", consecutive).
		Int("total", total).
		Msg("Block signal received")

	if consecutive >= 3 {
		r.cooldownUntil = r.now().Add(r.blockCooldown)
		r.logger.Warn().
			Time("until", r.cooldownUntil).
			Msg("Too many consecutive blocks, entering cooldown")
		r.mu.Unlock()
		return false
	}

	if total >= 5 {
		// Cooldown grows with the cumulative block count
		cooldown := time.Duration(5+2*total) * time.Minute
		r.cooldownUntil = r.now().Add(cooldown)
		r.logger.Warn().
			Dur("cooldown", cooldown).
			Msg("Cumulative block threshold crossed, entering scaled cooldown")
		r.mu.Unlock()
		return false
	}

	backoff := time.Duration(consecutive) * 30 * time.Second
	r.mu.Unlock()

	r.logger.Info().Dur("backoff", backoff).Msg("Backing off before retry")
	r.sleep(backoff)
	return true
}

// OnSuccess resets the consecutive-block counter. Cumulative counters persist
// for the life of the session.
func (r *SessionLimiter) OnSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consecutiveBlocks = 0
}

// ResetSession zeroes all session-scoped counters and restarts the session
// clock. Called exactly when the browser session is torn down and recreated.
// An active cooldown survives the reset: a restart must not shortcut it.
func (r *SessionLimiter) ResetSession() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobCount = 0
	r.consecutiveBlocks = 0
	r.totalBlocks = 0
	r.lastJobStart = time.Time{}
	r.sessionStart = r.now()

	r.logger.Info().Msg("Session counters reset")
}

// CooldownRemaining returns how long the active cooldown still has to run,
// or zero when none is active
func (r *SessionLimiter) CooldownRemaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cooldownUntil.IsZero() {
		return 0
	}
	remaining := r.cooldownUntil.Sub(r.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// JobCount returns the number of jobs counted against the current session
func (r *SessionLimiter) JobCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.jobCount
}

// SessionElapsed returns how long the current session has been running
func (r *SessionLimiter) SessionElapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.now().Sub(r.sessionStart)
}
