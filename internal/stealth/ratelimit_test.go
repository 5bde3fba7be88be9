package stealth

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-easyapply/internal/config"
)

func testSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		MaxJobsPerSession:    15,
		MinJobSpacingSeconds: 30,
		MaxSessionMinutes:    40,
		BlockCooldownMinutes: 10,
	}
}

// fakeClock drives the limiter deterministically; sleeps advance the clock
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newTestLimiter(t *testing.T) (*SessionLimiter, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	l := NewSessionLimiter(testSessionConfig(), zerolog.Nop())
	l.now = func() time.Time { return clock.now }
	l.sleep = func(d time.Duration) {
		clock.slept = append(clock.slept, d)
		clock.now = clock.now.Add(d)
	}
	l.sessionStart = clock.now
	return l, clock
}

func TestBeforeJobPermitsFirstJob(t *testing.T) {
	l, _ := newTestLimiter(t)

	assert.Equal(t, DecisionPermit, l.BeforeJob())
	assert.Equal(t, 1, l.JobCount())
}

func TestBeforeJobEnforcesSpacing(t *testing.T) {
	l, clock := newTestLimiter(t)

	require.Equal(t, DecisionPermit, l.BeforeJob())
	clock.slept = nil

	// Only 5s elapsed since the previous job start; 25s must be slept out
	clock.now = clock.now.Add(5 * time.Second)
	require.Equal(t, DecisionPermit, l.BeforeJob())

	require.NotEmpty(t, clock.slept)
	assert.Equal(t, 25*time.Second, clock.slept[0])
}

func TestBeforeJobRefusesAfterJobCeiling(t *testing.T) {
	l, clock := newTestLimiter(t)

	for i := 0; i < 15; i++ {
		clock.now = clock.now.Add(time.Minute)
		require.Equal(t, DecisionPermit, l.BeforeJob())
	}

	assert.Equal(t, DecisionRestartSession, l.BeforeJob())
}

func TestBeforeJobRefusesAfterSessionDuration(t *testing.T) {
	l, clock := newTestLimiter(t)

	require.Equal(t, DecisionPermit, l.BeforeJob())
	clock.now = clock.now.Add(41 * time.Minute)

	assert.Equal(t, DecisionRestartSession, l.BeforeJob())
}

func TestThreeConsecutiveBlocksEnterCooldown(t *testing.T) {
	l, clock := newTestLimiter(t)

	assert.True(t, l.OnBlockSignal())
	assert.True(t, l.OnBlockSignal())
	assert.False(t, l.OnBlockSignal(), "third consecutive block must refuse retry")

	// Refused while the cooldown runs, no matter how often asked
	clock.now = clock.now.Add(time.Second)
	assert.Equal(t, DecisionCooldown, l.BeforeJob())
	assert.Equal(t, DecisionCooldown, l.BeforeJob())
	assert.Equal(t, DecisionCooldown, l.BeforeJob())

	// Permitted once the window elapses
	clock.now = clock.now.Add(10 * time.Minute)
	assert.Equal(t, DecisionPermit, l.BeforeJob())
}

func TestCumulativeBlocksScaledCooldown(t *testing.T) {
	l, clock := newTestLimiter(t)

	// Successes between blocks keep the consecutive counter below three
	for i := 0; i < 4; i++ {
		assert.True(t, l.OnBlockSignal())
		l.OnSuccess()
	}

	// Fifth cumulative block crosses the threshold
	assert.False(t, l.OnBlockSignal())

	// Cooldown scales with the total count: (5 + 2*5) minutes
	remaining := l.CooldownRemaining()
	assert.Equal(t, 15*time.Minute, remaining)

	clock.now = clock.now.Add(15*time.Minute + time.Second)
	assert.Equal(t, DecisionPermit, l.BeforeJob())
}

func TestBlockBackoffScalesLinearly(t *testing.T) {
	l, clock := newTestLimiter(t)

	require.True(t, l.OnBlockSignal())
	require.True(t, l.OnBlockSignal())

	require.Len(t, clock.slept, 2)
	assert.Equal(t, 30*time.Second, clock.slept[0])
	assert.Equal(t, 60*time.Second, clock.slept[1])
}

func TestOnSuccessResetsConsecutiveOnly(t *testing.T) {
	l, _ := newTestLimiter(t)

	require.True(t, l.OnBlockSignal())
	require.True(t, l.OnBlockSignal())
	l.OnSuccess()

	// Consecutive counter was reset, so the next two blocks still permit retry
	assert.True(t, l.OnBlockSignal())
	assert.True(t, l.OnBlockSignal())

	// But the cumulative counter kept counting: this is block number five
	assert.False(t, l.OnBlockSignal())
}

func TestResetSessionZeroesCountersButKeepsCooldown(t *testing.T) {
	l, clock := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		clock.now = clock.now.Add(time.Minute)
		require.Equal(t, DecisionPermit, l.BeforeJob())
	}
	require.True(t, l.OnBlockSignal())
	require.True(t, l.OnBlockSignal())
	require.False(t, l.OnBlockSignal())

	l.ResetSession()

	assert.Equal(t, 0, l.JobCount())
	// A restart must not shortcut an active cooldown
	assert.Equal(t, DecisionCooldown, l.BeforeJob())

	clock.now = clock.now.Add(11 * time.Minute)
	assert.Equal(t, DecisionPermit, l.BeforeJob())
}
