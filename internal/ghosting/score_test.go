package ghosting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisibilityScore(t *testing.T) {
	tests := []struct {
		name     string
		ghosted  int
		graceful int
		want     float64
	}{
		{"clean record", 0, 0, 1.00},
		{"graceful closes never lift above full", 0, 10, 1.00},
		{"one ghost", 1, 0, 0.85},
		{"two ghosts", 2, 0, 0.70},
		{"one ghost one graceful close", 1, 1, 0.90},
		{"credit capped at half the penalty", 1, 10, 0.925},
		{"heavy ghosting hits the floor", 10, 0, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, VisibilityScore(tt.ghosted, tt.graceful), 1e-9)
		})
	}
}

func TestVisibilityScoreMonotonicInGhosting(t *testing.T) {
	prev := VisibilityScore(0, 2)
	for ghosted := 1; ghosted <= 12; ghosted++ {
		score := VisibilityScore(ghosted, 2)
		assert.LessOrEqual(t, score, prev, "score should not rise with more ghosting (ghosted=%d)", ghosted)
		prev = score
	}
}

func TestVisibilityScoreBounds(t *testing.T) {
	for ghosted := 0; ghosted <= 20; ghosted++ {
		for graceful := 0; graceful <= 20; graceful++ {
			score := VisibilityScore(ghosted, graceful)
			assert.GreaterOrEqual(t, score, 0.10)
			assert.LessOrEqual(t, score, 1.00)
		}
	}
}

func TestDeriveTrustSignals(t *testing.T) {
	now := time.Now()
	oldAccount := &AccountFacts{CreatedAt: now.Add(-90 * 24 * time.Hour)}
	newAccount := &AccountFacts{CreatedAt: now.Add(-5 * 24 * time.Hour)}

	t.Run("clean record shows up consistently", func(t *testing.T) {
		pattern := &ResponsePattern{UserID: 1, VisibilityScore: 1.0}

		signals := DeriveTrustSignals(pattern, oldAccount, now)
		assert.True(t, signals.ShowsUpConsistently)
		assert.True(t, signals.CommunicatesWithCare)
		assert.False(t, signals.VerifiedIdentity)
	})

	t.Run("single ghost drops consistency but not care", func(t *testing.T) {
		pattern := &ResponsePattern{UserID: 1, GhostedCount: 1, VisibilityScore: VisibilityScore(1, 0)}

		signals := DeriveTrustSignals(pattern, oldAccount, now)
		assert.False(t, signals.ShowsUpConsistently)
		assert.True(t, signals.CommunicatesWithCare)
	})

	t.Run("community trust needs account age", func(t *testing.T) {
		pattern := &ResponsePattern{UserID: 1, GracefulClosures: 2, VisibilityScore: 1.0}

		assert.True(t, DeriveTrustSignals(pattern, oldAccount, now).CommunityTrusted)
		assert.False(t, DeriveTrustSignals(pattern, newAccount, now).CommunityTrusted)
	})

	t.Run("thoughtful closer needs closes outnumbering ghosts", func(t *testing.T) {
		closer := &ResponsePattern{UserID: 1, GhostedCount: 1, GracefulClosures: 4,
			VisibilityScore: VisibilityScore(1, 4)}
		ghoster := &ResponsePattern{UserID: 2, GhostedCount: 4, GracefulClosures: 3,
			VisibilityScore: VisibilityScore(4, 3)}

		assert.True(t, DeriveTrustSignals(closer, oldAccount, now).ThoughtfulCloser)
		assert.False(t, DeriveTrustSignals(ghoster, oldAccount, now).ThoughtfulCloser)
	})

	t.Run("verified identity mirrors account verification", func(t *testing.T) {
		pattern := &ResponsePattern{UserID: 1, VisibilityScore: 1.0}
		verified := &AccountFacts{IsVerified: true, CreatedAt: oldAccount.CreatedAt}

		assert.True(t, DeriveTrustSignals(pattern, verified, now).VerifiedIdentity)
	})
}
