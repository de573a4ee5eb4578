// internal/ghosting/score.go
// Visibility score and trust-signal derivation. Both are pure functions of
// stored state so detector and calculator runs are idempotent.

package ghosting

import "time"

const (
	ghostPenalty   = 0.15
	gracefulCredit = 0.05
	minScore       = 0.10
	maxScore       = 1.00
)

// VisibilityScore maps a user's ghosting history to the discovery multiplier.
// Non-increasing in ghosted, non-decreasing in graceful. Graceful closures
// offset at most half the accumulated penalty, so a ghosting history is never
// fully erased. Result is always in (0, 1]; a clean user scores exactly 1.
func VisibilityScore(ghosted, graceful int) float64 {
	if ghosted <= 0 {
		return maxScore
	}

	penalty := ghostPenalty * float64(ghosted)
	credit := gracefulCredit * float64(graceful)
	if credit > penalty/2 {
		credit = penalty / 2
	}

	score := maxScore - penalty + credit
	if score < minScore {
		score = minScore
	}
	return score
}

// DeriveTrustSignals recomputes the badge flags from the response pattern and
// account facts. Thresholds are deliberately conservative: badges are earned.
func DeriveTrustSignals(pattern *ResponsePattern, facts *AccountFacts, now time.Time) *TrustSignals {
	accountAge := now.Sub(facts.CreatedAt)

	return &TrustSignals{
		UserID:               pattern.UserID,
		ShowsUpConsistently:  pattern.GhostedCount == 0 && pattern.VisibilityScore >= 0.99,
		CommunicatesWithCare: pattern.VisibilityScore >= 0.80 && pattern.GhostedCount <= 1,
		CommunityTrusted:     accountAge >= 30*24*time.Hour && pattern.GhostedCount <= 1 && pattern.GracefulClosures >= 1,
		VerifiedIdentity:     facts.IsVerified,
		ThoughtfulCloser:     pattern.GracefulClosures >= 3 && pattern.GracefulClosures > pattern.GhostedCount,
		CalculatedAt:         now,
	}
}
