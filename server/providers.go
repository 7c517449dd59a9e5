package server

import "github.com/oddsforge/wager-engine/pkg/providers"

// Aliases for provider result types referenced in handler responses,
// so swagger models resolve inside this package.
type (
	RewardClaim      = providers.RewardClaim
	LeaderboardEntry = providers.LeaderboardEntry
)
