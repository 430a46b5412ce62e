package services

import (
	"context"

	"investgame/src/repositories"
	"investgame/src/schemas"
	"investgame/src/utils"
)

type LeaderboardServiceI interface {
	GetLeaderboard(ctx context.Context) ([]schemas.LeaderboardEntry, error)
	GetOverview(ctx context.Context) (*schemas.OverviewResponse, error)
}

type LeaderboardService struct {
	leaderboardRepo   repositories.LeaderboardRepository
	refresher         RefreshServiceI
	refreshOnOverview bool
}

func NewLeaderboardService(
	leaderboardRepo repositories.LeaderboardRepository,
	refresher RefreshServiceI,
	refreshOnOverview bool,
) *LeaderboardService {
	return &LeaderboardService{
		leaderboardRepo:   leaderboardRepo,
		refresher:         refresher,
		refreshOnOverview: refreshOnOverview,
	}
}

// GetLeaderboard ranks users by cash plus the stored value of their lots.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context) ([]schemas.LeaderboardEntry, error) {
	standings, err := s.leaderboardRepo.GetStandings(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]schemas.LeaderboardEntry, 0, len(standings))
	for i, st := range standings {
		entries = append(entries, schemas.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      st.UserID,
			Name:        st.Name,
			CashBalance: st.CashBalance,
			StockValue:  utils.RoundCurrency(st.StockValue),
			Total:       utils.RoundCurrency(st.Total),
		})
	}
	return entries, nil
}

// GetOverview attempts a price refresh and then returns the leaderboard. A
// failed refresh is logged and the leaderboard is served from stored prices.
func (s *LeaderboardService) GetOverview(ctx context.Context) (*schemas.OverviewResponse, error) {
	overview := &schemas.OverviewResponse{}

	if s.refreshOnOverview {
		result, err := s.refresher.Refresh(ctx)
		if err != nil {
			utils.LoggerFromContext(ctx).WithError(err).Warn("overview refresh failed, using stored prices")
		} else {
			overview.Refresh = result
		}
	}

	leaderboard, err := s.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}
	overview.Leaderboard = leaderboard
	return overview, nil
}
