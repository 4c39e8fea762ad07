package usecase

import (
	"context"
	"time"

	"telegram-agency-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Stats is the analytics snapshot the admin console renders.
type Stats struct {
	TotalUsers   int
	NewToday     int
	NewThisWeek  int
	NewThisMonth int
	ActiveWeek   int

	TotalCourses     int
	TotalPurchases   int
	Buyers           int
	RevenueMinor     int64
	ConversionPct    float64
	AvgPurchaseMinor int64

	// Interaction estimates carried over from the agency's reporting
	// formulas: active users times a fixed per-day factor.
	EstDailyInteractions  int
	EstWeeklyInteractions int
}

const (
	dailyInteractionFactor  = 4
	weeklyInteractionFactor = 18
)

type StatsUseCase interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	users     repository.UserRepository
	courses   repository.CourseRepository
	purchases repository.PurchaseRepository
	log       *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	courses repository.CourseRepository,
	purchases repository.PurchaseRepository,
	logger *zerolog.Logger,
) StatsUseCase {
	return &statsUC{users: users, courses: courses, purchases: purchases, log: logger}
}

func (uc *statsUC) Snapshot(ctx context.Context) (*Stats, error) {
	now := time.Now()
	s := &Stats{}

	var err error
	if s.TotalUsers, err = uc.users.CountUsers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.NewToday, err = uc.users.CountJoinedSince(ctx, repository.NoTX, now.AddDate(0, 0, -1)); err != nil {
		return nil, err
	}
	if s.NewThisWeek, err = uc.users.CountJoinedSince(ctx, repository.NoTX, now.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if s.NewThisMonth, err = uc.users.CountJoinedSince(ctx, repository.NoTX, now.AddDate(0, -1, 0)); err != nil {
		return nil, err
	}
	if s.ActiveWeek, err = uc.users.CountActiveSince(ctx, repository.NoTX, now.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if s.TotalCourses, err = uc.courses.CountCourses(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.TotalPurchases, err = uc.purchases.CountPurchases(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.Buyers, err = uc.purchases.CountBuyers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.RevenueMinor, err = uc.purchases.CompletedRevenue(ctx, repository.NoTX); err != nil {
		return nil, err
	}

	if s.TotalUsers > 0 {
		s.ConversionPct = float64(s.Buyers) / float64(s.TotalUsers) * 100
	}
	if s.TotalPurchases > 0 {
		s.AvgPurchaseMinor = s.RevenueMinor / int64(s.TotalPurchases)
	}
	s.EstDailyInteractions = s.ActiveWeek * dailyInteractionFactor
	s.EstWeeklyInteractions = s.ActiveWeek * weeklyInteractionFactor

	return s, nil
}
