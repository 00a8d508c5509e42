package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"replate/internal/auth"
	"replate/internal/domain"
	"replate/internal/points/repository"
)

type PointsServiceInterface interface {
	GetBalance(ctx context.Context, actor auth.Actor) (domain.PointsBalance, error)
	AwardPoints(ctx context.Context, customerID, amount int64) (domain.PointsBalance, error)
}

// PointsService is the loyalty ledger. Balances only grow, one row per
// customer, created lazily at zero.
type PointsService struct {
	repo repository.PointsRepositoryInterface
	lg   *zap.Logger
}

func NewPointsService(repo repository.PointsRepositoryInterface, lg *zap.Logger) *PointsService {
	return &PointsService{repo: repo, lg: lg}
}

func (s *PointsService) GetBalance(ctx context.Context, actor auth.Actor) (domain.PointsBalance, error) {
	if err := auth.Require(actor, auth.RoleCustomer, "only customers can view points"); err != nil {
		return domain.PointsBalance{}, err
	}
	return s.repo.GetOrCreate(ctx, actor.ID)
}

func (s *PointsService) AwardPoints(ctx context.Context, customerID, amount int64) (domain.PointsBalance, error) {
	if amount < 0 {
		return domain.PointsBalance{}, fmt.Errorf("negative award %d: %w", amount, domain.ErrInvalidInput)
	}
	if amount == 0 {
		return s.repo.GetOrCreate(ctx, customerID)
	}
	b, err := s.repo.Award(ctx, customerID, amount)
	if err != nil {
		return domain.PointsBalance{}, err
	}
	s.lg.Info("points_awarded",
		zap.Int64("customer_id", customerID),
		zap.Int64("amount", amount),
		zap.Int64("balance", b.Points))
	return b, nil
}
