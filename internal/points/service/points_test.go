package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"replate/internal/auth"
	"replate/internal/domain"
)

type fakePointsRepo struct {
	balances   map[int64]int64
	awardCalls int
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{balances: make(map[int64]int64)}
}

func (r *fakePointsRepo) GetOrCreate(_ context.Context, customerID int64) (domain.PointsBalance, error) {
	if _, ok := r.balances[customerID]; !ok {
		r.balances[customerID] = 0
	}
	return domain.PointsBalance{CustomerID: customerID, Points: r.balances[customerID], LastUpdated: time.Now().UTC()}, nil
}

func (r *fakePointsRepo) Award(_ context.Context, customerID, amount int64) (domain.PointsBalance, error) {
	r.awardCalls++
	r.balances[customerID] += amount
	return domain.PointsBalance{CustomerID: customerID, Points: r.balances[customerID], LastUpdated: time.Now().UTC()}, nil
}

func (r *fakePointsRepo) AwardTx(_ context.Context, _ pgx.Tx, customerID, amount int64) error {
	r.awardCalls++
	r.balances[customerID] += amount
	return nil
}

func TestGetBalanceCreatesZeroRowLazily(t *testing.T) {
	svc := NewPointsService(newFakePointsRepo(), zap.NewNop())
	b, err := svc.GetBalance(context.Background(), auth.Actor{ID: 7, Role: auth.RoleCustomer})
	require.NoError(t, err)
	require.Equal(t, int64(0), b.Points)
	require.Equal(t, int64(7), b.CustomerID)
}

func TestGetBalanceOnlyForCustomers(t *testing.T) {
	svc := NewPointsService(newFakePointsRepo(), zap.NewNop())
	_, err := svc.GetBalance(context.Background(), auth.Actor{ID: 10, Role: auth.RoleBusiness})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAwardPointsRejectsNegativeAmount(t *testing.T) {
	repo := newFakePointsRepo()
	svc := NewPointsService(repo, zap.NewNop())
	_, err := svc.AwardPoints(context.Background(), 7, -5)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Zero(t, repo.awardCalls)
}

func TestAwardPointsZeroIsNoopButReturnsBalance(t *testing.T) {
	repo := newFakePointsRepo()
	svc := NewPointsService(repo, zap.NewNop())

	_, err := svc.AwardPoints(context.Background(), 7, 25)
	require.NoError(t, err)

	b, err := svc.AwardPoints(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Equal(t, int64(25), b.Points)
	require.Equal(t, 1, repo.awardCalls)
}

func TestAwardPointsAccumulates(t *testing.T) {
	repo := newFakePointsRepo()
	svc := NewPointsService(repo, zap.NewNop())

	b, err := svc.AwardPoints(context.Background(), 7, 25)
	require.NoError(t, err)
	require.Equal(t, int64(25), b.Points)

	b, err = svc.AwardPoints(context.Background(), 7, 13)
	require.NoError(t, err)
	require.Equal(t, int64(38), b.Points)
}
