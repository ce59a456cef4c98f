package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

func TestIsHealthyOutcome(t *testing.T) {
	assert.True(t, IsHealthyOutcome(nil))
	assert.True(t, IsHealthyOutcome(fmt.Errorf("get: %w", domain.ErrNotFound)))
	assert.True(t, IsHealthyOutcome(domain.ErrConflict))
	assert.True(t, IsHealthyOutcome(context.Canceled))
	assert.True(t, IsHealthyOutcome(fmt.Errorf("dial: %w", context.DeadlineExceeded)))
	assert.False(t, IsHealthyOutcome(errors.New("connection refused")))
}

func TestCircuitBreaker_TripsOnInfraErrorsOnly(t *testing.T) {
	cb := NewCircuitBreaker("PostgreSQL", zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, domain.ErrConflict })
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("connection refused") })
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
