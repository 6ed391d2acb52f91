package audit

import (
	"context"
	"fmt"

	domain "order_backend/internal/domain/order"
	"order_backend/internal/domain/repository"
	"order_backend/pkg/logger"
)

// Service appends consumed order events to the audit trail.
type Service struct {
	repo repository.AuditRepository
	log  logger.Logger
}

func NewService(repo repository.AuditRepository, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) HandleOrderEvent(ctx context.Context, e domain.Event) error {
	if e.ID == "" {
		s.log.Warn("dropping order event without id", logger.Int64("order_id", e.OrderID))
		return nil
	}

	inserted, err := s.repo.Append(ctx, e)
	if err != nil {
		return fmt.Errorf("append order event %s: %w", e.ID, err)
	}
	if !inserted {
		s.log.Debug("order event already recorded", logger.String("event_id", e.ID))
		return nil
	}

	s.log.Info("order event recorded",
		logger.String("event_id", e.ID),
		logger.String("event_type", string(e.Type)),
		logger.Int64("order_id", e.OrderID),
		logger.String("status", e.Status.String()),
	)
	return nil
}
