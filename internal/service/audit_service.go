package service

import (
	"context"
	"encoding/json"
	"fmt"

	"authgate/internal/model"
	"authgate/internal/repository"
)

type AuditLogResponse struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// AuditEntry is one change to record.
type AuditEntry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Details    any
}

type AuditService interface {
	// Record writes entry. Inside RunInTx it joins the caller's transaction.
	Record(ctx context.Context, entry AuditEntry) error
	GetAuditLogs(ctx context.Context, filter repository.AuditFilter, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	var details []byte
	if entry.Details != nil {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = b
	}
	return s.repo.Log(ctx, &model.AuditLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    details,
	})
}

// GetAuditLogs returns the newest entries first.
func (s *auditService) GetAuditLogs(ctx context.Context, filter repository.AuditFilter, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	logs, total, err := s.repo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			ActorID:    l.ActorID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    json.RawMessage(l.Details),
			CreatedAt:  formatTime(l.CreatedAt),
		})
	}
	return res, total, nil
}
