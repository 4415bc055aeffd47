package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/clubhub/club-gateway/internal/events"
	"github.com/clubhub/club-gateway/internal/repository"
)

// AuditService records auth lifecycle events for the audit trail.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuditRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		repo:       repo,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to all auth events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventSignedIn,
		events.EventRegistered,
		events.EventOAuthBridged,
		events.EventTokenRefreshed,
		events.EventRefreshFailed,
		events.EventSignedOut,
		events.EventSessionInvalidated,
	} {
		a.dispatcher.Subscribe(eventType, a.handleEvent)
	}
}

// RecentForSession returns the latest audit entries recorded for a session,
// newest first. Returns nothing when the audit trail is disabled.
func (a *AuditService) RecentForSession(ctx context.Context, sessionID string, limit int) ([]repository.AuthEvent, error) {
	if a.repo == nil {
		return nil, nil
	}
	return a.repo.ListBySession(ctx, sessionID, limit)
}

func (a *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	a.logger.Info("auth event",
		zap.String("type", string(event.Type)),
		zap.String("session_id", event.SessionID),
		zap.String("user_id", event.UserID),
	)

	if a.repo == nil {
		return nil
	}

	var payload []byte
	if event.Payload != nil {
		if raw, err := json.Marshal(event.Payload); err == nil {
			payload = raw
		}
	}

	record := &repository.AuthEvent{
		EventType:  string(event.Type),
		SessionID:  event.SessionID,
		OccurredAt: event.Timestamp,
		Payload:    payload,
	}
	if event.UserID != "" {
		userID := event.UserID
		record.UserID = &userID
	}
	if event.Provider != "" {
		provider := string(event.Provider)
		record.Provider = &provider
	}

	if err := a.repo.Create(ctx, record); err != nil {
		a.logger.Warn("audit write failed", zap.Error(err))
	}
	return nil
}
