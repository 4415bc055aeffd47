package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clubhub/club-gateway/internal/events"
	"github.com/clubhub/club-gateway/internal/repository"
	"github.com/clubhub/club-gateway/internal/service"
)

type fakeAuditRepo struct {
	created []repository.AuthEvent
}

func (f *fakeAuditRepo) Create(_ context.Context, event *repository.AuthEvent) error {
	f.created = append(f.created, *event)
	return nil
}

func (f *fakeAuditRepo) ListBySession(_ context.Context, sessionID string, _ int) ([]repository.AuthEvent, error) {
	var out []repository.AuthEvent
	for _, e := range f.created {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestAuditTrailRecordsLifecycleEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	repo := &fakeAuditRepo{}
	audit := service.NewAuditService(dispatcher, repo, zap.NewNop())
	audit.RegisterHandlers()

	f := newFixture(t, func(deps *service.SessionDependencies) {
		deps.Dispatcher = dispatcher
	})
	f.signIn(t, "access-1", "refresh-1")
	sessionID := f.currentSession(t).SessionID
	f.sessions.SignOut(context.Background(), f.jar)

	require.Len(t, repo.created, 2)
	require.Equal(t, string(events.EventSignedIn), repo.created[0].EventType)
	require.Equal(t, string(events.EventSignedOut), repo.created[1].EventType)
	require.NotNil(t, repo.created[0].UserID)
	require.Equal(t, "user-1", *repo.created[0].UserID)

	entries, err := audit.RecentForSession(context.Background(), sessionID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestAuditTrailDisabledWithoutRepository(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	audit := service.NewAuditService(dispatcher, nil, zap.NewNop())
	audit.RegisterHandlers()

	f := newFixture(t, func(deps *service.SessionDependencies) {
		deps.Dispatcher = dispatcher
	})
	// publishing must not blow up when nothing persists events
	f.signIn(t, "access-1", "refresh-1")

	entries, err := audit.RecentForSession(context.Background(), "any", 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}
