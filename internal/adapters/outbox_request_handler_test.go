package adapters

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolner/svc-commerce-events/internal/adapters/http/handlers"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/internal/usecases/queries"
)

type outboxHandlerFixture struct {
	markSent       *stubCommandHandler[commands.MarkOutboxSentCommand, bool]
	incrementRetry *stubCommandHandler[commands.IncrementOutboxRetryCommand, bool]
	fetchUnsent    *stubQueryHandler[queries.FetchPendingOutboxEventsQuery, []*domain.OutboxEvent]
	router         chi.Router
}

func newOutboxHandlerFixture() *outboxHandlerFixture {
	f := &outboxHandlerFixture{
		markSent:       &stubCommandHandler[commands.MarkOutboxSentCommand, bool]{result: true},
		incrementRetry: &stubCommandHandler[commands.IncrementOutboxRetryCommand, bool]{result: true},
		fetchUnsent:    &stubQueryHandler[queries.FetchPendingOutboxEventsQuery, []*domain.OutboxEvent]{},
	}

	handler := NewOutboxRequestHandler(f.markSent, f.incrementRetry, f.fetchUnsent, infrastructure.NewTestLogger())

	router := chi.NewRouter()
	router.Get("/api/outbox/unsent", handler.GetUnsent)
	router.Post("/api/outbox/mark-sent/{id}", handler.MarkSent)
	router.Post("/api/outbox/increment-retry/{id}", handler.IncrementRetry)
	f.router = router

	return f
}

func (f *outboxHandlerFixture) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	return rec
}

func TestOutboxRequestHandler_GetUnsent(t *testing.T) {
	t.Parallel()

	t.Run("returns pending rows with default limit", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()
		f.fetchUnsent.result = []*domain.OutboxEvent{
			{
				ID:          uuid.New(),
				EventType:   domain.EventUserCreated,
				AggregateID: uuid.New(),
				CreatedAt:   time.Now().UTC(),
			},
		}

		rec := f.do(http.MethodGet, "/api/outbox/unsent")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp []handlers.OutboxEventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)

		require.Len(t, f.fetchUnsent.queries, 1)
		assert.Equal(t, defaultUnsentLimit, f.fetchUnsent.queries[0].BatchSize)
	})

	t.Run("honors max parameter", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()

		rec := f.do(http.MethodGet, "/api/outbox/unsent?max=5")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, f.fetchUnsent.queries, 1)
		assert.Equal(t, 5, f.fetchUnsent.queries[0].BatchSize)
	})

	t.Run("rejects non-positive max", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()

		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/outbox/unsent?max=0").Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/outbox/unsent?max=ten").Code)
		assert.Empty(t, f.fetchUnsent.queries)
	})
}

func TestOutboxRequestHandler_MarkSent(t *testing.T) {
	t.Parallel()

	t.Run("marks row sent", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()
		id := uuid.New()

		rec := f.do(http.MethodPost, "/api/outbox/mark-sent/"+id.String())

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Len(t, f.markSent.commands, 1)
		assert.Equal(t, id, f.markSent.commands[0].EventID)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()

		rec := f.do(http.MethodPost, "/api/outbox/mark-sent/42")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.markSent.commands)
	})

	t.Run("maps unknown row to not found", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()
		f.markSent.err = domain.ErrOutboxRowNotFound

		rec := f.do(http.MethodPost, "/api/outbox/mark-sent/"+uuid.NewString())

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOutboxRequestHandler_IncrementRetry(t *testing.T) {
	t.Parallel()

	t.Run("bumps retry counter", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()
		id := uuid.New()

		rec := f.do(http.MethodPost, "/api/outbox/increment-retry/"+id.String())

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Len(t, f.incrementRetry.commands, 1)
		assert.Equal(t, id, f.incrementRetry.commands[0].EventID)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		t.Parallel()

		f := newOutboxHandlerFixture()

		rec := f.do(http.MethodPost, "/api/outbox/increment-retry/not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
