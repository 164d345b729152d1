package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsgate/internal/dispatch"
	"smsgate/internal/journal"
	"smsgate/internal/logger"
	"smsgate/internal/reassembly"
	"smsgate/pkg/errors"
	"smsgate/pkg/health"
)

type fixedSplitter struct{ parts int }

func (s fixedSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	out := make([]string, s.parts)
	for i := range out {
		out[i] = text
	}
	return out
}

type noopSender struct{}

func (noopSender) SendParts(ctx context.Context, batch dispatch.PartBatch) error { return nil }

type fakeJournal struct {
	entries map[string]journal.Entry
}

func (f *fakeJournal) Insert(ctx context.Context, e journal.Entry) error { return nil }

func (f *fakeJournal) RecordOutcome(ctx context.Context, messageID, channel, outcome string) error {
	return nil
}

func (f *fakeJournal) Get(ctx context.Context, messageID string) (journal.Entry, error) {
	e, ok := f.entries[messageID]
	if !ok {
		return journal.Entry{}, errors.ErrNotFound.WithDetail("message", "no journal entry")
	}
	return e, nil
}

func newTestRouter(t *testing.T, repo journal.Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NopLogger()
	dispatcher := dispatch.NewDispatcher(fixedSplitter{parts: 2}, noopSender{}, nil, log)
	reassembler := reassembly.NewReassembler(reassembly.NewMemoryStore(time.Minute), log)
	registry := reassembly.NewHandlerRegistry(log)
	checkers := health.NewCheckerRegistry()

	handler := NewHandler(dispatcher, repo, reassembler, registry, checkers, log)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessageAccepted(t *testing.T) {
	router := newTestRouter(t, &fakeJournal{})

	w := doJSON(t, router, http.MethodPost, "/v1/messages", SendMessageRequest{
		Destination:    "+15551234567",
		Text:           "hello there",
		TrackSent:      true,
		TrackDelivered: true,
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp SendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.MessageID)
	assert.Equal(t, 2, resp.Parts)
	assert.Equal(t, []string{"sent", "delivered"}, resp.Tracked)
}

func TestSendMessageInvalidDestination(t *testing.T) {
	router := newTestRouter(t, &fakeJournal{})

	w := doJSON(t, router, http.MethodPost, "/v1/messages", SendMessageRequest{
		Destination: "not-a-number",
		Text:        "hello",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_DESTINATION", resp["error_code"])
}

func TestSendMessageMissingFields(t *testing.T) {
	router := newTestRouter(t, &fakeJournal{})

	w := doJSON(t, router, http.MethodPost, "/v1/messages", map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessage(t *testing.T) {
	repo := &fakeJournal{entries: map[string]journal.Entry{
		"msg-1": {
			MessageID:   "msg-1",
			Destination: "+15551234567",
			Parts:       2,
			TrackSent:   true,
			Status:      journal.StatusFinalized,
			SentOutcome: sql.NullString{String: "success", Valid: true},
			SubmittedAt: time.Now(),
			FinalizedAt: sql.NullTime{Time: time.Now(), Valid: true},
		},
	}}
	router := newTestRouter(t, repo)

	t.Run("found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/messages/msg-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp MessageStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "msg-1", resp.MessageID)
		assert.Equal(t, journal.StatusFinalized, resp.Status)
		require.NotNil(t, resp.SentOutcome)
		assert.Equal(t, "success", *resp.SentOutcome)
		assert.Nil(t, resp.DeliveredOutcome)
		assert.NotNil(t, resp.FinalizedAt)
	})

	t.Run("not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/messages/unknown", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetMessageWithoutJournal(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodGet, "/v1/messages/msg-1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOfferInboundPart(t *testing.T) {
	router := newTestRouter(t, &fakeJournal{})

	t.Run("buffered until complete", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/inbound/parts", InboundPartRequest{
			Origin: "+491701234567", Ref: 11, Index: 1, Total: 2, Text: "hel",
		})
		require.Equal(t, http.StatusAccepted, w.Code)

		var resp InboundPartResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Complete)

		w = doJSON(t, router, http.MethodPost, "/v1/inbound/parts", InboundPartRequest{
			Origin: "+491701234567", Ref: 11, Index: 2, Total: 2, Text: "lo",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Complete)
		assert.NotEmpty(t, resp.MessageID)
	})

	t.Run("invalid part", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/inbound/parts", InboundPartRequest{
			Origin: "+491701234567", Index: 5, Total: 2, Text: "x",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeJournal{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp health.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, health.StatusHealthy, resp.Status)
}
