package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/logging"
	"github.com/9r89uf8/mediagate/internal/media"
	"github.com/9r89uf8/mediagate/internal/server/auth"
	sc "github.com/9r89uf8/mediagate/internal/server/config"
	"github.com/9r89uf8/mediagate/internal/server/models"
	"github.com/9r89uf8/mediagate/internal/server/services"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

type stubPermits struct {
	permit *models.SendPermit
	err    error
	gotTok string
	gotAct string
}

func (s *stubPermits) Exchange(_ context.Context, _ string, token string, action string) (*models.SendPermit, error) {
	s.gotTok, s.gotAct = token, action
	return s.permit, s.err
}

type stubStorage struct {
	ticket    *models.UploadTicket
	ticketErr error
	urls      map[string]string
	signErr   error
	gotKeys   []string
}

func (s *stubStorage) IssueTicket(_ context.Context, _ string, _ media.Surface, _ string, _ int64) (*models.UploadTicket, error) {
	return s.ticket, s.ticketErr
}

func (s *stubStorage) SignBatch(_ context.Context, keys []string) (map[string]string, error) {
	s.gotKeys = keys
	return s.urls, s.signErr
}

type stubMedia struct {
	record    *models.MediaRecord
	message   *models.Message
	status    *models.Status
	likeCount int64
	err       error

	gotFinalize services.FinalizeInput
	gotSend     services.SendMediaMessageInput
	gotUpdate   models.MediaUpdate
	gotUpdateID string
}

func (s *stubMedia) Finalize(_ context.Context, in services.FinalizeInput) (*models.MediaRecord, error) {
	s.gotFinalize = in
	return s.record, s.err
}

func (s *stubMedia) Update(_ context.Context, id string, upd models.MediaUpdate) error {
	s.gotUpdateID, s.gotUpdate = id, upd
	return s.err
}

func (s *stubMedia) ToggleLike(_ context.Context, _ string, _ bool) (int64, error) {
	return s.likeCount, s.err
}

func (s *stubMedia) SendMediaMessage(_ context.Context, in services.SendMediaMessageInput) (*models.Message, error) {
	s.gotSend = in
	return s.message, s.err
}

func (s *stubMedia) SetStatus(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err
}

func (s *stubMedia) ActiveStatus(_ context.Context, _ string) (*models.Status, error) {
	return s.status, s.err
}

func newTestServer(p PermitExchanger, st Storage, m Media) (*httptest.Server, string) {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"

	h := NewHandlers(p, st, m, testLogger())
	srv := NewServer(cfg, testLogger(), h)

	token, err := auth.GenerateToken("user-1", []byte(cfg.SecretKey), time.Minute)
	if err != nil {
		panic(err)
	}
	return httptest.NewServer(srv.router()), token
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestPingNoAuth(t *testing.T) {
	ts, _ := newTestServer(&stubPermits{}, &stubStorage{}, &stubMedia{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresToken(t *testing.T) {
	ts, _ := newTestServer(&stubPermits{}, &stubStorage{}, &stubMedia{})
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/views/sign", "", signBatchRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp2 := doJSON(t, ts, http.MethodPost, "/api/views/sign", "not-a-jwt", signBatchRequest{})
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestExchangePermit(t *testing.T) {
	permits := &stubPermits{permit: &models.SendPermit{
		ID: "p1", UserID: "user-1", UsesLeft: 3, ExpiresAt: time.Now().Add(10 * time.Minute),
	}}
	ts, token := newTestServer(permits, &stubStorage{}, &stubMedia{})
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/permits", token,
		exchangePermitRequest{Token: "cap-token"})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var got permitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, 3, got.UsesLeft)
	// Empty action falls back to the chat send default.
	assert.Equal(t, common.DefaultChatSendAction, permits.gotAct)
	assert.Equal(t, "cap-token", permits.gotTok)
}

func TestExchangePermitRejected(t *testing.T) {
	permits := &stubPermits{err: fmt.Errorf("%w: rejected", common.ErrPermitExchangeFailed)}
	ts, token := newTestServer(permits, &stubStorage{}, &stubMedia{})
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/permits", token,
		exchangePermitRequest{Token: "bad"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIssueTicket(t *testing.T) {
	storage := &stubStorage{ticket: &models.UploadTicket{
		UploadURL: "https://s3.test/put", ObjectKey: "media/user-1/k1",
	}}
	ts, token := newTestServer(&stubPermits{}, storage, &stubMedia{})
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/uploads/tickets", token,
		issueTicketRequest{Surface: "chat", ContentType: "image/jpeg", Size: 1024})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var got ticketResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "media/user-1/k1", got.ObjectKey)
}

func TestIssueTicketTooLarge(t *testing.T) {
	storage := &stubStorage{ticketErr: &media.SizeError{Kind: media.KindAudio, Max: 2 << 20}}
	ts, token := newTestServer(&stubPermits{}, storage, &stubMedia{})
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/uploads/tickets", token,
		issueTicketRequest{Surface: "chat", ContentType: "audio/mpeg", Size: 5 << 20})
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var got errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Audio too large. Max 2MB", got.Error)
}

func TestFinalize(t *testing.T) {
	m := &stubMedia{record: &models.MediaRecord{
		ID: "m1", OwnerID: "user-1", ObjectKeys: []string{"k1", "k2"},
		Kind: media.KindImage, Surface: media.SurfaceGallery, IsGallery: true,
	}}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/media", token, finalizeRequest{
		Surface: "gallery", Kind: "image", ObjectKeys: []string{"k1", "k2"},
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "user-1", m.gotFinalize.OwnerID)
	assert.Equal(t, []string{"k1", "k2"}, m.gotFinalize.ObjectKeys)

	var got mediaResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "m1", got.ID)
}

func TestUpdateMedia(t *testing.T) {
	m := &stubMedia{}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	text := "new caption"
	resp := doJSON(t, ts, http.MethodPatch, "/api/media/m1", token,
		updateMediaRequest{Text: &text})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "m1", m.gotUpdateID)
	require.NotNil(t, m.gotUpdate.Text)
	assert.Equal(t, "new caption", *m.gotUpdate.Text)
	assert.Nil(t, m.gotUpdate.Published)
}

func TestUpdateMediaNotFound(t *testing.T) {
	m := &stubMedia{err: common.ErrNotFound}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPatch, "/api/media/missing", token, updateMediaRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleLike(t *testing.T) {
	m := &stubMedia{likeCount: 7}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/media/m1/like", token, toggleLikeRequest{Liked: true})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got likeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(7), got.LikeCount)
}

func TestSignBatch(t *testing.T) {
	storage := &stubStorage{urls: map[string]string{"k1": "https://signed/k1"}}
	ts, token := newTestServer(&stubPermits{}, storage, &stubMedia{})
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/views/sign", token,
		signBatchRequest{Keys: []string{"k1", "k1"}})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got signBatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "https://signed/k1", got.URLs["k1"])
}

func TestSendMediaMessage(t *testing.T) {
	m := &stubMedia{message: &models.Message{
		ID: "msg1", ConversationID: "c1", SenderID: "user-1",
		Kind: media.KindImage, ObjectKey: "k1",
	}}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/messages/media", token, sendMediaMessageRequest{
		ConversationID: "c1", Kind: "image", ObjectKey: "k1", PermitID: "p1",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	// Sender comes from the token, never from the request body.
	assert.Equal(t, "user-1", m.gotSend.SenderID)
	assert.Equal(t, "p1", m.gotSend.PermitID)
}

func TestSendMediaMessagePermitExhausted(t *testing.T) {
	m := &stubMedia{err: common.ErrPermitExhausted}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/messages/media", token, sendMediaMessageRequest{
		ConversationID: "c1", Kind: "image", ObjectKey: "k1", PermitID: "p1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStatusRoundTrip(t *testing.T) {
	m := &stubMedia{status: &models.Status{UserID: "user-2", Text: "around"}}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodPut, "/api/status", token, setStatusRequest{Text: "around"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2 := doJSON(t, ts, http.MethodGet, "/api/status?user=user-2", token, nil)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var got statusResponse
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&got))
	assert.Equal(t, "around", got.Text)
}

func TestGetStatusExpired(t *testing.T) {
	m := &stubMedia{err: common.ErrNotFound}
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, m)
	defer ts.Close()

	resp := doJSON(t, ts, http.MethodGet, "/api/status?user=user-2", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidBody(t *testing.T) {
	ts, token := newTestServer(&stubPermits{}, &stubStorage{}, &stubMedia{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/media", bytes.NewBufferString("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPermitRateLimit(t *testing.T) {
	permits := &stubPermits{permit: &models.SendPermit{ID: "p1", UsesLeft: 3, ExpiresAt: time.Now().Add(time.Minute)}}

	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.PermitRateRPS = 1
	cfg.PermitRateBurst = 2

	h := NewHandlers(permits, &stubStorage{}, &stubMedia{}, testLogger())
	srv := NewServer(cfg, testLogger(), h)
	ts := httptest.NewServer(srv.router())
	defer ts.Close()

	token, err := auth.GenerateToken("user-1", []byte(cfg.SecretKey), time.Minute)
	require.NoError(t, err)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp := doJSON(t, ts, http.MethodPost, "/api/permits", token, exchangePermitRequest{Token: "t"})
		statuses = append(statuses, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, http.StatusCreated, statuses[0])
	assert.Equal(t, http.StatusCreated, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}
