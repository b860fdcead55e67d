package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/logging"
	"github.com/9r89uf8/mediagate/internal/media"
	"github.com/9r89uf8/mediagate/internal/server/auth"
	"github.com/9r89uf8/mediagate/internal/server/models"
	"github.com/9r89uf8/mediagate/internal/server/services"
)

// PermitExchanger trades a verification token for a send permit.
type PermitExchanger interface {
	Exchange(ctx context.Context, userID string, token string, action string) (*models.SendPermit, error)
}

// Storage issues upload tickets and signs view batches.
type Storage interface {
	IssueTicket(ctx context.Context, ownerID string, surface media.Surface, contentType string, size int64) (*models.UploadTicket, error)
	SignBatch(ctx context.Context, keys []string) (map[string]string, error)
}

// Media covers finalize, edits, likes, sends and status lines.
type Media interface {
	Finalize(ctx context.Context, in services.FinalizeInput) (*models.MediaRecord, error)
	Update(ctx context.Context, id string, upd models.MediaUpdate) error
	ToggleLike(ctx context.Context, id string, liked bool) (int64, error)
	SendMediaMessage(ctx context.Context, in services.SendMediaMessageInput) (*models.Message, error)
	SetStatus(ctx context.Context, userID string, text string, expiresAt time.Time) error
	ActiveStatus(ctx context.Context, userID string) (*models.Status, error)
}

type Handlers struct {
	permits PermitExchanger
	storage Storage
	media   Media
	logger  logging.Logger
}

func NewHandlers(p PermitExchanger, s Storage, m Media, l logging.Logger) *Handlers {
	return &Handlers{permits: p, storage: s, media: m, logger: l.With("module", "http_handlers")}
}

func (h *Handlers) HandlePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

type exchangePermitRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"`
}

type permitResponse struct {
	ID        string    `json:"id"`
	UsesLeft  int       `json:"uses_left"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handlers) HandleExchangePermit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exchangePermitRequest
		if !h.decode(w, r, &req) {
			return
		}
		if req.Action == "" {
			req.Action = common.DefaultChatSendAction
		}

		permit, err := h.permits.Exchange(r.Context(), auth.UserIDFromContext(r.Context()), req.Token, req.Action)
		if err != nil {
			permitsRejected.Inc()
			h.writeError(w, r, err)
			return
		}

		permitsIssued.Inc()
		h.writeJSON(w, http.StatusCreated, permitResponse{
			ID:        permit.ID,
			UsesLeft:  permit.UsesLeft,
			ExpiresAt: permit.ExpiresAt,
		})
	}
}

type issueTicketRequest struct {
	Surface     string `json:"surface"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type ticketResponse struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

func (h *Handlers) HandleIssueTicket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req issueTicketRequest
		if !h.decode(w, r, &req) {
			return
		}

		ticket, err := h.storage.IssueTicket(r.Context(), auth.UserIDFromContext(r.Context()),
			media.Surface(req.Surface), req.ContentType, req.Size)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ticketsIssued.Inc()
		h.writeJSON(w, http.StatusCreated, ticketResponse{
			UploadURL: ticket.UploadURL,
			ObjectKey: ticket.ObjectKey,
		})
	}
}

type finalizeRequest struct {
	Surface     string   `json:"surface"`
	Kind        string   `json:"kind"`
	ObjectKeys  []string `json:"object_keys"`
	Text        string   `json:"text"`
	Location    string   `json:"location"`
	PremiumOnly bool     `json:"premium_only"`
}

type mediaResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	ObjectKeys  []string  `json:"object_keys"`
	Kind        string    `json:"kind"`
	Surface     string    `json:"surface"`
	PremiumOnly bool      `json:"premium_only"`
	CanBeLiked  bool      `json:"can_be_liked"`
	Mature      bool      `json:"mature"`
	Published   bool      `json:"published"`
	Text        string    `json:"text,omitempty"`
	Location    string    `json:"location,omitempty"`
	LikeCount   int64     `json:"like_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMediaResponse(m *models.MediaRecord) mediaResponse {
	return mediaResponse{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		ObjectKeys:  m.ObjectKeys,
		Kind:        string(m.Kind),
		Surface:     string(m.Surface),
		PremiumOnly: m.PremiumOnly,
		CanBeLiked:  m.CanBeLiked,
		Mature:      m.Mature,
		Published:   m.Published,
		Text:        m.Text,
		Location:    m.Location,
		LikeCount:   m.LikeCount,
		CreatedAt:   m.CreatedAt,
	}
}

func (h *Handlers) HandleFinalize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finalizeRequest
		if !h.decode(w, r, &req) {
			return
		}

		rec, err := h.media.Finalize(r.Context(), services.FinalizeInput{
			OwnerID:     auth.UserIDFromContext(r.Context()),
			Surface:     media.Surface(req.Surface),
			Kind:        media.Kind(req.Kind),
			ObjectKeys:  req.ObjectKeys,
			Text:        req.Text,
			Location:    req.Location,
			PremiumOnly: req.PremiumOnly,
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		mediaFinalized.Inc()
		h.writeJSON(w, http.StatusCreated, toMediaResponse(rec))
	}
}

type updateMediaRequest struct {
	Text        *string `json:"text"`
	Location    *string `json:"location"`
	PremiumOnly *bool   `json:"premium_only"`
	CanBeLiked  *bool   `json:"can_be_liked"`
	Mature      *bool   `json:"mature"`
	Published   *bool   `json:"published"`
}

func (h *Handlers) HandleUpdateMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateMediaRequest
		if !h.decode(w, r, &req) {
			return
		}

		err := h.media.Update(r.Context(), chi.URLParam(r, "mediaID"), models.MediaUpdate{
			Text:        req.Text,
			Location:    req.Location,
			PremiumOnly: req.PremiumOnly,
			CanBeLiked:  req.CanBeLiked,
			Mature:      req.Mature,
			Published:   req.Published,
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type toggleLikeRequest struct {
	Liked bool `json:"liked"`
}

type likeResponse struct {
	LikeCount int64 `json:"like_count"`
}

func (h *Handlers) HandleToggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleLikeRequest
		if !h.decode(w, r, &req) {
			return
		}

		count, err := h.media.ToggleLike(r.Context(), chi.URLParam(r, "mediaID"), req.Liked)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, likeResponse{LikeCount: count})
	}
}

type signBatchRequest struct {
	Keys []string `json:"keys"`
}

type signBatchResponse struct {
	URLs map[string]string `json:"urls"`
}

func (h *Handlers) HandleSignBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signBatchRequest
		if !h.decode(w, r, &req) {
			return
		}

		urls, err := h.storage.SignBatch(r.Context(), req.Keys)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		viewsSigned.Add(float64(len(urls)))
		h.writeJSON(w, http.StatusOK, signBatchResponse{URLs: urls})
	}
}

type sendMediaMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Kind           string `json:"kind"`
	ObjectKey      string `json:"object_key"`
	Caption        string `json:"caption"`
	PermitID       string `json:"permit_id"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Kind           string    `json:"kind"`
	ObjectKey      string    `json:"object_key"`
	Caption        string    `json:"caption,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *Handlers) HandleSendMediaMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMediaMessageRequest
		if !h.decode(w, r, &req) {
			return
		}

		msg, err := h.media.SendMediaMessage(r.Context(), services.SendMediaMessageInput{
			ConversationID: req.ConversationID,
			SenderID:       auth.UserIDFromContext(r.Context()),
			Kind:           media.Kind(req.Kind),
			ObjectKey:      req.ObjectKey,
			Caption:        req.Caption,
			PermitID:       req.PermitID,
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		messagesSent.Inc()
		h.writeJSON(w, http.StatusCreated, messageResponse{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Kind:           string(msg.Kind),
			ObjectKey:      msg.ObjectKey,
			Caption:        msg.Caption,
			CreatedAt:      msg.CreatedAt,
		})
	}
}

type setStatusRequest struct {
	Text      string     `json:"text"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *Handlers) HandleSetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setStatusRequest
		if !h.decode(w, r, &req) {
			return
		}

		var expiresAt time.Time
		if req.ExpiresAt != nil {
			expiresAt = *req.ExpiresAt
		}

		err := h.media.SetStatus(r.Context(), auth.UserIDFromContext(r.Context()), req.Text, expiresAt)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type statusResponse struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleGetStatus returns the active status line for ?user=<id>, or for
// the caller when the parameter is absent. 404 covers both "never set"
// and "expired"; callers cannot tell the two apart.
func (h *Handlers) HandleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		if userID == "" {
			userID = auth.UserIDFromContext(r.Context())
		}

		status, err := h.media.ActiveStatus(r.Context(), userID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, statusResponse{
			UserID:    status.UserID,
			Text:      status.Text,
			CreatedAt: status.CreatedAt,
			ExpiresAt: status.ExpiresAt,
		})
	}
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(context.Background(), "error writing response", "error", err)
	}
}

// writeError maps service sentinels onto HTTP statuses and stable error
// codes. The message carries the sentinel text so clients can surface
// policy errors (like the oversize message) verbatim.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, common.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrPermitExhausted):
		status, code = http.StatusConflict, "permit_exhausted"
	case errors.Is(err, common.ErrPermitExpired):
		status, code = http.StatusConflict, "permit_expired"
	case errors.Is(err, common.ErrPermitExchangeFailed):
		status, code = http.StatusForbidden, "permit_exchange_failed"
	case errors.Is(err, common.ErrFileTooLarge):
		status, code = http.StatusBadRequest, "file_too_large"
	case errors.Is(err, common.ErrUnsupportedFileType):
		status, code = http.StatusBadRequest, "unsupported_file_type"
	case errors.Is(err, common.ErrTicketDenied):
		status, code = http.StatusBadRequest, "ticket_denied"
	case errors.Is(err, common.ErrFinalizeFailed):
		status, code = http.StatusBadRequest, "finalize_failed"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		h.writeJSON(w, status, errorResponse{Code: code, Error: "internal error"})
		return
	}
	h.writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}
