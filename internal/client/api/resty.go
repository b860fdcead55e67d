package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/media"
)

// RestyClient implements Client over resty JSON calls with a bearer
// token. One instance per authenticated session.
type RestyClient struct {
	client *resty.Client
	// put handles presigned PUTs; separate client because object storage
	// must not see the API bearer token.
	put *resty.Client
}

func NewRestyClient(baseURL string, accessToken string) *RestyClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &RestyClient{
		client: c,
		put:    resty.New().SetTimeout(5 * time.Minute),
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// codeSentinels maps the server's stable error codes back onto the
// shared sentinels. Unknown codes fall through to a plain error so new
// server codes degrade gracefully.
var codeSentinels = map[string]error{
	"unauthorized":           common.ErrUnauthorized,
	"not_found":              common.ErrNotFound,
	"permit_exhausted":       common.ErrPermitExhausted,
	"permit_expired":         common.ErrPermitExpired,
	"permit_exchange_failed": common.ErrPermitExchangeFailed,
	"file_too_large":         common.ErrFileTooLarge,
	"unsupported_file_type":  common.ErrUnsupportedFileType,
	"ticket_denied":          common.ErrTicketDenied,
	"finalize_failed":        common.ErrFinalizeFailed,
}

func toError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	apiErr, ok := resp.Error().(*apiError)
	if !ok || apiErr == nil || apiErr.Code == "" {
		return fmt.Errorf("%w: unexpected status %d", common.ErrInternal, resp.StatusCode())
	}
	if sentinel, ok := codeSentinels[apiErr.Code]; ok {
		return fmt.Errorf("%s: %w", apiErr.Message, sentinel)
	}
	return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Code)
}

func (c *RestyClient) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/ping")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", common.ErrInternal, resp.StatusCode())
	}
	return nil
}

func (c *RestyClient) ExchangePermit(ctx context.Context, token string, action string) (*Permit, error) {
	var permit Permit
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token, "action": action}).
		SetResult(&permit).
		SetError(&apiError{}).
		Post("/api/permits")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPermitExchangeFailed, err)
	}
	if err := toError(resp); err != nil {
		return nil, err
	}
	return &permit, nil
}

func (c *RestyClient) IssueTicket(ctx context.Context, surface media.Surface, contentType string, size int64) (*UploadTicket, error) {
	var ticket UploadTicket
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"surface":      string(surface),
			"content_type": contentType,
			"size":         size,
		}).
		SetResult(&ticket).
		SetError(&apiError{}).
		Post("/api/uploads/tickets")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTicketDenied, err)
	}
	if err := toError(resp); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *RestyClient) UploadPut(ctx context.Context, uploadURL string, contentType string, body io.Reader) error {
	resp, err := c.put.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Put(uploadURL)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUploadPutFailed, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", common.ErrUploadPutFailed, resp.StatusCode())
	}
	return nil
}

func (c *RestyClient) Finalize(ctx context.Context, req FinalizeRequest) (*Media, error) {
	var m Media
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&m).
		SetError(&apiError{}).
		Post("/api/media")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFinalizeFailed, err)
	}
	if err := toError(resp); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *RestyClient) UpdateMedia(ctx context.Context, id string, upd MediaUpdate) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(upd).
		SetError(&apiError{}).
		Patch("/api/media/" + id)
	if err != nil {
		return err
	}
	return toError(resp)
}

func (c *RestyClient) ToggleLike(ctx context.Context, id string, liked bool) (int64, error) {
	var result struct {
		LikeCount int64 `json:"like_count"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]bool{"liked": liked}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/api/media/" + id + "/like")
	if err != nil {
		return 0, err
	}
	if err := toError(resp); err != nil {
		return 0, err
	}
	return result.LikeCount, nil
}

func (c *RestyClient) SignBatch(ctx context.Context, keys []string) (map[string]string, error) {
	var result struct {
		URLs map[string]string `json:"urls"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string][]string{"keys": keys}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/api/views/sign")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSignBatchFailed, err)
	}
	if err := toError(resp); err != nil {
		return nil, err
	}
	return result.URLs, nil
}

func (c *RestyClient) SendMediaMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&msg).
		SetError(&apiError{}).
		Post("/api/messages/media")
	if err != nil {
		return nil, err
	}
	if err := toError(resp); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *RestyClient) SetStatus(ctx context.Context, text string, expiresAt *time.Time) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"text": text, "expires_at": expiresAt}).
		SetError(&apiError{}).
		Put("/api/status")
	if err != nil {
		return err
	}
	return toError(resp)
}

func (c *RestyClient) GetStatus(ctx context.Context, userID string) (*Status, error) {
	var status Status
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user", userID).
		SetResult(&status).
		SetError(&apiError{}).
		Get("/api/status")
	if err != nil {
		return nil, err
	}
	if err := toError(resp); err != nil {
		return nil, err
	}
	return &status, nil
}
