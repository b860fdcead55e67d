package services

import (
	"context"
	"fmt"
	"time"

	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

// TokenVerifier validates a proof-of-humanity token with the challenge
// provider. Implementations must treat the token as opaque.
type TokenVerifier interface {
	Verify(ctx context.Context, token string, action string) error
}

// HTTPVerifier calls the provider's verification endpoint. Transient
// failures are retried with exponential backoff; a definitive "invalid
// token" answer is not.
type HTTPVerifier struct {
	client   *resty.Client
	endpoint string
	secret   string
	backoff  func() retry.Backoff
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

func NewHTTPVerifier(endpoint string, secret string) *HTTPVerifier {
	client := resty.New().SetTimeout(10 * time.Second)
	return &HTTPVerifier{
		client:   client,
		endpoint: endpoint,
		secret:   secret,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
		},
	}
}

// Verify posts the token to the provider. The provider errors on reused
// tokens, so there is no point retrying a definitive rejection; only
// transport-level failures and 5xx answers are retried.
func (v *HTTPVerifier) Verify(ctx context.Context, token string, action string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", common.ErrPermitExchangeFailed)
	}

	return retry.Do(ctx, v.backoff(), func(ctx context.Context) error {
		var result verifyResponse
		// Some providers answer JSON without a JSON content type; force
		// the decode so a valid token is not mis-rejected.
		resp, err := v.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"secret":   v.secret,
				"response": token,
			}).
			SetResult(&result).
			ForceContentType("application/json").
			Post(v.endpoint)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode() >= 500 {
			return retry.RetryableError(fmt.Errorf("provider status %d", resp.StatusCode()))
		}
		if !result.Success {
			return fmt.Errorf("%w: provider rejected token %v", common.ErrPermitExchangeFailed, result.ErrorCodes)
		}
		if action != "" && result.Action != "" && result.Action != action {
			return fmt.Errorf("%w: action mismatch", common.ErrPermitExchangeFailed)
		}
		return nil
	})
}
