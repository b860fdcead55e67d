package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPProvider talks to a challenge vendor's HTTP API. Endpoints follow
// the vendor's session model: the script is an account-wide asset,
// widgets are short-lived sessions created against a site key.
type HTTPProvider struct {
	client  *resty.Client
	siteKey string
}

func NewHTTPProvider(baseURL string, siteKey string) *HTTPProvider {
	return &HTTPProvider{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
		siteKey: siteKey,
	}
}

func (p *HTTPProvider) Load(ctx context.Context, forceReload bool) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"site_key": p.siteKey, "force": forceReload}).
		Post("/script/load")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("script load: status %d", resp.StatusCode())
	}
	return nil
}

func (p *HTTPProvider) Ready(ctx context.Context) (bool, error) {
	var result struct {
		Ready bool `json:"ready"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/script/status")
	if err != nil {
		return false, err
	}
	if !resp.IsSuccess() {
		return false, fmt.Errorf("script status: status %d", resp.StatusCode())
	}
	return result.Ready, nil
}

func (p *HTTPProvider) Render(ctx context.Context) (string, error) {
	var result struct {
		WidgetID string `json:"widget_id"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"site_key": p.siteKey, "mode": "explicit"}).
		SetResult(&result).
		Post("/widgets")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() || result.WidgetID == "" {
		return "", fmt.Errorf("render: status %d", resp.StatusCode())
	}
	return result.WidgetID, nil
}

func (p *HTTPProvider) Reset(ctx context.Context, widgetID string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		Post("/widgets/" + widgetID + "/reset")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("reset: status %d", resp.StatusCode())
	}
	return nil
}

func (p *HTTPProvider) Execute(ctx context.Context, widgetID string, action string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"action": action}).
		SetResult(&result).
		Post("/widgets/" + widgetID + "/execute")
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("execute: status %d", resp.StatusCode())
	}
	return result.Token, nil
}
