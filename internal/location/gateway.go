package location

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
)

// GatewayProvider asks the mobile device gateway for a user's last reported
// position. The gateway relays the acquisition parameters to the device, so
// the accuracy/timeout/max-age knobs here travel all the way to the GPS chip.
type GatewayProvider struct {
	client *resty.Client
}

// NewGatewayProvider constructs a provider for the gateway at baseURL,
// authenticating with apiKey. The HTTP timeout is left to per-call contexts:
// the cascade bounds each attempt itself.
func NewGatewayProvider(baseURL, apiKey string) *GatewayProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetRetryCount(0) // the cascade owns all retry behaviour

	return &GatewayProvider{client: client}
}

type positionRequest struct {
	UserID       string `json:"user_id"`
	HighAccuracy bool   `json:"high_accuracy"`
	TimeoutMs    int64  `json:"timeout_ms"`
	MaximumAgeMs int64  `json:"maximum_age_ms"`
}

type positionResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CurrentPosition requests one position fix. A 403 from the gateway means
// the device refused the location permission and maps to ErrPermissionDenied;
// everything else non-2xx (including timeouts) is a plain error the cascade
// treats as a failed attempt.
func (p *GatewayProvider) CurrentPosition(ctx context.Context, userID uuid.UUID, opts Options) (domain.GeoPoint, error) {
	var out positionResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(positionRequest{
			UserID:       userID.String(),
			HighAccuracy: opts.HighAccuracy,
			TimeoutMs:    opts.Timeout.Milliseconds(),
			MaximumAgeMs: opts.MaximumAge.Milliseconds(),
		}).
		SetResult(&out).
		Post("/v1/position")
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("location.GatewayProvider.CurrentPosition: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusForbidden:
		return domain.GeoPoint{}, ErrPermissionDenied
	case resp.IsError():
		return domain.GeoPoint{}, fmt.Errorf("location.GatewayProvider.CurrentPosition: gateway returned %d", resp.StatusCode())
	}

	return domain.GeoPoint{Lat: out.Lat, Lng: out.Lng}, nil
}

var _ Provider = (*GatewayProvider)(nil)

