package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/spf13/viper"
	"io"
	"net/http"
	"strings"
	"venue-booking/common/errs"
	"venue-booking/model"
)

// ProxyOutbound calls this service's own proxy endpoints the way the site's
// browser code does.
type ProxyOutbound struct {
	BaseURL string
	Client  *http.Client
}

func New(cfg *viper.Viper) *ProxyOutbound {
	return &ProxyOutbound{
		BaseURL: strings.TrimRight(cfg.GetString("form.api_base_url"), "/"),
		Client:  &http.Client{Timeout: cfg.GetDuration("form.timeout")},
	}
}

func (out *ProxyOutbound) CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (model.APIResponse, error) {
	return out.post(ctx, "/api/customers", req)
}

func (out *ProxyOutbound) CreateBooking(ctx context.Context, req model.CreateBookingRequest) (model.APIResponse, error) {
	return out.post(ctx, "/api/bookings", req)
}

func (out *ProxyOutbound) post(ctx context.Context, path string, body any) (model.APIResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return model.APIResponse{}, fmt.Errorf("marshal %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, out.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return model.APIResponse{}, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := out.Client.Do(req)
	if err != nil {
		return model.APIResponse{}, fmt.Errorf("%w: POST %s: %w", errs.ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.APIResponse{}, fmt.Errorf("%w: read %s response: %w", errs.ErrUpstreamUnavailable, path, err)
	}

	var apiResp model.APIResponse
	decodeErr := json.Unmarshal(raw, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := apiResp.Message
		if decodeErr != nil || message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return apiResp, &errs.UpstreamError{StatusCode: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return model.APIResponse{}, &errs.UpstreamError{StatusCode: resp.StatusCode, Message: "Invalid response body"}
	}

	return apiResp, nil
}
