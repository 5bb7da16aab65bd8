package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/errs"
	"venue-booking/common/metrics"
	internalOtel "venue-booking/common/otel"
	"venue-booking/model"
)

const (
	maxResponseBytes = 1 << 20
	venuePageSize    = 100
)

type CmsOutbound struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func New(cfg *viper.Viper) (*CmsOutbound, error) {
	baseURL, err := NormalizeBaseURL(cfg.GetString("cms.base_url"))
	if err != nil {
		return nil, err
	}

	return &CmsOutbound{
		BaseURL: baseURL,
		Token:   cfg.GetString("cms.token"),
		Client:  &http.Client{Timeout: cfg.GetDuration("cms.timeout")},
	}, nil
}

// NormalizeBaseURL trims the trailing slash and pins localhost to 127.0.0.1 so the
// CMS is not reached over ::1 when it only listens on IPv4.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("cms base url is not configured")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse cms base url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("cms base url must be http or https, got %q", raw)
	}

	if u.Hostname() == "localhost" {
		if port := u.Port(); port != "" {
			u.Host = net.JoinHostPort("127.0.0.1", port)
		} else {
			u.Host = "127.0.0.1"
		}
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (out *CmsOutbound) CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (string, error) {
	var resp model.CmsData[model.CmsEntity]
	if err := out.do(ctx, "CreateCustomer", http.MethodPost, "/customers", nil, req, &resp); err != nil {
		return "", err
	}

	id := entityId(resp.Data)
	if id == "" {
		return "", &errs.UpstreamError{StatusCode: http.StatusBadGateway, Message: constant.MessageMissingCustomerId}
	}

	return id, nil
}

// FindCustomerByEmail returns "" when no customer has that email.
func (out *CmsOutbound) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	query := url.Values{}
	query.Set("filters[email][$eq]", email)
	query.Set("pagination[pageSize]", "1")

	var resp model.CmsData[[]model.CmsEntity]
	if err := out.do(ctx, "FindCustomerByEmail", http.MethodGet, "/customers", query, nil, &resp); err != nil {
		return "", err
	}

	if len(resp.Data) == 0 {
		return "", nil
	}

	return entityId(resp.Data[0]), nil
}

// CreateOrIdentifyCustomer creates the customer, or resolves the existing one when the
// CMS rejects the email as taken. created reports whether this call made the record.
func (out *CmsOutbound) CreateOrIdentifyCustomer(ctx context.Context, req model.CreateCustomerRequest) (id string, created bool, err error) {
	id, err = out.CreateCustomer(ctx, req)
	if err == nil {
		return id, true, nil
	}

	var upErr *errs.UpstreamError
	if !errors.As(err, &upErr) || !isUniqueViolation(upErr) {
		return "", false, err
	}

	existing, findErr := out.FindCustomerByEmail(ctx, req.Email)
	if findErr != nil {
		return "", false, findErr
	}

	if existing == "" {
		return "", false, err
	}

	return existing, false, nil
}

// DeleteCustomer treats an already missing customer as deleted.
func (out *CmsOutbound) DeleteCustomer(ctx context.Context, id string) error {
	err := out.do(ctx, "DeleteCustomer", http.MethodDelete, "/customers/"+url.PathEscape(id), nil, nil, nil)

	var upErr *errs.UpstreamError
	if errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound {
		return nil
	}

	return err
}

func (out *CmsOutbound) CreateBooking(ctx context.Context, data model.BookingData) (string, error) {
	if data.Status == "" {
		data.Status = constant.BookingStatusPending
	}

	var resp model.CmsData[model.CmsEntity]
	if err := out.do(ctx, "CreateBooking", http.MethodPost, "/bookings", nil, data, &resp); err != nil {
		return "", err
	}

	id := entityId(resp.Data)
	if id == "" {
		return "", &errs.UpstreamError{StatusCode: http.StatusBadGateway, Message: "Booking id missing from booking service response"}
	}

	return id, nil
}

// ListCustomerBookings returns the bookings linked to a customer with their venue
// populated, so callers can tell whether deleting the customer would orphan one.
func (out *CmsOutbound) ListCustomerBookings(ctx context.Context, customerId string) ([]model.CmsBooking, error) {
	field := "documentId"
	if _, err := strconv.ParseInt(customerId, 10, 64); err == nil {
		field = "id"
	}

	query := url.Values{}
	query.Set("filters[customer]["+field+"][$eq]", customerId)
	query.Set("populate[venue][fields][0]", "documentId")
	query.Set("populate[venue][fields][1]", "slug")
	query.Set("pagination[pageSize]", strconv.Itoa(venuePageSize))

	var resp model.CmsData[[]model.CmsBooking]
	if err := out.do(ctx, "ListCustomerBookings", http.MethodGet, "/bookings", query, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

func (out *CmsOutbound) ListVenues(ctx context.Context) ([]model.Venue, model.Pagination, error) {
	query := url.Values{}
	query.Set("populate[images]", "true")
	query.Set("pagination[pageSize]", strconv.Itoa(venuePageSize))

	var resp model.VenueListResponse
	if err := out.do(ctx, "ListVenues", http.MethodGet, "/venues", query, nil, &resp); err != nil {
		return nil, model.Pagination{}, err
	}

	for i := range resp.Data {
		out.absoluteImageUrls(&resp.Data[i])
	}

	return resp.Data, resp.Meta.Pagination, nil
}

func (out *CmsOutbound) GetVenue(ctx context.Context, id string) (model.Venue, error) {
	query := url.Values{}
	query.Set("populate[images]", "true")

	var resp model.VenueResponse
	if err := out.do(ctx, "GetVenue", http.MethodGet, "/venues/"+url.PathEscape(id), query, nil, &resp); err != nil {
		return model.Venue{}, err
	}

	out.absoluteImageUrls(&resp.Data)
	return resp.Data, nil
}

type venueInput struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	Capacity     int32    `json:"capacity"`
	PricePerHour float64  `json:"pricePerHour"`
	SetupOptions []string `json:"setupOptions"`
	Amenities    []string `json:"amenities"`
	Rules        []string `json:"rules"`
}

func (out *CmsOutbound) CreateVenue(ctx context.Context, venue model.Venue) (string, error) {
	input := venueInput{
		Name:         venue.Name,
		Slug:         venue.Slug,
		Description:  venue.Description,
		Capacity:     venue.Capacity,
		PricePerHour: venue.PricePerHour,
		SetupOptions: venue.SetupOptions,
		Amenities:    venue.Amenities,
		Rules:        venue.Rules,
	}

	var resp model.CmsData[model.CmsEntity]
	if err := out.do(ctx, "CreateVenue", http.MethodPost, "/venues", nil, input, &resp); err != nil {
		return "", err
	}

	return entityId(resp.Data), nil
}

func (out *CmsOutbound) do(ctx context.Context, operation, method, path string, query url.Values, body any, result any) error {
	ctx, span := internalOtel.Tracer.Start(ctx, "CmsOutbound."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.CmsRequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}()

	endpoint := out.BaseURL + "/api" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(model.CmsData[any]{Data: body})
		if err != nil {
			common.UtilSpanError(span, err)
			return fmt.Errorf("marshal %s body: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("build %s request: %w", operation, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if out.Token != "" {
		req.Header.Set("Authorization", "Bearer "+out.Token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", endpoint),
	)

	resp, err := out.Client.Do(req)
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("%w: %s %s: %w", errs.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("%w: read %s response: %w", errs.ErrUpstreamUnavailable, operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr := &errs.UpstreamError{StatusCode: resp.StatusCode, Message: extractMessage(raw, resp.StatusCode)}
		common.UtilSpanError(span, upErr)
		return upErr
	}

	if result == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, result); err != nil {
		common.UtilSpanError(span, err)
		return &errs.UpstreamError{StatusCode: http.StatusBadGateway, Message: "Invalid response from booking service"}
	}

	return nil
}

func (out *CmsOutbound) absoluteImageUrls(venue *model.Venue) {
	for i, img := range venue.Images {
		if strings.HasPrefix(img.Url, "/") {
			venue.Images[i].Url = out.BaseURL + img.Url
		}
	}
}

// extractMessage pulls a human readable message out of a CMS error body.
func extractMessage(raw []byte, statusCode int) string {
	var cmsErr model.CmsErrorResponse
	if err := json.Unmarshal(raw, &cmsErr); err == nil {
		if cmsErr.Error.Message != "" {
			return cmsErr.Error.Message
		}
		if cmsErr.Message != "" {
			return cmsErr.Message
		}
	}

	text := strings.TrimSpace(string(raw))
	if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") && !strings.HasPrefix(text, "{") {
		return text
	}

	if statusText := http.StatusText(statusCode); statusText != "" {
		return statusText
	}

	return fmt.Sprintf("Booking service returned status %d", statusCode)
}

func entityId(e model.CmsEntity) string {
	if e.DocumentId != "" {
		return e.DocumentId
	}
	if e.Id != 0 {
		return strconv.FormatInt(e.Id, 10)
	}
	return ""
}

func isUniqueViolation(err *errs.UpstreamError) bool {
	if err.StatusCode != http.StatusBadRequest {
		return false
	}

	msg := strings.ToLower(err.Message)
	return strings.Contains(msg, "unique") || strings.Contains(msg, "already taken")
}
