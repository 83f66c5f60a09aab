package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// UpstreamClient forwards search calls to the agent's tool server.
type UpstreamClient struct {
	baseURL string
	client  *http.Client
}

func NewUpstreamClient(baseURL string) *UpstreamClient {
	return &UpstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (u *UpstreamClient) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search upstream returned %d", resp.StatusCode)
	}
	return json.RawMessage(raw), nil
}

func (u *UpstreamClient) SearchHotels(ctx context.Context, params HotelSearchParams) (json.RawMessage, error) {
	return u.post(ctx, "/tools/search_hotels", params)
}

func (u *UpstreamClient) SearchFlights(ctx context.Context, params FlightSearchParams) (json.RawMessage, error) {
	return u.post(ctx, "/tools/search_flights", params)
}

func (u *UpstreamClient) RoomRates(ctx context.Context, searchResultID string) (json.RawMessage, error) {
	return u.post(ctx, "/tools/fetch_hotel_rates", map[string]string{"search_result_id": searchResultID})
}
