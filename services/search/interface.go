package search

import (
	"context"
	"encoding/json"
)

// HotelSearchParams mirror the agent's hotel search tool inputs.
type HotelSearchParams struct {
	Location     string `json:"location"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
	MaxResults   int    `json:"max_results"`
	HotelName    string `json:"hotel_name,omitempty"`
}

// FlightSearchParams mirror the agent's flight search tool inputs.
type FlightSearchParams struct {
	Slices     []FlightSlice `json:"slices"`
	Passengers int           `json:"passengers"`
	CabinClass string        `json:"cabin_class"`
	MaxResults int           `json:"max_results"`
}

type FlightSlice struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

// Service is the opaque search collaborator. Results pass through
// untouched; the checkout core only cares about gating the calls, not
// about their payloads.
type Service interface {
	SearchHotels(ctx context.Context, params HotelSearchParams) (json.RawMessage, error)
	SearchFlights(ctx context.Context, params FlightSearchParams) (json.RawMessage, error)
	RoomRates(ctx context.Context, searchResultID string) (json.RawMessage, error)
}
