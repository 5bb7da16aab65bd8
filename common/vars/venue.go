package vars

import (
	"sync/atomic"
	"venue-booking/model"
)

type venueSnapshot struct {
	venues     []model.Venue
	pagination model.Pagination
	mock       bool
}

// venueData is swapped whole by the venue cron so readers never lock.
var venueData atomic.Pointer[venueSnapshot]

// GetVenues returns the current venue list, its pagination and whether it is mock data.
func GetVenues() ([]model.Venue, model.Pagination, bool) {
	snap := venueData.Load()
	if snap == nil {
		return nil, model.Pagination{}, false
	}
	return snap.venues, snap.pagination, snap.mock
}

// SetVenues copies venues into a new snapshot. Nil clears it.
func SetVenues(venues []model.Venue, pagination model.Pagination, mock bool) {
	if venues == nil {
		venueData.Store(nil)
		return
	}

	venuesCopy := make([]model.Venue, len(venues))
	copy(venuesCopy, venues)
	venueData.Store(&venueSnapshot{venues: venuesCopy, pagination: pagination, mock: mock})
}
