package model

import "strconv"

type Image struct {
	Id              int64  `json:"id"`
	Url             string `json:"url"`
	AlternativeText string `json:"alternativeText,omitempty"`
}

type Venue struct {
	Id           int64    `json:"id"`
	DocumentId   string   `json:"documentId"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	Location     string   `json:"location,omitempty"`
	Capacity     int32    `json:"capacity"`
	PricePerHour float64  `json:"pricePerHour"`
	SetupOptions []string `json:"setupOptions"`
	Amenities    []string `json:"amenities"`
	Rules        []string `json:"rules"`
	Images       []Image  `json:"images,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
	PublishedAt  string   `json:"publishedAt,omitempty"`
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type Meta struct {
	Pagination Pagination `json:"pagination"`
}

type VenueListResponse struct {
	Data []Venue `json:"data"`
	Meta Meta    `json:"meta"`
}

type VenueResponse struct {
	Data Venue `json:"data"`
}

type CalendarEvent struct {
	Id           int64  `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Venue        string `json:"venue"`
	Host         string `json:"host"`
	Description  string `json:"description"`
	ManagerName  string `json:"managerName,omitempty"`
	ManagerEmail string `json:"managerEmail,omitempty"`
}

type ListEventsResponse struct {
	Events []CalendarEvent `json:"events"`
}

// FindVenue matches a numeric id, a documentId or a slug.
func FindVenue(venues []Venue, id string) (Venue, bool) {
	numericId, numErr := strconv.ParseInt(id, 10, 64)
	for _, venue := range venues {
		if numErr == nil && venue.Id == numericId {
			return venue, true
		}
		if venue.DocumentId == id || (venue.Slug != "" && venue.Slug == id) {
			return venue, true
		}
	}
	return Venue{}, false
}
