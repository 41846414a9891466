package types

import "time"

// Status is the lifecycle state of a listing
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusSold     Status = "SOLD"
	StatusArchived Status = "ARCHIVED"
)

// Listing is a vehicle advert as stored by the marketplace
type Listing struct {
	ID       int64    `json:"id"`
	Status   Status   `json:"status"`
	Mode     Mode     `json:"mode"`
	Category Category `json:"category"`
	BodyType BodyType `json:"body_type,omitempty"`

	Title string `json:"title"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Trim  string `json:"trim,omitempty"`

	Price    int64 `json:"price"`
	Year     int64 `json:"year"`
	Odometer int64 `json:"odometer"`
	Power    int64 `json:"power"`

	City    string `json:"city"`
	Country string `json:"country"`

	Fuel    Fuel    `json:"fuel,omitempty"`
	Gearbox Gearbox `json:"gearbox,omitempty"`
	Doors   int     `json:"doors,omitempty"`
	Seats   int     `json:"seats,omitempty"`

	ServiceBook bool `json:"service_book"`
	NonSmoker   bool `json:"non_smoker"`
	Warranty    bool `json:"warranty"`
	Damaged     bool `json:"damaged"`

	Tags []string `json:"tags"`

	Sponsored         bool       `json:"sponsored"`
	SponsoredUntil    *time.Time `json:"sponsored_until,omitempty"`
	FirstRegistration *time.Time `json:"first_registration,omitempty"`

	SellerID  string    `json:"seller_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingCard is a search hit decorated for the current principal
type ListingCard struct {
	*Listing
	IsFavorite bool `json:"is_favorite"`
}

// ResultPage is one page of an assembled result set
type ResultPage struct {
	Items      []*Listing
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// SearchResult is what the search endpoint returns
type SearchResult struct {
	Items      []*ListingCard `json:"items"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}
