package biz

import (
	"slices"
	"strings"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
)

// StorePredicate holds the constraints pushed down to the listing store.
// Zero fields impose no constraint, except Modes which is always set by Build.
type StorePredicate struct {
	Modes []types.Mode

	Query   string // substring of title, make, model or trim
	City    string // substring
	Model   string // substring
	Country string

	Category types.Category
	BodyType types.BodyType
	Fuel     types.Fuel
	Gearbox  types.Gearbox

	Price    types.IntRange
	Year     types.IntRange
	Odometer types.IntRange
	Power    types.IntRange

	// Registered: nil for any, true for a known first registration, false for none
	Registered       *bool
	RegisteredFrom   *time.Time // inclusive
	RegisteredBefore *time.Time // exclusive

	ServiceBook *bool
	NonSmoker   *bool
	Warranty    *bool
	Damaged     *bool

	SponsoredOnly bool
	SellerID      string
}

// ResidualPredicate holds the constraints evaluated in memory after the fetch
type ResidualPredicate struct {
	Options []string // all must be present
	Brand   string   // substring of make
}

// Build splits criteria into store and residual predicates
func Build(c types.SearchCriteria) (StorePredicate, ResidualPredicate) {
	sp := StorePredicate{
		Modes:         resolveModes(c.Mode),
		Query:         c.Query,
		City:          c.City,
		Model:         c.Model,
		Country:       c.Country,
		Category:      c.Category,
		BodyType:      c.BodyType,
		Fuel:          c.Fuel,
		Gearbox:       c.Gearbox,
		Price:         c.Price,
		Year:          c.Year,
		Odometer:      c.Odometer,
		Power:         c.Power,
		ServiceBook:   c.ServiceBook,
		NonSmoker:     c.NonSmoker,
		Warranty:      c.Warranty,
		Damaged:       c.Damaged,
		SponsoredOnly: c.SponsoredOnly,
		SellerID:      c.SellerID,
	}

	switch c.Registration {
	case types.RegistrationYes:
		registered := true
		sp.Registered = &registered
		if c.RegistrationYear.Min != nil {
			from := yearStart(clampYear(*c.RegistrationYear.Min))
			sp.RegisteredFrom = &from
		}
		// the last storable year has no exclusive upper bound
		if c.RegistrationYear.Max != nil && *c.RegistrationYear.Max < types.MaxRegistrationYear {
			before := yearStart(clampYear(*c.RegistrationYear.Max) + 1)
			sp.RegisteredBefore = &before
		}
	case types.RegistrationNo:
		registered := false
		sp.Registered = &registered
	}

	rp := ResidualPredicate{
		Options: slices.Clone(c.Options),
		Brand:   c.Brand,
	}

	return sp, rp
}

// resolveModes maps unset to SALE and ALL to both modes
func resolveModes(m types.Mode) []types.Mode {
	switch m {
	case types.ModeAll:
		return []types.Mode{types.ModeSale, types.ModeRent}
	case types.ModeSale, types.ModeRent:
		return []types.Mode{m}
	default:
		return []types.Mode{types.ModeSale}
	}
}

func yearStart(year int64) time.Time {
	return time.Date(int(year), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Matches is the in-memory meaning of the predicate; store implementations
// must select exactly the listings for which it returns true.
func (p StorePredicate) Matches(l *types.Listing) bool {
	if l == nil || l.Status != types.StatusActive {
		return false
	}
	if !slices.Contains(p.Modes, l.Mode) {
		return false
	}

	if p.Query != "" && !containsFold(l.Title, p.Query) && !containsFold(l.Make, p.Query) &&
		!containsFold(l.Model, p.Query) && !containsFold(l.Trim, p.Query) {
		return false
	}
	if p.City != "" && !containsFold(l.City, p.City) {
		return false
	}
	if p.Model != "" && !containsFold(l.Model, p.Model) {
		return false
	}
	if p.Country != "" && l.Country != p.Country {
		return false
	}

	if p.Category != "" && l.Category != p.Category {
		return false
	}
	if p.BodyType != "" && l.BodyType != p.BodyType {
		return false
	}
	if p.Fuel != "" && l.Fuel != p.Fuel {
		return false
	}
	if p.Gearbox != "" && l.Gearbox != p.Gearbox {
		return false
	}

	if !p.Price.Contains(l.Price) || !p.Year.Contains(l.Year) ||
		!p.Odometer.Contains(l.Odometer) || !p.Power.Contains(l.Power) {
		return false
	}

	if p.Registered != nil {
		if *p.Registered != (l.FirstRegistration != nil) {
			return false
		}
		if p.RegisteredFrom != nil && l.FirstRegistration.Before(*p.RegisteredFrom) {
			return false
		}
		if p.RegisteredBefore != nil && !l.FirstRegistration.Before(*p.RegisteredBefore) {
			return false
		}
	}

	if !flagMatches(p.ServiceBook, l.ServiceBook) || !flagMatches(p.NonSmoker, l.NonSmoker) ||
		!flagMatches(p.Warranty, l.Warranty) || !flagMatches(p.Damaged, l.Damaged) {
		return false
	}

	if p.SponsoredOnly && !l.Sponsored {
		return false
	}
	if p.SellerID != "" && l.SellerID != p.SellerID {
		return false
	}

	return true
}

// Matches applies tag containment and the brand substring
func (p ResidualPredicate) Matches(l *types.Listing) bool {
	if l == nil {
		return false
	}
	for _, opt := range p.Options {
		if !slices.Contains(l.Tags, opt) {
			return false
		}
	}
	if p.Brand != "" && !containsFold(l.Make, p.Brand) {
		return false
	}
	return true
}

// IsZero reports whether the residual filter accepts everything
func (p ResidualPredicate) IsZero() bool {
	return len(p.Options) == 0 && p.Brand == ""
}

func flagMatches(want *bool, got bool) bool {
	return want == nil || *want == got
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
