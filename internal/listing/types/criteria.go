package types

import (
	"strconv"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// IntRange is an optional inclusive [Min, Max] bound
type IntRange struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// IsZero reports whether neither bound is set
func (r IntRange) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Contains reports whether v satisfies the present bounds
func (r IntRange) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Registration years outside this range cannot be stored as timestamps
const (
	MinRegistrationYear = 1
	MaxRegistrationYear = 9999
)

// SearchCriteria is the validated, typed form of a search request.
// A zero field means no constraint.
type SearchCriteria struct {
	Query    string
	Category Category
	BodyType BodyType
	Options  []string

	Price            IntRange
	Year             IntRange
	RegistrationYear IntRange
	Odometer         IntRange
	Power            IntRange

	Fuel    Fuel
	Gearbox Gearbox

	ServiceBook *bool
	NonSmoker   *bool
	Warranty    *bool
	Damaged     *bool

	City    string
	Brand   string
	Model   string
	Country string

	Mode          Mode
	SponsoredOnly bool
	SellerID      string
	Registration  Registration

	Sort     SortKey
	Page     int
	PageSize int
	Radius   int
}

// Params encodes c as canonical raw params; normalizing them yields c again
func (c SearchCriteria) Params() RawParams {
	p := RawParams{}

	p.setString(ParamQuery, c.Query)
	p.setString(ParamCategory, string(c.Category))
	p.setString(ParamBodyType, string(c.BodyType))
	if len(c.Options) > 0 {
		p[ParamOptions] = append([]string(nil), c.Options...)
	}

	p.setRange(ParamPriceMin, ParamPriceMax, c.Price)
	p.setRange(ParamYearMin, ParamYearMax, c.Year)
	p.setRange(ParamRegYearMin, ParamRegYearMax, c.RegistrationYear)
	p.setRange(ParamKmMin, ParamKmMax, c.Odometer)
	p.setRange(ParamPowerMin, ParamPowerMax, c.Power)

	p.setString(ParamFuel, string(c.Fuel))
	p.setString(ParamGearbox, string(c.Gearbox))

	p.setBool(ParamServiceBook, c.ServiceBook)
	p.setBool(ParamNonSmoker, c.NonSmoker)
	p.setBool(ParamWarranty, c.Warranty)
	p.setBool(ParamDamaged, c.Damaged)

	p.setString(ParamCity, c.City)
	p.setString(ParamBrand, c.Brand)
	p.setString(ParamModel, c.Model)
	p.setString(ParamCountry, c.Country)

	p.setString(ParamMode, string(c.Mode))
	if c.SponsoredOnly {
		p[ParamSponsored] = []string{"true"}
	}
	p.setString(ParamSellerID, c.SellerID)
	p.setString(ParamRegistration, string(c.Registration))

	p.setString(ParamSort, string(c.Sort))
	if c.Page > 0 {
		p[ParamPage] = []string{strconv.Itoa(c.Page)}
	}
	if c.PageSize > 0 {
		p[ParamPageSize] = []string{strconv.Itoa(c.PageSize)}
	}
	if c.Radius > 0 {
		p[ParamRadius] = []string{strconv.Itoa(c.Radius)}
	}

	return p
}

func (p RawParams) setString(key, v string) {
	if v != "" {
		p[key] = []string{v}
	}
}

func (p RawParams) setBool(key string, v *bool) {
	if v != nil {
		p[key] = []string{strconv.FormatBool(*v)}
	}
}

func (p RawParams) setRange(minKey, maxKey string, r IntRange) {
	if r.Min != nil {
		p[minKey] = []string{strconv.FormatInt(*r.Min, 10)}
	}
	if r.Max != nil {
		p[maxKey] = []string{strconv.FormatInt(*r.Max, 10)}
	}
}
