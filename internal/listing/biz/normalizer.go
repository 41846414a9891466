package biz

import (
	"slices"
	"strconv"
	"strings"

	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
)

// Normalize turns raw params into criteria. It never fails: a malformed value
// is dropped and behaves as no constraint.
func Normalize(raw types.RawParams) types.SearchCriteria {
	r := reader(raw)

	c := types.SearchCriteria{
		Query:    r.text(types.ParamQuery),
		Options:  r.options(),
		City:     r.text(types.ParamCity),
		Brand:    r.text(types.ParamBrand),
		Model:    r.text(types.ParamModel),
		Country:  r.country(),
		SellerID: r.text(types.ParamSellerID),

		Price:            r.intRange(types.ParamPriceMin, types.ParamPriceMax),
		Year:             r.intRange(types.ParamYearMin, types.ParamYearMax),
		RegistrationYear: r.yearRange(types.ParamRegYearMin, types.ParamRegYearMax),
		Odometer:         r.intRange(types.ParamKmMin, types.ParamKmMax),
		Power:            r.intRange(types.ParamPowerMin, types.ParamPowerMax),

		ServiceBook: r.boolean(types.ParamServiceBook),
		NonSmoker:   r.boolean(types.ParamNonSmoker),
		Warranty:    r.boolean(types.ParamWarranty),
		Damaged:     r.boolean(types.ParamDamaged),
	}

	c.Category, _ = types.ParseCategory(r.text(types.ParamCategory))
	c.BodyType, _ = types.ParseBodyType(r.text(types.ParamBodyType))
	c.Fuel, _ = types.ParseFuel(r.text(types.ParamFuel))
	c.Gearbox, _ = types.ParseGearbox(r.text(types.ParamGearbox))
	c.Mode, _ = types.ParseMode(r.text(types.ParamMode))
	c.Registration, _ = types.ParseRegistration(r.text(types.ParamRegistration))
	c.Sort, _ = types.ParseSortKey(r.text(types.ParamSort))

	if electric := r.boolean(types.ParamElectric); electric != nil && *electric {
		c.Fuel = types.FuelElectric
	}
	if sponsored := r.boolean(types.ParamSponsored); sponsored != nil {
		c.SponsoredOnly = *sponsored
	}

	c.Page = 1
	if page, ok := r.integer(types.ParamPage); ok && page > 1 {
		c.Page = clampInt(page, 1, maxPage)
	}

	c.PageSize = types.DefaultPageSize
	if size, ok := r.integer(types.ParamPageSize); ok {
		c.PageSize = clampInt(size, 1, types.MaxPageSize)
	}

	if radius, ok := r.integer(types.ParamRadius); ok && slices.Contains(types.AllowedRadii, int(radius)) {
		c.Radius = int(radius)
	}

	return c
}

// pages beyond this are clamped by the assembler anyway
const maxPage = 1 << 30

type reader types.RawParams

// text returns the trimmed first value; empty means absent
func (r reader) text(key string) string {
	v, _ := types.RawParams(r).First(key)
	return strings.TrimSpace(v)
}

func (r reader) integer(key string) (int64, bool) {
	s := r.text(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r reader) intRange(minKey, maxKey string) types.IntRange {
	var out types.IntRange
	if v, ok := r.integer(minKey); ok {
		out.Min = &v
	}
	if v, ok := r.integer(maxKey); ok {
		out.Max = &v
	}
	return out
}

// yearRange clamps both bounds into the storable registration years
func (r reader) yearRange(minKey, maxKey string) types.IntRange {
	out := r.intRange(minKey, maxKey)
	for _, bound := range []*int64{out.Min, out.Max} {
		if bound != nil {
			*bound = clampYear(*bound)
		}
	}
	return out
}

func clampYear(y int64) int64 {
	return max(types.MinRegistrationYear, min(y, types.MaxRegistrationYear))
}

func (r reader) boolean(key string) *bool {
	var v bool
	switch strings.ToLower(r.text(key)) {
	case "1", "true", "on", "yes":
		v = true
	case "0", "false", "off", "no":
		v = false
	default:
		return nil
	}
	return &v
}

// options keeps every non-empty tag once, in first-seen order
func (r reader) options() []string {
	var out []string
	for _, v := range r[types.ParamOptions] {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// country accepts a two-letter code in any case
func (r reader) country() string {
	s := strings.ToUpper(r.text(types.ParamCountry))
	if len(s) != 2 || s[0] < 'A' || s[0] > 'Z' || s[1] < 'A' || s[1] > 'Z' {
		return ""
	}
	return s
}

func clampInt(v, lo, hi int64) int {
	return int(max(lo, min(v, hi)))
}
