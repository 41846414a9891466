package types

import "strings"

// Mode is sale versus rental; ModeAll only appears in criteria
type Mode string

const (
	ModeSale Mode = "SALE"
	ModeRent Mode = "RENT"
	ModeAll  Mode = "ALL"
)

type Category string

const (
	CategoryAuto    Category = "auto"
	CategoryMoto    Category = "moto"
	CategoryTruck   Category = "truck"
	CategoryVan     Category = "van"
	CategoryBus     Category = "bus"
	CategoryCamper  Category = "camper"
	CategoryTrailer Category = "trailer"
)

type BodyType string

const (
	BodySedan       BodyType = "sedan"
	BodyHatchback   BodyType = "hatchback"
	BodyWagon       BodyType = "wagon"
	BodySUV         BodyType = "suv"
	BodyCoupe       BodyType = "coupe"
	BodyConvertible BodyType = "convertible"
	BodyMinivan     BodyType = "minivan"
	BodyPickup      BodyType = "pickup"
	BodyVan         BodyType = "van"
)

type Fuel string

const (
	FuelPetrol   Fuel = "petrol"
	FuelDiesel   Fuel = "diesel"
	FuelElectric Fuel = "electric"
	FuelHybrid   Fuel = "hybrid"
	FuelLPG      Fuel = "lpg"
	FuelCNG      Fuel = "cng"
)

type Gearbox string

const (
	GearboxManual        Gearbox = "manual"
	GearboxAutomatic     Gearbox = "automatic"
	GearboxSemiAutomatic Gearbox = "semi_automatic"
)

// Registration filters on whether a first-registration date is known
type Registration string

const (
	RegistrationYes Registration = "yes"
	RegistrationNo  Registration = "no"
)

type SortKey string

const (
	SortDefault   SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortKmAsc     SortKey = "km_asc"
	SortKmDesc    SortKey = "km_desc"
	SortYearAsc   SortKey = "year_asc"
	SortYearDesc  SortKey = "year_desc"
	SortPowerAsc  SortKey = "power_asc"
	SortPowerDesc SortKey = "power_desc"
	SortDateAsc   SortKey = "date_asc"
	SortDateDesc  SortKey = "date_desc"
)

var (
	modes         = []Mode{ModeSale, ModeRent, ModeAll}
	categories    = []Category{CategoryAuto, CategoryMoto, CategoryTruck, CategoryVan, CategoryBus, CategoryCamper, CategoryTrailer}
	bodyTypes     = []BodyType{BodySedan, BodyHatchback, BodyWagon, BodySUV, BodyCoupe, BodyConvertible, BodyMinivan, BodyPickup, BodyVan}
	fuels         = []Fuel{FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid, FuelLPG, FuelCNG}
	gearboxes     = []Gearbox{GearboxManual, GearboxAutomatic, GearboxSemiAutomatic}
	registrations = []Registration{RegistrationYes, RegistrationNo}
	sortKeys      = []SortKey{SortPriceAsc, SortPriceDesc, SortKmAsc, SortKmDesc, SortYearAsc, SortYearDesc, SortPowerAsc, SortPowerDesc, SortDateAsc, SortDateDesc}
)

// lookup matches s against allowed ignoring case and returns the canonical value
func lookup[T ~string](allowed []T, s string) (T, bool) {
	for _, v := range allowed {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func ParseMode(s string) (Mode, bool)                 { return lookup(modes, s) }
func ParseCategory(s string) (Category, bool)         { return lookup(categories, s) }
func ParseBodyType(s string) (BodyType, bool)         { return lookup(bodyTypes, s) }
func ParseFuel(s string) (Fuel, bool)                 { return lookup(fuels, s) }
func ParseGearbox(s string) (Gearbox, bool)           { return lookup(gearboxes, s) }
func ParseRegistration(s string) (Registration, bool) { return lookup(registrations, s) }
func ParseSortKey(s string) (SortKey, bool)           { return lookup(sortKeys, s) }

// AllowedRadii are the accepted search radii in km
var AllowedRadii = []int{10, 25, 50, 100}
