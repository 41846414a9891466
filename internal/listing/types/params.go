package types

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Raw parameter names
const (
	ParamQuery        = "q"
	ParamCategory     = "category"
	ParamBodyType     = "body_type"
	ParamOptions      = "options"
	ParamPriceMin     = "price_min"
	ParamPriceMax     = "price_max"
	ParamYearMin      = "year_min"
	ParamYearMax      = "year_max"
	ParamRegYearMin   = "reg_year_min"
	ParamRegYearMax   = "reg_year_max"
	ParamKmMin        = "km_min"
	ParamKmMax        = "km_max"
	ParamPowerMin     = "power_min"
	ParamPowerMax     = "power_max"
	ParamFuel         = "fuel"
	ParamElectric     = "electric"
	ParamGearbox      = "gearbox"
	ParamServiceBook  = "service_book"
	ParamNonSmoker    = "non_smoker"
	ParamWarranty     = "warranty"
	ParamDamaged      = "damaged"
	ParamCity         = "city"
	ParamBrand        = "brand"
	ParamModel        = "model"
	ParamCountry      = "country"
	ParamMode         = "mode"
	ParamSponsored    = "sponsored"
	ParamSellerID     = "seller_id"
	ParamRegistration = "registration"
	ParamSort         = "sort"
	ParamPage         = "page"
	ParamPageSize     = "page_size"
	ParamRadius       = "radius"
)

// RawParams is an untyped parameter bag; every key may repeat
type RawParams map[string][]string

// FromValues converts query string values, accepting "options[]" as "options"
func FromValues(v url.Values) RawParams {
	p := make(RawParams, len(v))
	for key, values := range v {
		key = strings.TrimSuffix(key, "[]")
		p[key] = append(p[key], values...)
	}
	return p
}

// First returns the first value of key
func (p RawParams) First(key string) (string, bool) {
	values := p[key]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Values returns a copy as url.Values
func (p RawParams) Values() url.Values {
	v := make(url.Values, len(p))
	for key, values := range p {
		v[key] = append([]string(nil), values...)
	}
	return v
}

// UnmarshalJSON accepts an object whose values are strings, numbers, bools or arrays of those
func (p *RawParams) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid params json")
	}

	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		*p = RawParams{}
		return nil
	}
	if !root.IsObject() {
		return fmt.Errorf("params must be a json object")
	}

	out := RawParams{}
	root.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			for _, item := range value.Array() {
				if s, ok := scalar(item); ok {
					out[key.String()] = append(out[key.String()], s)
				}
			}
			return true
		}
		if s, ok := scalar(value); ok {
			out[key.String()] = append(out[key.String()], s)
		}
		return true
	})

	*p = out
	return nil
}

func scalar(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		return v.Str, true
	case gjson.Number:
		// Raw keeps "12" instead of "12.000000"
		return v.Raw, true
	case gjson.True:
		return "true", true
	case gjson.False:
		return "false", true
	default:
		return "", false
	}
}
