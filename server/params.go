package server

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"airbnb-dashboard/models"
)

// filterQuery is the parsed form of the filter query parameters shared by
// every filtered endpoint and the dashboard form.
type filterQuery struct {
	Cities              []string `json:"city" validate:"dive,max=100"`
	Areas               []string `json:"area" validate:"dive,max=100"`
	RoomTypes           []string `json:"room_type" validate:"dive,max=100"`
	PriceMin            *float64 `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax            *float64 `json:"price_max" validate:"omitempty,gte=0"`
	MinReviews          int      `json:"min_reviews" validate:"gte=0"`
	MinRating           float64  `json:"min_rating" validate:"gte=0,lte=7"`
	GuestFavouritesOnly bool     `json:"guest_favourites_only"`
	CertifiedHostsOnly  bool     `json:"certified_hosts_only"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseFilterQuery reads and validates the filter parameters in q.
// Empty values are treated as absent so an unfilled HTML form is valid.
func parseFilterQuery(v *validator.Validate, q url.Values) (filterQuery, []FieldError) {
	var fq filterQuery
	var errs []FieldError

	fq.Cities = nonEmpty(q["city"])
	fq.Areas = nonEmpty(q["area"])
	fq.RoomTypes = nonEmpty(q["room_type"])

	parseFloat := func(name string) *float64 {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("%s must be a number", name)})
			return nil
		}
		return &f
	}
	parseBool := func(name string) bool {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return false
		}
		if strings.EqualFold(raw, "on") {
			return true
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Message: fmt.Sprintf("%s must be a boolean", name)})
		}
		return b
	}

	fq.PriceMin = parseFloat("price_min")
	fq.PriceMax = parseFloat("price_max")
	if p := parseFloat("min_rating"); p != nil {
		fq.MinRating = *p
	}
	if raw := strings.TrimSpace(q.Get("min_reviews")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: "min_reviews", Message: "min_reviews must be an integer"})
		}
		fq.MinReviews = n
	}
	fq.GuestFavouritesOnly = parseBool("guest_favourites_only")
	fq.CertifiedHostsOnly = parseBool("certified_hosts_only")

	if len(errs) > 0 {
		return fq, errs
	}

	if err := v.Struct(fq); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				errs = append(errs, FieldError{Field: fe.Field(), Message: describeFieldError(fe)})
			}
		} else {
			errs = append(errs, FieldError{Message: err.Error()})
		}
	}
	if fq.PriceMin != nil && fq.PriceMax != nil && *fq.PriceMin > *fq.PriceMax {
		errs = append(errs, FieldError{Field: "price_min", Message: "price_min must not exceed price_max"})
	}
	return fq, errs
}

// Options converts the query to filter engine options. Supplying either
// price bound creates an inclusive range; the other bound defaults to 0 or
// +Inf.
func (fq filterQuery) Options() models.FilterOptions {
	opts := models.FilterOptions{
		Cities:              fq.Cities,
		Areas:               fq.Areas,
		RoomTypes:           fq.RoomTypes,
		MinReviews:          fq.MinReviews,
		MinRating:           fq.MinRating,
		GuestFavouritesOnly: fq.GuestFavouritesOnly,
		CertifiedHostsOnly:  fq.CertifiedHostsOnly,
	}
	if fq.PriceMin != nil || fq.PriceMax != nil {
		pr := &models.PriceRange{Min: 0, Max: math.Inf(1)}
		if fq.PriceMin != nil {
			pr.Min = *fq.PriceMin
		}
		if fq.PriceMax != nil {
			pr.Max = *fq.PriceMax
		}
		opts.PriceRange = pr
	}
	return opts
}

// defaultPriceCeiling caps the price range preset on a fresh dashboard.
const defaultPriceCeiling = 500.0

// defaultFilterQuery is the form state of a dashboard opened without a query:
// prices from 0 up to the lower of defaultPriceCeiling and the dataset's
// highest price. The returned values encode the same filter for export links.
func defaultFilterQuery(stats *models.Stats) (filterQuery, url.Values) {
	lo, hi := 0.0, defaultPriceCeiling
	if stats != nil && stats.PriceRange.Max.Valid && stats.PriceRange.Max.Float64 < hi {
		hi = stats.PriceRange.Max.Float64
	}
	q := url.Values{}
	q.Set("price_min", strconv.FormatFloat(lo, 'f', -1, 64))
	q.Set("price_max", strconv.FormatFloat(hi, 'f', -1, 64))
	return filterQuery{PriceMin: &lo, PriceMax: &hi}, q
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
