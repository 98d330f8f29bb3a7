package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
)

// filterFlags mirrors the dashboard's filter form on the command line.
type filterFlags struct {
	cities     []string
	areas      []string
	roomTypes  []string
	priceMin   float64
	priceMax   float64
	minReviews int
	minRating  float64
	favourites bool
	certified  bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.cities, "city", nil, "keep only these cities (repeatable)")
	fs.StringSliceVar(&f.areas, "area", nil, "keep only these areas (repeatable)")
	fs.StringSliceVar(&f.roomTypes, "room-type", nil, "keep only these room types, e.g. \"Private Room\"")
	fs.Float64Var(&f.priceMin, "price-min", 0, "minimum cleaned price (inclusive)")
	fs.Float64Var(&f.priceMax, "price-max", 0, "maximum cleaned price (inclusive)")
	fs.IntVar(&f.minReviews, "min-reviews", 0, "minimum number of reviews")
	fs.Float64Var(&f.minRating, "min-rating", 0, "minimum rating on the 0-7 scale")
	fs.BoolVar(&f.favourites, "guest-favourites-only", false, "keep only guest favourites")
	fs.BoolVar(&f.certified, "certified-hosts-only", false, "keep only certified hosts")
}

// options converts the flags to filter options. Setting either price flag
// creates an inclusive range with the other bound open.
func (f *filterFlags) options(cmd *cobra.Command) (models.FilterOptions, error) {
	opts := models.FilterOptions{
		Cities:              f.cities,
		Areas:               f.areas,
		RoomTypes:           f.roomTypes,
		MinReviews:          f.minReviews,
		MinRating:           f.minRating,
		GuestFavouritesOnly: f.favourites,
		CertifiedHostsOnly:  f.certified,
	}

	if f.minReviews < 0 {
		return opts, fmt.Errorf("--min-reviews must be at least 0")
	}
	if f.minRating < 0 || f.minRating > services.RatingScale {
		return opts, fmt.Errorf("--min-rating must be between 0 and %g", services.RatingScale)
	}

	minSet := cmd.Flags().Changed("price-min")
	maxSet := cmd.Flags().Changed("price-max")
	if minSet || maxSet {
		pr := &models.PriceRange{Min: 0, Max: math.Inf(1)}
		if minSet {
			pr.Min = f.priceMin
		}
		if maxSet {
			pr.Max = f.priceMax
		}
		if pr.Min > pr.Max {
			return opts, fmt.Errorf("--price-min (%g) must not exceed --price-max (%g)", pr.Min, pr.Max)
		}
		opts.PriceRange = pr
	}
	return opts, nil
}
