package services

import "airbnb-dashboard/models"

// FilterData returns the listings that satisfy every supplied predicate in
// opts, in input order. The result is a new slice sharing the input pointers.
// Records with a missing value never satisfy a predicate on that field.
func FilterData(listings []*models.Listing, opts models.FilterOptions) []*models.Listing {
	cities := toSet(opts.Cities)
	areas := toSet(opts.Areas)
	roomTypes := toSet(opts.RoomTypes)

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if cities != nil && !inSet(cities, l.City) {
			continue
		}
		if areas != nil && !inSet(areas, l.Area) {
			continue
		}
		if roomTypes != nil && !inSet(roomTypes, l.RoomTypeDecoded) {
			continue
		}
		if pr := opts.PriceRange; pr != nil {
			if !l.PriceClean.Valid || l.PriceClean.Float64 < pr.Min || l.PriceClean.Float64 > pr.Max {
				continue
			}
		}
		if opts.MinReviews > 0 {
			if !l.TotalReviews.Valid || l.TotalReviews.Float64 < float64(opts.MinReviews) {
				continue
			}
		}
		if opts.MinRating > 0 {
			if !l.ConsumerClean.Valid || l.ConsumerClean.Float64 < opts.MinRating {
				continue
			}
		}
		if opts.GuestFavouritesOnly && !l.GuestFavourite {
			continue
		}
		if opts.CertifiedHostsOnly && !l.HostCertified {
			continue
		}
		out = append(out, l)
	}
	return out
}

// toSet returns nil for an empty list so callers can tell "no constraint"
// apart from "nothing allowed".
func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, v string) bool {
	if v == "" {
		return false
	}
	_, ok := set[v]
	return ok
}
