package services

import (
	"math"
	"strconv"
	"strings"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// Cleaner transforms RawListings into cleaned Listings with every derived
// field populated.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw rows in order and returns one cleaned record per row.
// Field-level parse failures never drop a row; they leave the field missing.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	result := make([]*models.Listing, 0, len(raw))

	var noPrice, unknownRoom, unmappedCity int
	for _, r := range raw {
		l := c.cleanOne(r)
		if !l.PriceClean.Valid {
			noPrice++
		}
		if l.RoomTypeDecoded == UnknownRoomType {
			unknownRoom++
		}
		if !l.CityLat.Valid {
			unmappedCity++
		}
		result = append(result, l)
	}

	c.logger.Info("[cleaner] Cleaned %d listings", len(result))
	c.logger.Debug("[cleaner] %d without price, %d unknown room type, %d unmapped city",
		noPrice, unknownRoom, unmappedCity)
	return result
}

func (c *Cleaner) cleanOne(r *models.RawListing) *models.Listing {
	l := &models.Listing{
		ID:                 r.ID,
		HostID:             r.HostID,
		City:               r.City,
		Area:               r.Area,
		RoomType:           r.RoomType,
		Price:              r.Price,
		Bathrooms:          r.Bathrooms,
		Consumer:           r.Consumer,
		HostResponseRate:   r.HostResponseRate,
		HostAcceptanceRate: r.HostAcceptanceRate,
		HostSince:          r.HostSince,
		HostCertification:  r.HostCertification,
		GuestFavouriteRaw:  r.GuestFavourite,
	}

	l.PriceClean = CleanPrice(r.Price)
	l.BathroomsClean = ConvertEuropeanDecimal(r.Bathrooms)
	l.ConsumerClean = ConvertEuropeanDecimal(r.Consumer)
	l.HostResponseRateClean = ConvertEuropeanDecimal(r.HostResponseRate)
	l.HostAcceptanceRateClean = ConvertEuropeanDecimal(r.HostAcceptanceRate)

	l.RoomTypeDecoded = DecodeRoomType(r.RoomType)

	l.Accommodates = ToNumeric(r.Accommodates)
	l.Bedrooms = ToNumeric(r.Bedrooms)
	l.Beds = ToNumeric(r.Beds)
	l.TotalReviews = ToNumeric(r.TotalReviews)
	l.Sales = ToNumeric(r.Sales)

	// A product that overflows is missing.
	if l.PriceClean.Valid && l.Sales.Valid {
		l.RevenueEstimate = models.NewFloat(l.PriceClean.Float64 * l.Sales.Float64)
	}

	l.HostSinceClean = CleanHostSince(r.HostSince)

	if coords, ok := CityCoordinates(r.City); ok {
		l.CityLat = models.NewFloat(coords.Lat)
		l.CityLon = models.NewFloat(coords.Lon)
	}

	l.HostCertified = ToBool(r.HostCertification)
	l.GuestFavourite = ToBool(r.GuestFavourite)

	// The source file's regions are unreliable; the city table wins.
	if area, ok := CorrectedArea(r.City); ok {
		l.Area = area
	}

	// Fills run last so the revenue estimate above sees the raw values.
	if !l.Bedrooms.Valid {
		l.Bedrooms = models.NewFloat(0)
	}
	if !l.BathroomsClean.Valid {
		l.BathroomsClean = models.NewFloat(1)
	}
	if !l.Beds.Valid {
		l.Beds = models.NewFloat(1)
	}

	return l
}

// CleanPrice parses a price such as "250", "$250", "1,250" or "45,00".
// A lone comma followed by exactly two digits is a decimal point; any other
// comma is a thousands separator. Zero is a valid price.
func CleanPrice(s string) models.Float {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return models.Float{}
	}

	cleaned = strings.NewReplacer("$", "", "€", "", "£", "", " ", "").Replace(cleaned)

	if strings.Contains(cleaned, ",") && !strings.Contains(cleaned, ".") {
		parts := strings.Split(cleaned, ",")
		if len(parts[len(parts)-1]) == 2 {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	return parseFloat(cleaned)
}

// ConvertEuropeanDecimal parses comma-decimal values like "6,81" or "0,9".
// Zero is a placeholder for "not set" and yields a missing value.
func ConvertEuropeanDecimal(s string) models.Float {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return models.Float{}
	}

	f := parseFloat(strings.ReplaceAll(cleaned, ",", "."))
	if f.Valid && f.Float64 == 0 {
		return models.Float{}
	}
	return f
}

// CleanHostSince parses a day count, truncating fractional values toward zero.
func CleanHostSince(s string) models.Int {
	f := parseFloat(strings.TrimSpace(s))
	if !f.Valid || math.IsInf(f.Float64, 0) {
		return models.Int{}
	}
	t := math.Trunc(f.Float64)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return models.Int{}
	}
	return models.NewInt(int64(t))
}

// ToNumeric is plain numeric coercion: trimmed text parsed as a float,
// anything unparsable is missing.
func ToNumeric(s string) models.Float {
	return parseFloat(strings.TrimSpace(s))
}

// ToBool interprets a 0/1-style flag. Empty is false, numbers are true when
// non-zero, and the usual boolean literals are accepted.
func ToBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if f := parseFloat(s); f.Valid {
		return f.Float64 != 0
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseFloat(s string) models.Float {
	if s == "" || isHexFloat(s) {
		return models.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Float{}
	}
	return models.NewFloat(v)
}

// isHexFloat reports Go hexadecimal float syntax such as "0x1p4", which is
// never a number in a CSV export.
func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
