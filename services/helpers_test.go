package services

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

const csvHeader = "id,host_id,city,area,room_type,price,bathrooms,consumer," +
	"host response rate,host acceptance rate,host since,host Certification," +
	"guest favourite,accommodates,bedrooms,beds,total reviewers number,sales"

var sampleRows = []string{
	`1,h1,Tokyo,Europe,2,"1,250","1,5","6,5","0,9","0,8",1200.7,1,0,4,2,2,10,100`,
	`2,h1,Tokyo,Asia,1,$80,,"5,0",,,800,0,1,2,,,5,50`,
	`3,h2,Sydney,Europe,9,"45,00",2,0,1,1,,,1,3,1,1,x,`,
}

// writeCSV writes header and rows to a file in a fresh temp dir.
func writeCSV(t *testing.T, header string, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	content := header + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// listing builds a cleaned record for filter and insight tests.
// Negative numbers mean "missing".
func listing(id, hostID, city, area string, price, rating, reviews, sales float64) *models.Listing {
	l := &models.Listing{
		ID:              id,
		HostID:          hostID,
		City:            city,
		Area:            area,
		RoomTypeDecoded: "Entire Home/Apt",
		Bedrooms:        models.NewFloat(1),
		BathroomsClean:  models.NewFloat(1),
		Beds:            models.NewFloat(1),
	}
	if price >= 0 {
		l.PriceClean = models.NewFloat(price)
	}
	if rating >= 0 {
		l.ConsumerClean = models.NewFloat(rating)
	}
	if reviews >= 0 {
		l.TotalReviews = models.NewFloat(reviews)
	}
	if sales >= 0 {
		l.Sales = models.NewFloat(sales)
	}
	if l.PriceClean.Valid && l.Sales.Valid {
		l.RevenueEstimate = models.NewFloat(l.PriceClean.Float64 * l.Sales.Float64)
	}
	return l
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
