package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"airbnb-dashboard/models"
)

// Printer renders load statistics and insight reports for the terminal.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

var (
	bannerColor  = color.New(color.FgMagenta, color.Bold)
	sectionColor = color.New(color.FgYellow, color.Bold)
	valueColor   = color.New(color.FgGreen, color.Bold)
)

// Print writes the full summary: dataset overview, current selection,
// guest and host metrics, and the city and area tables.
func (p *Printer) Print(stats *models.Stats, r *models.InsightReport) {
	sep := strings.Repeat("═", 64)

	bannerColor.Fprintf(p.out, "\n%s\n", sep)
	bannerColor.Fprintf(p.out, "  AIRBNB LISTINGS SUMMARY\n")
	bannerColor.Fprintf(p.out, "%s\n\n", sep)

	if stats != nil {
		p.section("Dataset")
		p.kv("Listings", fmt.Sprintf("%d (of %d rows)", stats.TotalListings, stats.OriginalCount))
		p.kv("Cities", fmt.Sprintf("%d", stats.Cities))
		p.kv("Areas", strings.Join(stats.UniqueAreas, ", "))
		p.kv("Room types", strings.Join(stats.UniqueRoomTypes, ", "))
		p.kv("Hosts", fmt.Sprintf("%d", stats.TotalHosts))
		p.kv("Price range", fmt.Sprintf("%s - %s", money(stats.PriceRange.Min), money(stats.PriceRange.Max)))
		p.kv("Rating range", fmt.Sprintf("%s - %s", orNA(stats.RatingRange.Min), orNA(stats.RatingRange.Max)))
		fmt.Fprintln(p.out)
	}

	p.section("Current selection")
	p.kv("Listings", fmt.Sprintf("%d", r.Selection.Listings))
	p.kv("Avg price", fmt.Sprintf("$%.0f", r.Selection.AvgPrice))
	p.kv("Cities", fmt.Sprintf("%d", r.Selection.Cities))
	fmt.Fprintln(p.out)

	if r.Selection.Listings == 0 {
		fmt.Fprintf(p.out, "  No listings match the current filters\n\n")
		return
	}

	p.section("Guest view")
	p.kv("Total properties", fmt.Sprintf("%d", r.Guest.TotalProperties))
	p.kv("Avg price", fmt.Sprintf("$%.0f", r.Guest.AvgPrice))
	p.kv("Avg rating", fmt.Sprintf("%.2f/7", r.Guest.AvgRating))
	p.kv("% favourites", fmt.Sprintf("%.1f%%", r.Guest.PctFavourites))
	p.kv("Most popular", r.Guest.MostPopularCity)
	p.kv("Best value", r.Guest.BestValueCity)
	fmt.Fprintln(p.out)

	p.section("Host view")
	p.kv("Total revenue", FormatLargeNumber(r.Host.TotalRevenue))
	p.kv("Avg occupancy", fmt.Sprintf("%.1f%%", r.Host.AvgOccupancy))
	p.kv("Total hosts", fmt.Sprintf("%d", r.Host.TotalHosts))
	p.kv("Avg listings", fmt.Sprintf("%.1f", r.Host.AvgListingsPerHost))
	p.kv("% certified", fmt.Sprintf("%.1f%%", r.Host.PctCertified))
	p.kv("Best city", r.Host.BestCity)
	fmt.Fprintln(p.out)

	p.section("Cities")
	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"City", "Listings", "Avg Price", "Avg Rating", "Reviews", "Favourite %", "Revenue"})
	for _, c := range r.Cities {
		table.Append([]string{
			c.City,
			fmt.Sprintf("%d", c.ListingCount),
			money(c.AvgPrice),
			orNA(c.AvgRating),
			fmt.Sprintf("%.0f", c.TotalReviews),
			fmt.Sprintf("%.1f", c.PctGuestFavourite*100),
			FormatLargeNumber(c.TotalRevenue),
		})
	}
	table.Render()
	fmt.Fprintln(p.out)

	p.section("Areas")
	table = tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"Area", "Listings", "Avg Price", "Avg Rating", "Sales", "Revenue"})
	for _, a := range r.Areas {
		table.Append([]string{
			a.Area,
			fmt.Sprintf("%d", a.ListingCount),
			money(a.AvgPrice),
			orNA(a.AvgRating),
			fmt.Sprintf("%.0f", a.TotalSales),
			FormatLargeNumber(a.TotalRevenue),
		})
	}
	table.Render()

	bannerColor.Fprintf(p.out, "\n%s\n\n", sep)
}

func (p *Printer) section(title string) {
	sectionColor.Fprintf(p.out, "  %s\n", title)
	fmt.Fprintf(p.out, "  %s\n", strings.Repeat("─", 64))
}

func (p *Printer) kv(label, value string) {
	fmt.Fprintf(p.out, "  %-18s: ", label)
	valueColor.Fprintf(p.out, "%s\n", value)
}

func money(f models.Float) string {
	if !f.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("$%.2f", f.Float64)
}

func orNA(f models.Float) string {
	if !f.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", f.Float64)
}
