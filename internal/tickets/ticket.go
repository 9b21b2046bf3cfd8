// Package tickets renders booking e-tickets as PDF.
package tickets

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Ticket is the printable view of one booking.
type Ticket struct {
	BookingID     uint
	Passenger     string
	Email         string
	ShuttleNumber string
	RouteName     string
	From          string
	To            string
	RideStart     time.Time
	RideEnd       time.Time
	Fare          int64
	Status        string
}

// Filename is the download name for t.
func Filename(t Ticket) string {
	return fmt.Sprintf("ticket-%d.pdf", t.BookingID)
}

func Render(t Ticket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Shuttle E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "SHUTTLE E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Booking    : #%d", t.BookingID),
		fmt.Sprintf("Passenger  : %s", orDash(t.Passenger)),
		fmt.Sprintf("Email      : %s", orDash(t.Email)),
		fmt.Sprintf("Shuttle    : %s", orDash(t.ShuttleNumber)),
		fmt.Sprintf("Route      : %s", orDash(t.RouteName)),
		fmt.Sprintf("From -> To : %s -> %s", orDash(t.From), orDash(t.To)),
		fmt.Sprintf("Date       : %s", t.RideStart.Format("Mon 02 Jan 2006")),
		fmt.Sprintf("Time       : %s - %s", t.RideStart.Format("15:04"), t.RideEnd.Format("15:04")),
		fmt.Sprintf("Fare       : %d points", t.Fare),
		fmt.Sprintf("Status     : %s", orDash(t.Status)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Valid for one seat on the shuttle and segment above. Show it to the driver when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
