package tickets

import (
	"bytes"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)
	ticket := Ticket{
		BookingID:     7,
		Passenger:     "Asha",
		ShuttleNumber: "SH-101",
		RouteName:     "Morning Route A",
		From:          "Library",
		To:            "Admin Block",
		RideStart:     start,
		RideEnd:       start.Add(5 * time.Minute),
		Fare:          10,
		Status:        "upcoming",
	}
	pdf, err := Render(ticket)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if Filename(ticket) != "ticket-7.pdf" {
		t.Fatalf("Filename = %q", Filename(ticket))
	}
}
