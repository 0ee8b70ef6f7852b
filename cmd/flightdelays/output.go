package main

import (
	"fmt"
	"io"

	"github.com/cdtdelta/flightdelays/internal/model"
)

// printResults shows one line per flight. On-time flights carry no delay suffix.
func printResults(w io.Writer, records []model.FlightRecord) {
	fmt.Fprintf(w, "Got %d results.\n", len(records))
	for _, r := range records {
		if r.Delayed() {
			fmt.Fprintf(w, "%d. %s -> %s by %s, Delay: %d Minutes\n", r.ID, r.Origin, r.Destination, r.Airline, r.Delay)
		} else {
			fmt.Fprintf(w, "%d. %s -> %s by %s\n", r.ID, r.Origin, r.Destination, r.Airline)
		}
	}
}

func printShares[K comparable](w io.Writer, label string, shares []model.Share[K]) {
	fmt.Fprintf(w, "Delayed percentage per %s:\n", label)
	for _, s := range shares {
		fmt.Fprintf(w, "%v: %.2f%%\n", s.Category, s.Percentage)
	}
}
