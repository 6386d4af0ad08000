package storage

import (
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// SampleFlights is the starter catalog: three flights leaving one, two and three days
// after the date of now. The result depends only on that date.
func SampleFlights(now time.Time) []domain.Flight {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	at := func(days, hour, minute int) time.Time {
		return day.AddDate(0, 0, days).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}

	return []domain.Flight{
		domain.NewFlight("AA123", "New York", "Los Angeles", at(1, 8, 0), at(1, 11, 0), 150, 29999),
		domain.NewFlight("DL456", "Chicago", "Miami", at(2, 10, 30), at(2, 13, 45), 200, 24999),
		domain.NewFlight("UA789", "San Francisco", "Seattle", at(3, 7, 15), at(3, 9, 45), 180, 19999),
	}
}
