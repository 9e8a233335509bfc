package models

import "time"

// Now is the clock used by every lifecycle operation. Tests replace it.
var Now = time.Now

var ukLocation = loadUK()

func loadUK() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateOf returns the UK calendar date of t as UTC midnight, the form dates are stored in.
func DateOf(t time.Time) time.Time {
	y, m, d := t.In(ukLocation).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is DateOf(Now()).
func Today() time.Time {
	return DateOf(Now())
}

// dateOnly drops the time of day from a caller-supplied date without shifting zones.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
