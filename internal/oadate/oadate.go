// Package oadate converts spreadsheet serial day numbers to time.Time.
//
// It lives under internal/ so that both the worksheet reader and the root
// package can share one implementation without an import cycle.
package oadate

import (
	"fmt"
	"math"
	"time"
)

const (
	// maxSerial1900 is one past the last valid 1900-system serial
	// (2,958,465 is 9999-12-31).
	maxSerial1900 = 2_958_466
	// offset1904 is the day distance between the two epochs.
	offset1904 = 1462
)

// Convert maps a 1900-system serial to a calendar instant.
//
// Serial 0 is midnight on 1900-01-01.  Lotus 1-2-3 treated 1900 as a leap
// year and spreadsheets kept the bug, so serial 60 is the phantom
// 1900-02-29: serials 1..60 count from 1899-12-31 unchanged and serials
// from 61 on are pulled back one day.  Serial 42370 is 2016-01-01.
func Convert(serial float64) (time.Time, error) {
	if err := check(serial, maxSerial1900); err != nil {
		return time.Time{}, err
	}
	secs, rollover := fracSeconds(serial)
	day := int(serial) + rollover
	base := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	switch {
	case day == 0:
		return time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second), nil
	case day >= 61:
		day--
	}
	return base.AddDate(0, 0, day).Add(time.Duration(secs) * time.Second), nil
}

// ConvertEx is Convert honouring the workbook date system.  In the 1904
// system serial 0 is 1904-01-01 and no leap-day correction applies.
func ConvertEx(serial float64, date1904 bool) (time.Time, error) {
	if !date1904 {
		return Convert(serial)
	}
	if err := check(serial, maxSerial1900-offset1904); err != nil {
		return time.Time{}, err
	}
	secs, rollover := fracSeconds(serial)
	base := time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(serial)+rollover).Add(time.Duration(secs) * time.Second), nil
}

func check(serial float64, limit int) error {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return fmt.Errorf("oadate: invalid serial %v", serial)
	}
	if serial < 0 {
		return fmt.Errorf("oadate: negative serial %v not supported", serial)
	}
	if serial > float64(limit) {
		return fmt.Errorf("oadate: serial %v exceeds maximum %d", serial, limit)
	}
	return nil
}

// fracSeconds rounds the fractional day to whole seconds.  A tiny epsilon
// absorbs binary drift (0.5 stored as 0.49999999…) and a result of exactly
// 86400 rolls over into the next day.
func fracSeconds(serial float64) (secs int64, rollover int) {
	const roundEpsilon = 1e-9
	const nanosPerDay = float64(24 * time.Hour)
	frac := serial - math.Trunc(serial) + roundEpsilon
	d := time.Duration(frac * nanosPerDay)
	secs = int64(d / time.Second)
	if d%time.Second > 500*time.Millisecond {
		secs++
	}
	return secs % 86400, int(secs / 86400)
}
