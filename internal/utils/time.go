package utils

import (
	"time"

	_ "time/tzdata"
)

// VietnamLoc returns the Asia/Ho_Chi_Minh location. The tzdata import
// keeps this working on scratch containers without a zoneinfo database.
func VietnamLoc() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		return time.FixedZone("GMT+7", 7*3600)
	}
	return loc
}

func NowVietnam() time.Time {
	return time.Now().In(VietnamLoc())
}

// ReportTimestamp formats a time the way the report header shows it,
// e.g. "09/01/2026 16:40:05 GMT+7".
func ReportTimestamp(t time.Time) string {
	return t.In(VietnamLoc()).Format("02/01/2006 15:04:05") + " GMT+7"
}
