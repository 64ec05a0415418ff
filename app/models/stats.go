package models

// DailyStats holds the number of datasets uploaded on one day
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
