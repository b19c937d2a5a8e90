package station

import "time"

type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusMaintenance Status = "MAINTENANCE"
	StatusClosed      Status = "CLOSED"
)

type Station struct {
	ID          int64     `db:"id" json:"id"`
	StationCode string    `db:"station_code" json:"station_code"`
	Name        string    `db:"name" json:"name"`
	ZoneNumber  int       `db:"zone_number" json:"zone_number"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Station) Operational() bool {
	return s.Status == StatusActive
}
