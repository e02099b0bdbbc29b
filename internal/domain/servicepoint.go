package domain

import "time"

// ServicePoint is an imported business record bound to a governorate and
// district of the location taxonomy.
type ServicePoint struct {
	ID            string
	Name          string
	GovernorateID string
	DistrictID    string
	Address       string
	Phone         string
	Owner         string
	Category      string
	StartDate     *time.Time
	EmployeeCount int
	DeviceCount   int
	Notes         string
	CreatedAt     time.Time
}
