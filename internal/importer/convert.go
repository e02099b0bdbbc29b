package importer

import (
	"time"

	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/google/uuid"
)

// Convert builds a service point from an extracted record bound to concrete
// location nodes. Auxiliary fields that fail to parse fall back to nil or 0.
func Convert(rec Record, governorateID, districtID string, now time.Time) *domain.ServicePoint {
	return &domain.ServicePoint{
		ID:            uuid.New().String(),
		Name:          rec.Name(),
		GovernorateID: governorateID,
		DistrictID:    districtID,
		Address:       rec.Get(FieldAddress),
		Phone:         rec.Get(FieldPhone),
		Owner:         rec.Get(FieldOwner),
		Category:      rec.Get(FieldCategory),
		StartDate:     ParseDate(rec.Get(FieldStartDate)),
		EmployeeCount: ParseInt(rec.Get(FieldEmployees)),
		DeviceCount:   ParseInt(rec.Get(FieldDevices)),
		Notes:         rec.Get(FieldNotes),
		CreatedAt:     now.UTC(),
	}
}
