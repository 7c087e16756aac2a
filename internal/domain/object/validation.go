package object

import (
	"time"

	"github.com/rpggio/plantree/internal/domain"
)

// ValidateCreateInput validates create request fields.
func ValidateCreateInput(req CreateRequest) error {
	return domain.ValidateStruct(req)
}

// ValidateUpdateInput validates update request fields.
func ValidateUpdateInput(req UpdateRequest) error {
	if err := domain.ValidateStruct(req); err != nil {
		return err
	}
	if req.ParentID != nil && req.MoveToRoot {
		return domain.NewValidationError("parent_id", "cannot both set a parent and move to root")
	}
	if req.StartDate != nil && req.ClearStartDate {
		return domain.NewValidationError("start_date", "cannot both set and clear")
	}
	if req.EndDate != nil && req.ClearEndDate {
		return domain.NewValidationError("end_date", "cannot both set and clear")
	}
	return nil
}

// ValidateSchedule checks the date range of a resolved object.
func ValidateSchedule(kind Kind, start, end *time.Time) error {
	if kind == KindMilestone {
		return nil
	}
	if start != nil && end != nil && end.Before(*start) {
		return domain.NewValidationError("end_date", "must not be before start_date")
	}
	return nil
}
