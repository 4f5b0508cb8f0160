package repositories

import (
	"context"

	"github.com/satriahrh/framegate/domain/entities"
)

// ChangeDetector decides whether the current frame differs from the previous one.
// An empty previous means there is no baseline yet.
type ChangeDetector interface {
	Detect(ctx context.Context, current, previous string) (entities.ComparisonResult, error)
}
