package service

import (
	"errors"
	"fmt"
)

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUserNotFound indicates the acting or target user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEventNotFound indicates the stored webhook event does not exist.
var ErrEventNotFound = errors.New("webhook event not found")

// ErrActivityNotFound indicates the activity code is outside the reference set.
var ErrActivityNotFound = errors.New("unknown activity")

// ErrDuplicateSubmission indicates an active submission already exists for a
// single-completion activity.
var ErrDuplicateSubmission = errors.New("an active submission already exists for this activity")

// ErrIneligible indicates the user may not submit evidence or earn credit.
var ErrIneligible = errors.New("user is not eligible to earn points")

// InvalidStateError is returned when a reviewer acts on a submission that has
// already reached a terminal status.
type InvalidStateError struct {
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("submission is %s; only pending submissions can be reviewed", e.Status)
}

// QuotaExceededError is returned when admitting a submission would push a
// rolling-window quantity past its ceiling.
type QuotaExceededError struct {
	Dimension string
	Attempted int
	Ceiling   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded: attempted %d, ceiling %d", e.Dimension, e.Attempted, e.Ceiling)
}

// PointAdjustmentError is returned when a reviewer's point override falls
// outside the permitted band around the computed base points.
type PointAdjustmentError struct {
	BasePoints    int
	Override      int
	MaxAdjustment int
}

func (e *PointAdjustmentError) Error() string {
	return fmt.Sprintf("point override %d outside permitted range: base %d, max adjustment %d",
		e.Override, e.BasePoints, e.MaxAdjustment)
}

// SchemaValidationError reports a submission payload that failed the
// activity-specific schema.
type SchemaValidationError struct {
	Activity string
	Reason   string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("payload invalid for activity %s: %s", e.Activity, e.Reason)
}
