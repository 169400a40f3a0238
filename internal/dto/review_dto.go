package dto

// ReviewRequest carries a reviewer decision for one pending submission.
type ReviewRequest struct {
	Decision      string `json:"decision" validate:"required,oneof=approve reject"`
	Note          string `json:"note" validate:"omitempty,max=2000"`
	PointOverride *int   `json:"point_override" validate:"omitempty,gte=0"`
}

// BulkReviewRequest applies one decision to a bounded batch of pending
// submissions. Submissions found already reviewed are skipped, not failed.
type BulkReviewRequest struct {
	SubmissionIDs []uint `json:"submission_ids" validate:"required,min=1,max=50,dive,gt=0"`
	Decision      string `json:"decision" validate:"required,oneof=approve reject"`
	Note          string `json:"note" validate:"omitempty,max=2000"`
}

// BulkReviewResponse reports how many submissions the batch actually reviewed.
type BulkReviewResponse struct {
	ProcessedCount int `json:"processed_count"`
}
