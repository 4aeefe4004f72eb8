package models

import "time"

// ClaimStatus tracks a claim through the cleanup lifecycle:
// claimed → in_progress → pending_verification → verified | rejected
type ClaimStatus string

const (
	ClaimStatusClaimed             ClaimStatus = "claimed"
	ClaimStatusInProgress          ClaimStatus = "in_progress"
	ClaimStatusPendingVerification ClaimStatus = "pending_verification"
	ClaimStatusVerified            ClaimStatus = "verified"
	ClaimStatusRejected            ClaimStatus = "rejected"
)

// ActiveClaimStatuses are the non-terminal states. While any claim on a job is
// in one of these, no other user may claim that job.
var ActiveClaimStatuses = []ClaimStatus{
	ClaimStatusClaimed,
	ClaimStatusInProgress,
	ClaimStatusPendingVerification,
}

// Terminal reports whether no further transitions are permitted
func (s ClaimStatus) Terminal() bool {
	return s == ClaimStatusVerified || s == ClaimStatusRejected
}

// JobClaim = one user's exclusive attempt to perform one cleanup job.
// Claims are never deleted — the table is a permanent audit trail.
type JobClaim struct {
	ID     string      `gorm:"primaryKey;type:uuid" json:"id"`
	JobID  string      `gorm:"index;not null" json:"job_id"`
	UserID string      `gorm:"index;not null" json:"user_id"`
	Status ClaimStatus `gorm:"type:varchar(32);not null;default:'claimed';index" json:"status"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Proof artifacts — blob store URLs only, the service never inspects image bytes
	BeforePhotoURL string `gorm:"type:text" json:"before_photo_url"`
	AfterPhotoURL  string `gorm:"type:text" json:"after_photo_url"`
	Notes          string `gorm:"type:text" json:"notes"`

	// Locked in when the claim is completed
	RewardAmount float64 `json:"reward_amount"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
