// services/claim_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"cleanup-jobs-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimPolicy carries the configurable ledger behavior
type ClaimPolicy struct {
	// ReopenAfterReject releases a job back to the open pool once its claim
	// reaches the rejected state. When false a rejected claim consumes the
	// job permanently, like a verified one.
	ReopenAfterReject bool

	// ClaimTTL expires claims stuck in claimed/in_progress with no activity.
	// Zero disables expiry.
	ClaimTTL time.Duration
}

// LoadClaimPolicy reads REOPEN_AFTER_REJECT and CLAIM_TTL_MINUTES from the
// environment. Defaults: reopen enabled, expiry disabled.
func LoadClaimPolicy() ClaimPolicy {
	policy := ClaimPolicy{ReopenAfterReject: true}
	if v := os.Getenv("REOPEN_AFTER_REJECT"); v != "" {
		policy.ReopenAfterReject = !strings.EqualFold(v, "false")
	}
	if v := os.Getenv("CLAIM_TTL_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			policy.ClaimTTL = time.Duration(mins) * time.Minute
		}
	}
	return policy
}

// jobLocks hands out one mutex per job id so concurrent claims on the same
// job serialize before touching the database.
type jobLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *jobLocks) For(jobID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[jobID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[jobID] = m
	}
	return m
}

// ClaimService is the authoritative record of who holds which job, in what
// state. All transitions go through atomic primitives — a per-job mutex plus
// partial unique index for claim, guarded-update CAS for everything after.
type ClaimService struct {
	DB     *gorm.DB
	Policy ClaimPolicy
	Stats  *StatsService

	locks jobLocks
}

func NewClaimService(db *gorm.DB, policy ClaimPolicy, stats *StatsService) *ClaimService {
	return &ClaimService{DB: db, Policy: policy, Stats: stats}
}

// EnsureClaimIndexes creates the partial unique index that makes claim
// exclusivity hold even across nodes: at most one claim per job may sit in an
// active status. The DDL is valid on both PostgreSQL and SQLite.
func EnsureClaimIndexes(db *gorm.DB) error {
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_job_claims_one_active
		ON job_claims (job_id)
		WHERE status IN ('claimed', 'in_progress', 'pending_verification')`).Error
}

// jobOpen reports whether jobID can currently be claimed: no active claim by
// anyone, no verified claim, and no rejected claim unless the reopen policy
// allows it.
func (s *ClaimService) jobOpen(tx *gorm.DB, jobID string) (bool, error) {
	blocking := append([]models.ClaimStatus{}, models.ActiveClaimStatuses...)
	blocking = append(blocking, models.ClaimStatusVerified)
	if !s.Policy.ReopenAfterReject {
		blocking = append(blocking, models.ClaimStatusRejected)
	}

	var count int64
	err := tx.Model(&models.JobClaim{}).
		Where("job_id = ? AND status IN ?", jobID, blocking).
		Count(&count).Error
	return count == 0, err
}

// ClaimJob atomically creates a claim on jobID owned by userID. Exactly one
// of N concurrent callers wins; the rest get ErrJobUnavailable. The check and
// insert run under the job's mutex inside one transaction, so a read-then-
// write race cannot slip between them.
func (s *ClaimService) ClaimJob(jobID, userID string) (*models.JobClaim, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", ErrValidation)
	}

	lock := s.locks.For(jobID)
	lock.Lock()
	defer lock.Unlock()

	var claim *models.JobClaim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		open, err := s.jobOpen(tx, jobID)
		if err != nil {
			return err
		}
		if !open {
			return ErrJobUnavailable
		}

		claim = &models.JobClaim{
			ID:     uuid.NewString(),
			JobID:  jobID,
			UserID: userID,
			Status: models.ClaimStatusClaimed,
		}
		return tx.Create(claim).Error
	})
	if err != nil {
		// A duplicate-key failure here means another node won the race past
		// our local mutex — same outcome as losing the check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrJobUnavailable
		}
		return nil, err
	}

	log.Printf("🪣 Claim created: job=%s user=%s claim=%s", jobID, userID, claim.ID)
	return claim, nil
}

// StartClaim moves the caller's claim from claimed to in_progress
func (s *ClaimService) StartClaim(claimID, userID string) (*models.JobClaim, error) {
	now := time.Now()
	res := s.DB.Model(&models.JobClaim{}).
		Where("id = ? AND user_id = ? AND status = ?", claimID, userID, models.ClaimStatusClaimed).
		Updates(map[string]interface{}{
			"status":     models.ClaimStatusInProgress,
			"started_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.explainFailedTransition(s.DB, claimID, userID, models.ClaimStatusClaimed)
	}
	return s.getClaim(claimID)
}

// CompletionInput carries the proof artifacts submitted with a completion
type CompletionInput struct {
	BeforePhotoURL string
	AfterPhotoURL  string
	RewardAmount   float64
	Notes          string
}

// CompleteClaim records proof and moves the caller's claim from in_progress
// to pending_verification, locking in the reward. A repeat call after success
// fails with ErrInvalidTransition — that is the guard against double reward.
func (s *ClaimService) CompleteClaim(claimID, userID string, in CompletionInput) (*models.JobClaim, error) {
	if in.BeforePhotoURL == "" || in.AfterPhotoURL == "" {
		return nil, fmt.Errorf("%w: before and after photos are both required", ErrValidation)
	}
	if in.RewardAmount <= 0 {
		return nil, fmt.Errorf("%w: reward amount must be positive", ErrValidation)
	}

	now := time.Now()
	res := s.DB.Model(&models.JobClaim{}).
		Where("id = ? AND user_id = ? AND status = ?", claimID, userID, models.ClaimStatusInProgress).
		Updates(map[string]interface{}{
			"status":           models.ClaimStatusPendingVerification,
			"completed_at":     now,
			"before_photo_url": in.BeforePhotoURL,
			"after_photo_url":  in.AfterPhotoURL,
			"notes":            in.Notes,
			"reward_amount":    in.RewardAmount,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.explainFailedTransition(s.DB, claimID, userID, models.ClaimStatusInProgress)
	}
	return s.getClaim(claimID)
}

// JobAvailability is the check action's read model
type JobAvailability struct {
	Available bool             `json:"available"`
	Claim     *models.JobClaim `json:"completion"`
}

// CheckJob returns the caller's most recent claim for the job if one exists,
// plus whether the job is currently claimable. Read-only.
func (s *ClaimService) CheckJob(jobID, userID string) (*JobAvailability, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", ErrValidation)
	}

	available, err := s.jobOpen(s.DB, jobID)
	if err != nil {
		return nil, err
	}

	var own models.JobClaim
	err = s.DB.Where("job_id = ? AND user_id = ?", jobID, userID).
		Order("created_at DESC").
		First(&own).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &JobAvailability{Available: available}, nil
		}
		return nil, err
	}
	return &JobAvailability{Available: available, Claim: &own}, nil
}

// ApplyVerdict is the external verifier's transition: pending_verification to
// verified or rejected. Dashboard counters move in the same transaction.
func (s *ClaimService) ApplyVerdict(claimID string, verdict models.ClaimStatus) (*models.JobClaim, error) {
	if verdict != models.ClaimStatusVerified && verdict != models.ClaimStatusRejected {
		return nil, fmt.Errorf("%w: verdict must be verified or rejected", ErrValidation)
	}

	var claim *models.JobClaim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JobClaim{}).
			Where("id = ? AND status = ?", claimID, models.ClaimStatusPendingVerification).
			Update("status", verdict)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.explainFailedTransition(tx, claimID, "", models.ClaimStatusPendingVerification)
		}

		var updated models.JobClaim
		if err := tx.First(&updated, "id = ?", claimID).Error; err != nil {
			return err
		}
		claim = &updated

		if s.Stats != nil {
			return s.Stats.applyVerdict(tx, &updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⚖️ Verdict applied: claim=%s status=%s", claim.ID, claim.Status)
	return claim, nil
}

// ExpireStaleClaims rejects claims that sat in claimed/in_progress past ttl,
// which releases their jobs under the reopen policy. Returns rows affected.
func (s *ClaimService) ExpireStaleClaims(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := s.DB.Model(&models.JobClaim{}).
		Where("status IN ? AND updated_at <= ?",
			[]models.ClaimStatus{models.ClaimStatusClaimed, models.ClaimStatusInProgress}, cutoff).
		Updates(map[string]interface{}{
			"status": models.ClaimStatusRejected,
			"notes":  "claim expired after inactivity",
		})
	return res.RowsAffected, res.Error
}

// explainFailedTransition turns a zero-row guarded update into the precise
// business error. userID == "" skips the ownership check (verifier paths).
func (s *ClaimService) explainFailedTransition(db *gorm.DB, claimID, userID string, want models.ClaimStatus) error {
	var claim models.JobClaim
	if err := db.First(&claim, "id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if userID != "" && claim.UserID != userID {
		return ErrForbidden
	}
	return fmt.Errorf("%w: status is %s, want %s", ErrInvalidTransition, claim.Status, want)
}

func (s *ClaimService) getClaim(id string) (*models.JobClaim, error) {
	var claim models.JobClaim
	if err := s.DB.First(&claim, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// --- HTTP handlers ---

type jobActionRequest struct {
	Action       string  `json:"action"`
	JobID        string  `json:"jobId"`
	CompletionID string  `json:"completionId"`
	RewardAmount float64 `json:"rewardAmount"`
	PhotoURLs    struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"photoUrls"`
	Notes string `json:"notes"`
}

// JobActions handles POST /jobs/actions — the single mutation endpoint the
// client drives the claim lifecycle through.
func (s *ClaimService) JobActions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return respondError(c, ErrUnauthorized)
	}

	var req jobActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}

	log.Printf("🧹 Processing %s action for user %s (job=%s completion=%s)",
		req.Action, userID, req.JobID, req.CompletionID)

	var (
		data interface{}
		err  error
	)
	switch req.Action {
	case "claim":
		var claim *models.JobClaim
		claim, err = s.ClaimJob(req.JobID, userID)
		if err == nil {
			data = fiber.Map{"completionId": claim.ID, "status": claim.Status}
		}
	case "start":
		data, err = s.StartClaim(req.CompletionID, userID)
	case "complete":
		data, err = s.CompleteClaim(req.CompletionID, userID, CompletionInput{
			BeforePhotoURL: req.PhotoURLs.Before,
			AfterPhotoURL:  req.PhotoURLs.After,
			RewardAmount:   req.RewardAmount,
			Notes:          req.Notes,
		})
	case "check":
		data, err = s.CheckJob(req.JobID, userID)
	default:
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "error": "unknown action: " + req.Action})
	}

	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// VerifyClaim handles POST /admin/claims/:id/verify
func (s *ClaimService) VerifyClaim(c *fiber.Ctx) error {
	return s.verdictHandler(c, models.ClaimStatusVerified)
}

// RejectClaim handles POST /admin/claims/:id/reject
func (s *ClaimService) RejectClaim(c *fiber.Ctx) error {
	return s.verdictHandler(c, models.ClaimStatusRejected)
}

func (s *ClaimService) verdictHandler(c *fiber.Ctx, verdict models.ClaimStatus) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid claim ID"})
	}

	claim, err := s.ApplyVerdict(id, verdict)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": claim})
}

// ListClaims returns claims for the verification dashboard, newest first.
// Defaults to the pending_verification queue; status=any lists everything.
func (s *ClaimService) ListClaims(c *fiber.Ctx) error {
	statusFilter := c.Query("status", string(models.ClaimStatusPendingVerification))
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.DB.Order("created_at DESC").Limit(limit)
	if statusFilter != "any" {
		query = query.Where("status = ?", statusFilter)
	}

	var claims []models.JobClaim
	if err := query.Find(&claims).Error; err != nil {
		log.Printf("DB Error listing claims: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to list claims"})
	}
	return c.JSON(fiber.Map{"success": true, "data": claims})
}

func respondError(c *fiber.Ctx, err error) error {
	status := httpStatusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("❌ [CLAIMS] internal error: %v", err)
		return c.Status(status).JSON(fiber.Map{"success": false, "error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
}
