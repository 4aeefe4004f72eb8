package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"cleanup-jobs-system/models"
	"cleanup-jobs-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *services.ClaimService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.JobClaim{}, &models.CleanupStats{}))
	require.NoError(t, services.EnsureClaimIndexes(db))

	statsService := services.NewStatsService(db)
	claimService := services.NewClaimService(db, services.ClaimPolicy{ReopenAfterReject: true}, statsService)

	app := fiber.New()
	SetupJobRoutes(app, services.NewFeedService(), claimService, services.NewUploadService())
	SetupDashboardRoutes(app, statsService)

	return app, claimService
}

func doAction(t *testing.T, app *fiber.App, userID string, body map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/jobs/actions", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestFeedEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	req, err := http.NewRequest("GET", "/jobs/feed?count=10", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Jobs []models.Job `json:"jobs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Jobs, 10)

	for i := 1; i < len(body.Jobs); i++ {
		assert.LessOrEqual(t,
			models.UrgencyRank(body.Jobs[i-1].Urgency),
			models.UrgencyRank(body.Jobs[i].Urgency))
	}
}

func TestFeedRejectsBadCount(t *testing.T) {
	app, _ := newTestApp(t)

	for _, count := range []string{"0", "-3", "999", "abc"} {
		req, err := http.NewRequest("GET", "/jobs/feed?count="+count, nil)
		require.NoError(t, err)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "count=%s", count)
	}
}

func TestJobActionsLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := doAction(t, app, "user-a", map[string]interface{}{
		"action": "claim", "jobId": "job-42",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, env["success"])

	data := env["data"].(map[string]interface{})
	completionID := data["completionId"].(string)
	assert.Equal(t, "claimed", data["status"])

	// Competing claim loses with a conflict
	resp, env = doAction(t, app, "user-b", map[string]interface{}{
		"action": "claim", "jobId": "job-42",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, env["success"])

	resp, _ = doAction(t, app, "user-a", map[string]interface{}{
		"action": "start", "completionId": completionID,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doAction(t, app, "user-a", map[string]interface{}{
		"action":       "complete",
		"completionId": completionID,
		"rewardAmount": 15,
		"photoUrls":    map[string]string{"before": "b.png", "after": "a.png"},
		"notes":        "all clear",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	claimData := env["data"].(map[string]interface{})
	assert.Equal(t, string(models.ClaimStatusPendingVerification), claimData["status"])
	assert.Equal(t, 15.0, claimData["reward_amount"])

	// Double completion is rejected
	resp, _ = doAction(t, app, "user-a", map[string]interface{}{
		"action":       "complete",
		"completionId": completionID,
		"rewardAmount": 15,
		"photoUrls":    map[string]string{"before": "b.png", "after": "a.png"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Check reflects the caller's claim
	resp, env = doAction(t, app, "user-a", map[string]interface{}{
		"action": "check", "jobId": "job-42",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	checkData := env["data"].(map[string]interface{})
	assert.Equal(t, false, checkData["available"])
	require.NotNil(t, checkData["completion"])
}

func TestJobActionsRequireUserContext(t *testing.T) {
	app, _ := newTestApp(t)

	raw, _ := json.Marshal(map[string]string{"action": "claim", "jobId": "job-1"})
	req, err := http.NewRequest("POST", "/jobs/actions", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJobActionsUnknownAction(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := doAction(t, app, "user-a", map[string]interface{}{
		"action": "teleport", "jobId": "job-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, env["success"])
}

func TestAdminVerdictEndpoints(t *testing.T) {
	app, svc := newTestApp(t)

	claim, err := svc.ClaimJob("job-77", "user-a")
	require.NoError(t, err)
	_, err = svc.StartClaim(claim.ID, "user-a")
	require.NoError(t, err)
	_, err = svc.CompleteClaim(claim.ID, "user-a", services.CompletionInput{
		BeforePhotoURL: "b.png", AfterPhotoURL: "a.png", RewardAmount: 12,
	})
	require.NoError(t, err)

	verifyURL := fmt.Sprintf("/admin/claims/%s/verify", claim.ID)

	// Without the verifier role the surface is closed
	req, err := http.NewRequest("POST", verifyURL, nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-x")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err = http.NewRequest("POST", verifyURL, nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-x")
	req.Header.Set("X-User-Roles", "verifier")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated, err := svc.CheckJob("job-77", "user-a")
	require.NoError(t, err)
	require.NotNil(t, updated.Claim)
	assert.Equal(t, models.ClaimStatusVerified, updated.Claim.Status)
}

func TestUserCompletionsEndpoint(t *testing.T) {
	app, svc := newTestApp(t)

	for i := 0; i < 3; i++ {
		_, err := svc.ClaimJob(fmt.Sprintf("job-%d", i), "user-a")
		require.NoError(t, err)
	}
	_, err := svc.ClaimJob("job-other", "user-b")
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "/users/me/completions", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "user-a")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Completions []models.JobClaim `json:"completions"`
		TotalItems  int64             `json:"total_items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Completions, 3)
	assert.Equal(t, int64(3), body.TotalItems)
	for _, c := range body.Completions {
		assert.Equal(t, "user-a", c.UserID)
	}
}
