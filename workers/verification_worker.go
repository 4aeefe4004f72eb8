package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"cleanup-jobs-system/models"
	"cleanup-jobs-system/services"
)

// VerdictSyncClient pulls verification verdicts from the external verifier
// service and applies them to the claim ledger.
type VerdictSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Claims     *services.ClaimService
}

// Verdict is one decision from the external verifier
type Verdict struct {
	ClaimID   string    `json:"claim_id"`
	Verdict   string    `json:"verdict"` // "verified" or "rejected"
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}

func NewVerdictSyncClient(claims *services.ClaimService) *VerdictSyncClient {
	baseURL := os.Getenv("VERIFIER_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("VERIFIER_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SERVICE_TOKEN environment variable is required for verdict sync")
	}

	return &VerdictSyncClient{
		BaseURL: baseURL,
		Token:   token,
		Claims:  claims,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetVerdicts fetches verdicts decided since the given time
func (c *VerdictSyncClient) GetVerdicts(ctx context.Context, since time.Time) ([]Verdict, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/verdicts", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call verifier service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("verifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Verdicts []Verdict `json:"verdicts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode verifier response: %w", err)
	}

	return response.Verdicts, nil
}

// PollVerdicts applies verifier decisions on a fixed interval. The since
// cursor only advances when the whole batch lands, so a failed tick retries
// the same window.
func PollVerdicts(ctx context.Context, client *VerdictSyncClient, pollInterval time.Duration) {
	log.Println("Starting verdict polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Verdict polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()

			verdicts, err := client.GetVerdicts(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling verdicts: %v", err)
				continue
			}

			if len(verdicts) == 0 {
				continue
			}
			log.Printf("📥 Received %d verdict(s) from verifier service.", len(verdicts))

			failed := false
			applied := 0
			for _, v := range verdicts {
				_, err := client.Claims.ApplyVerdict(v.ClaimID, models.ClaimStatus(v.Verdict))
				switch {
				case err == nil:
					applied++
				case errors.Is(err, services.ErrInvalidTransition):
					// Already applied on a previous tick — the claim left
					// pending_verification. Safe to skip.
				case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrValidation):
					log.Printf("⚠️ Skipping bad verdict for claim %s: %v", v.ClaimID, err)
				default:
					log.Printf("❌ Failed to apply verdict for claim %s: %v", v.ClaimID, err)
					failed = true
				}
			}

			if failed {
				// Keep the window; unapplied verdicts come back next tick
				continue
			}

			lastSyncTime = tickTime
			if applied > 0 {
				log.Printf("✅ Applied %d verdict(s) to claim ledger.", applied)
			}
		}
	}
}
