// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler sweeps for abandoned claims once a minute. No-op when
// the TTL policy is disabled.
func (s *ClaimService) StartExpiryScheduler() {
	if s.Policy.ClaimTTL <= 0 {
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			expired, err := s.ExpireStaleClaims(s.Policy.ClaimTTL)
			if err != nil {
				log.Printf("[Expiry] DB error: %v", err)
				return
			}
			if expired > 0 {
				log.Printf("⏱️ Expired %d stale claim(s) past TTL %s", expired, s.Policy.ClaimTTL)
			}
		}),
	)
}
