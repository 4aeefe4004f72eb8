// services/feed_service.go
package services

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"cleanup-jobs-system/models"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

// FeedService synthesizes the cleanup job feed. It is stateless: every batch
// is built fresh from the catalogs and an RNG, nothing is persisted and
// nothing is deduplicated across calls.
type FeedService struct{}

func NewFeedService() *FeedService {
	return &FeedService{}
}

const (
	minBatchSize = 15
	maxBatchSize = 20
	maxFeedCount = 50
)

// GenerateJobs produces count jobs from the catalogs using rng. count <= 0
// picks a batch size in [15, 20]. Identical catalogs plus an identically
// seeded rng yield an identical feed, ordering included.
func (s *FeedService) GenerateJobs(rng *rand.Rand, count int) []models.Job {
	if count <= 0 {
		count = minBatchSize + rng.Intn(maxBatchSize-minBatchSize+1)
	}
	if count > maxFeedCount {
		count = maxFeedCount
	}

	now := time.Now()
	usedLocations := mapset.NewThreadUnsafeSet[string]()
	jobs := make([]models.Job, 0, count)

	for i := 0; i < count; i++ {
		loc := pickLocation(rng, usedLocations)
		category := debrisCatalog[rng.Intn(len(debrisCatalog))]
		item := category.Items[rng.Intn(len(category.Items))]

		// Small jitter so jobs at the same beach don't stack on one point
		latJitter := (rng.Float64() - 0.5) * 0.01
		lngJitter := (rng.Float64() - 0.5) * 0.01

		// Simulated distance; a real deployment would compute it from the
		// caller's location
		distance := rng.Float64()*15 + 0.5

		jobs = append(jobs, models.Job{
			ID:       fmt.Sprintf("job-%s-%d-%d", slug.Make(loc.Name), now.UnixMilli(), i),
			Title:    "Clean up " + item.Type,
			Location: loc.City,
			Reward:   item.BaseReward + rng.Intn(5),
			Duration: rng.Intn(30) + 15, // 15-44 minutes
			Category: category.Category,
			Urgency:  item.Urgency,
			Distance: fmt.Sprintf("%.1f mi", distance),
			Lat:      loc.Lat + latJitter,
			Lng:      loc.Lng + lngJitter,
			Description: fmt.Sprintf(
				"Help clean up %s debris at %s. This is part of the Marine Debris Tracker initiative to monitor and remove pollution from our coastlines.",
				strings.ToLower(item.Type), loc.Name),
			ReportedAt: now.Add(-time.Duration(rng.Float64() * 3 * 24 * float64(time.Hour))),
		})
	}

	sortJobs(jobs)
	return jobs
}

// pickLocation draws without replacement until the catalog is exhausted, then
// with replacement.
func pickLocation(rng *rand.Rand, used mapset.Set[string]) coastalLocation {
	if used.Cardinality() >= len(coastalLocations) {
		return coastalLocations[rng.Intn(len(coastalLocations))]
	}
	for {
		loc := coastalLocations[rng.Intn(len(coastalLocations))]
		if used.Add(loc.Name) {
			return loc
		}
	}
}

// sortJobs applies the feed ordering contract: most severe urgency first,
// ties broken by reward descending. Stable, so equal (urgency, reward) pairs
// keep generation order.
func sortJobs(jobs []models.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ri, rj := models.UrgencyRank(jobs[i].Urgency), models.UrgencyRank(jobs[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		return jobs[i].Reward > jobs[j].Reward
	})
}

// DetectNewUrgent diffs a feed batch against the job IDs a client has already
// seen and returns the unseen high/critical jobs in feed order. Prior state is
// an explicit argument; the service keeps none.
func DetectNewUrgent(previousIDs mapset.Set[string], current []models.Job) []models.Job {
	var fresh []models.Job
	for _, job := range current {
		if previousIDs != nil && previousIDs.Contains(job.ID) {
			continue
		}
		if job.Urgency == models.UrgencyCritical || job.Urgency == models.UrgencyHigh {
			fresh = append(fresh, job)
		}
	}
	return fresh
}

// GetFeed handles GET /jobs/feed
func (s *FeedService) GetFeed(c *fiber.Ctx) error {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxFeedCount {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid count parameter"})
		}
		count = n
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	jobs := s.GenerateJobs(rng, count)

	log.Printf("🌊 Generated %d cleanup jobs for feed", len(jobs))
	return c.JSON(fiber.Map{"jobs": jobs})
}
