package testrecords

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/coachcore/privacyd/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	recordKindDivisor  = 5
	levelDivisor       = 3
)

// Constants for synthetic record generation.
const (
	minAge     = 6
	ageRange   = 40
	minScore   = 40.0
	scoreRange = 60.0
)

// Constants for record kind cases.
const (
	casePlayerRecord     = 0
	casePracticePlan     = 1
	caseTeamRecord       = 2
	caseAnalyticsEvent   = 3
	caseAITrainingSample = 4
)

var firstNames = []string{"Jordan", "Riley", "Avery", "Casey", "Morgan", "Quinn", "Rowan", "Skyler"}

var lastNames = []string{"Avila", "Brooks", "Chen", "Diaz", "Ellis", "Flores", "Gray", "Hayes"}

var sports = []string{"soccer", "basketball", "swimming", "tennis", "hockey"}

var locations = []string{
	"42 Elm St, Springfield, IL",
	"18 Oak Ave, Portland, OR",
	"7 Main St, Austin, TX",
	"230 Pine Rd, Denver, CO",
}

var conditions = []string{"asthma", "peanut allergy", "type 1 diabetes", "none"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int64) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return int(n.Int64())
}

// generateRecords creates the specified number of job submissions with
// unique job IDs.
func generateRecords(ctx context.Context, config *Config, stats *Stats) ([]JobSubmission, error) {
	logger.Get().Info(ctx, "generating records with unique job IDs", logger.Int("numRecords", config.NumRecords))

	jobs := make([]JobSubmission, config.NumRecords)

	// Generate jobs concurrently
	type jobResult struct {
		index int
		job   JobSubmission
		err   error
	}

	resultChan := make(chan jobResult, config.NumRecords)

	// Use worker pool for record generation
	workerCount := minInt(config.Workers, config.NumRecords)
	jobsPerWorker := config.NumRecords / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * jobsPerWorker
		end := start + jobsPerWorker
		if worker == workerCount-1 {
			end = config.NumRecords // Last worker gets remaining records
		}

		go func(_ int, start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- jobResult{index: i, err: ctx.Err()}
					return
				default:
					job := generateSingleJob(i)
					resultChan <- jobResult{index: i, job: job, err: nil}
				}
			}
		}(worker, start, end)
	}

	// Collect results
	for i := 0; i < config.NumRecords; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during record generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate record %d: %w", result.index, result.err)
			}
			jobs[result.index] = result.job
		}
	}

	stats.RecordsGenerated = len(jobs)
	logger.Get().Info(ctx, "generated records successfully", logger.Int("count", len(jobs)))

	return jobs, nil
}

// generateSingleJob creates a single job submission with the given index.
func generateSingleJob(index int) JobSubmission {
	category, record := generateVariedRecord()

	// Generate unique job ID
	jobID := "job_" + strconv.FormatInt(int64(index), 10) + "_" + uuid.New().String()

	return JobSubmission{
		JobID:    jobID,
		Record:   record,
		Category: category,
		Level:    generateLevel(),
	}
}

// generateLevel picks an anonymization level with uniform distribution.
func generateLevel() string {
	switch getRandomInt(levelDivisor) {
	case 0:
		return "low"
	case 1:
		return "medium"
	default:
		return "high"
	}
}

// generateVariedRecord creates a record of a random category.
func generateVariedRecord() (string, map[string]any) {
	first := firstNames[getRandomInt(int64(len(firstNames)))]
	last := lastNames[getRandomInt(int64(len(lastNames)))]
	sport := sports[getRandomInt(int64(len(sports)))]
	age := minAge + getRandomInt(ageRange)

	switch getRandomInt(recordKindDivisor) {
	case casePlayerRecord:
		return "player_record", map[string]any{
			"firstName":   first,
			"lastName":    last,
			"age":         age,
			"sport":       sport,
			"location":    locations[getRandomInt(int64(len(locations)))],
			"medicalInfo": conditions[getRandomInt(int64(len(conditions)))],
			"parentEmail": first + "." + last + "@example.com",
			"stats": map[string]any{
				"speed":     minScore + getRandomFloat()*scoreRange,
				"endurance": minScore + getRandomFloat()*scoreRange,
			},
		}
	case casePracticePlan:
		return "practice_plan", map[string]any{
			"coachNames": []any{first + " " + last},
			"sport":      sport,
			"difficulty": "intermediate",
			"duration":   float64(20 + getRandomInt(100)),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"players": []any{
				map[string]any{"firstName": first, "age": age},
			},
		}
	case caseTeamRecord:
		return "team_record", map[string]any{
			"teamNames":   []any{sport + " " + last + "s"},
			"schoolNames": []any{last + " Academy"},
			"location":    locations[getRandomInt(int64(len(locations)))],
			"sport":       sport,
			"roster": []any{
				map[string]any{"firstName": first, "lastName": last, "age": age},
			},
		}
	case caseAnalyticsEvent:
		return "analytics_event", map[string]any{
			"email":     first + "@example.com",
			"sport":     sport,
			"category":  "session",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"stats": map[string]any{
				"accuracy": getRandomFloat() * 100,
			},
		}
	default:
		return "ai_training_sample", map[string]any{
			"playerNames": []any{first + " " + last},
			"sport":       sport,
			"level":       "club",
			"patterns": []any{
				map[string]any{
					"type":      "drill",
					"frequency": float64(1 + getRandomInt(10)),
					"category":  sport,
					"notes":     "uses " + first + "'s preferred foot",
				},
			},
		}
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
