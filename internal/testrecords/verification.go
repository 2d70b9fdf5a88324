package testrecords

import (
	"fmt"
	"log"
)

// identifyingFields that must never survive anonymization at any level.
var identifyingFields = []string{
	"firstName", "lastName", "email", "phone", "address",
	"playerNames", "coachNames", "teamNames", "schoolNames",
	"parentEmail", "parentPhone", "emergencyContact",
}

// verifyResults verifies expiry ordering and identifying-field removal.
func verifyResults(config *Config, summaries []Summary, results []Result, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(results) == 0 {
		return fmt.Errorf("no results to verify")
	}

	// Verify expiry ordering if we have expiring data
	if len(summaries) > 0 {
		if err := verifyExpiryOrdering(summaries); err != nil {
			log.Printf("⚠️  Expiry ordering warning: %v", err)
		} else {
			log.Println("✅ Expiry ordering verified")
		}
	}

	// Verify no identifying fields leaked
	leaked := 0
	for _, result := range results {
		leaked += countLeakedFields(result.AnonymizedData)
	}
	stats.LeakedFields = leaked
	if leaked > 0 {
		return fmt.Errorf("found %d identifying fields in anonymized output", leaked)
	}
	log.Println("✅ No identifying fields leaked")

	// Display a sample of retained results
	displayResults(results, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// verifyExpiryOrdering checks that summaries are ordered soonest first.
func verifyExpiryOrdering(summaries []Summary) error {
	for i := 1; i < len(summaries); i++ {
		if summaries[i].ExpiresAt.Before(summaries[i-1].ExpiresAt) {
			return fmt.Errorf("expiring list not ordered: entry %d expires before entry %d", i, i-1)
		}
	}
	for _, s := range summaries {
		if !s.ExpiresAt.After(s.CreatedAt) {
			return fmt.Errorf("entry %s expires at or before its creation", s.ID)
		}
	}
	return nil
}

// countLeakedFields walks a tree counting identifying field occurrences.
func countLeakedFields(tree map[string]any) int {
	count := 0
	for key, value := range tree {
		for _, field := range identifyingFields {
			if key == field {
				count++
			}
		}
		switch v := value.(type) {
		case map[string]any:
			count += countLeakedFields(v)
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					count += countLeakedFields(m)
				}
			}
		}
	}
	return count
}

// displayResults shows a sample of retrieved results.
func displayResults(results []Result, verbose bool) {
	topN := 10
	if len(results) < topN {
		topN = len(results)
	}

	log.Printf("📦 Sample of %d archived results:", topN)
	for i := 0; i < topN; i++ {
		r := results[i]
		log.Printf("   %d. %s - %s/%s retained %s", i+1, r.ID, r.OriginalDataType, r.AnonymizationLevel, r.RetentionPeriod)
	}

	if verbose {
		// Show category distribution
		byCategory := make(map[string]int)
		for _, r := range results {
			byCategory[r.OriginalDataType]++
		}

		log.Println("📊 Category distribution:")
		for category, count := range byCategory {
			log.Printf("   %s: %d", category, count)
		}
	}
}
