package testrecords

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// getExpiring retrieves the top N soonest-expiring archive summaries.
func getExpiring(ctx context.Context, config *Config, stats *Stats) ([]Summary, error) {
	log.Printf("⏳ Getting top %d expiring entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/expiring?limit=%d", config.BaseURL, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var summaries []Summary
	if err := unmarshalJSON(body, &summaries); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.ExpiringEntries = len(summaries)
	log.Printf("✅ Retrieved %d expiring entries", len(summaries))

	return summaries, nil
}

// retrieveResults fetches the full archived result for each summary
// concurrently.
func retrieveResults(ctx context.Context, config *Config, summaries []Summary, stats *Stats) ([]Result, error) {
	log.Printf("📦 Retrieving %d archived results with %d workers...", len(summaries), config.Workers)

	client := newHTTPClient(config.Timeout)

	// Results storage
	results := make([]Result, len(summaries))
	var (
		retrieved int64
		failed    int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	// Create worker pool
	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					id := summaries[index].ID
					result, err := retrieveSingleResult(ctx, client, config.BaseURL, id)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("⚠️  Failed to get result %s: %v", id, err)
						}
					} else {
						results[index] = result
						atomic.AddInt64(&retrieved, 1)
					}

					// Progress reporting
					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						ret := atomic.LoadInt64(&retrieved)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Result progress: %d/%d retrieved (success: %d, failed: %d)",
								total, len(summaries), ret, fail)
						} else {
							log.Printf("\r📦 Results: %d/%d retrieved (success: %d, failed: %d)",
								total, len(summaries), ret, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send summary indices to workers
	go func() {
		defer close(indexChan)
		for i := range summaries {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		log.Println() // New line after progress indicator
	}

	// Filter out empty entries (failed retrievals)
	validResults := make([]Result, 0, len(results))
	for _, r := range results {
		if r.ID != "" { // Empty ID indicates failed retrieval
			validResults = append(validResults, r)
		}
	}

	// Update stats
	stats.ResultsRetrieved = len(validResults)

	log.Printf(`✅ Result retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(validResults), int(atomic.LoadInt64(&failed)))

	return validResults, nil
}

// retrieveSingleResult retrieves a single archived result by id.
func retrieveSingleResult(ctx context.Context, client *HTTPClient, baseURL, id string) (Result, error) {
	url := fmt.Sprintf("%s/results/%s", baseURL, id)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return Result{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	var result Result
	if err := unmarshalJSON(body, &result); err != nil {
		return Result{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}
