package simulation

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"meditrace/pkg/logger"
)

// Run executes the configured supply-chain scenarios against a live service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting supply-chain simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("scenario", config.Scenario),
	)

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	for _, sc := range scenarios() {
		if config.Scenario != "" && config.Scenario != sc.Name {
			continue
		}
		stats.ScenariosRun++
		if err := runScenario(ctx, client, config, sc, stats); err != nil {
			stats.ScenariosFailed++
			logger.Get().Error(ctx, "scenario failed",
				logger.String("scenario", sc.Name), logger.Error(err))
			continue
		}
		stats.ScenariosPassed++
	}

	if err := checkUnknownIdentifier(ctx, client, config); err != nil {
		return fmt.Errorf("unknown identifier check failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.ScenariosFailed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", stats.ScenariosFailed, stats.ScenariosRun)
	}
	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// runScenario issues a batch, replays its journey, and verifies the verdict.
func runScenario(ctx context.Context, client *httpClient, config *Config, sc scenario, stats *Stats) error {
	logger.Get().Info(ctx, "running scenario", logger.String("scenario", sc.Name))

	resp, err := client.post(ctx, config.BaseURL+"/api/v1/batches", sc.Batch)
	if err != nil {
		return fmt.Errorf("issuing batch: %w", err)
	}
	var batch batchResult
	if err := readJSON(resp, &batch); err != nil {
		return err
	}
	if len(batch.UnitIDs) == 0 {
		return fmt.Errorf("batch issuance returned no unit ids")
	}
	unitID := batch.UnitIDs[0]

	// Anchor the journey so its last stop lands at the present.
	var span time.Duration
	for _, st := range sc.Journey {
		if st.Offset > span {
			span = st.Offset
		}
	}
	base := time.Now().UTC().Add(-span)

	if err := submitJourney(ctx, client, config, unitID, base, sc.Journey, stats); err != nil {
		return err
	}

	// Give the async pipeline a moment to drain.
	time.Sleep(config.Settle)

	resp, err = client.get(ctx, config.BaseURL+"/api/v1/verify/"+unitID)
	if err != nil {
		return fmt.Errorf("verifying unit: %w", err)
	}
	var report safetyReport
	if err := readJSON(resp, &report); err != nil {
		return err
	}

	logger.Get().Info(ctx, "scenario verified",
		logger.String("scenario", sc.Name),
		logger.String("unitID", unitID),
		logger.String("tier", report.RiskTier),
		logger.Float64("probability", report.RiskProbability),
		logger.String("status", report.OverallStatus),
	)

	if report.OverallStatus != sc.ExpectedStatus {
		return fmt.Errorf("expected overall status %s, got %s", sc.ExpectedStatus, report.OverallStatus)
	}
	return nil
}

// submitJourney posts the journey's scans concurrently.
func submitJourney(ctx context.Context, client *httpClient, config *Config, unitID string, base time.Time, journey []stop, stats *Stats) error {
	if len(journey) == 0 {
		return nil
	}

	var submitted, duplicate, failed int64
	scanChan := make(chan scanRequest, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for scan := range scanChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddInt64(&submitted, 1)
				switch submitSingleScan(ctx, client, config.BaseURL+"/api/v1/checkpoints", scan) {
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "failed":
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	for _, st := range journey {
		scan := scanRequest{
			ScanID:    uuid.New().String(),
			UnitID:    unitID,
			Location:  st.Location,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			EventType: st.EventType,
			TS:        base.Add(st.Offset).Format(time.RFC3339),
		}
		select {
		case <-ctx.Done():
			close(scanChan)
			wg.Wait()
			return ctx.Err()
		case scanChan <- scan:
		}
	}
	close(scanChan)
	wg.Wait()

	stats.ScansSubmitted += int(atomic.LoadInt64(&submitted))
	stats.ScansDuplicate += int(atomic.LoadInt64(&duplicate))
	stats.ScansFailed += int(atomic.LoadInt64(&failed))

	if n := atomic.LoadInt64(&failed); n > 0 {
		return fmt.Errorf("%d of %d scans failed to submit", n, submitted)
	}
	return nil
}

// submitSingleScan posts one scan and classifies the outcome.
func submitSingleScan(ctx context.Context, client *httpClient, url string, scan scanRequest) string {
	resp, err := client.post(ctx, url, scan)
	if err != nil {
		return "failed"
	}
	var ack ackResponse
	if err := readJSON(resp, &ack); err != nil {
		return "failed"
	}
	switch resp.StatusCode {
	case http.StatusAccepted:
		return "success"
	case http.StatusOK:
		return "duplicate"
	default:
		return "failed"
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// checkUnknownIdentifier verifies that a never-issued id comes back as a
// counterfeit determination rather than a server error.
func checkUnknownIdentifier(ctx context.Context, client *httpClient, config *Config) error {
	bogus := "MED-" + uuid.New().String()
	resp, err := client.get(ctx, config.BaseURL+"/api/v1/verify/"+bogus)
	if err != nil {
		return fmt.Errorf("verifying bogus id: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "unknown identifier reported as fake", logger.String("unitID", bogus))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("scenariosRun", stats.ScenariosRun),
		logger.Int("scenariosPassed", stats.ScenariosPassed),
		logger.Int("scenariosFailed", stats.ScenariosFailed),
		logger.Int("scansSubmitted", stats.ScansSubmitted),
		logger.Int("scansDuplicate", stats.ScansDuplicate),
		logger.Int("scansFailed", stats.ScansFailed),
		logger.String("duration", stats.Duration.String()),
	)
}
