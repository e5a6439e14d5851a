package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// scanIntegrity handles GET /api/v1/integrity
func (s *Server) scanIntegrity(c echo.Context) error {
	s.mu.RLock()
	report := s.scanner.Scan(s.model)
	s.mu.RUnlock()

	return c.JSON(http.StatusOK, report)
}

// repairIntegrity handles POST /api/v1/integrity/repair
//
// Runs a fresh scan and collapses parallel interactions. dry_run defaults to
// true so a bare POST never changes the model.
func (s *Server) repairIntegrity(c echo.Context) error {
	dryRun := true
	if v := c.QueryParam("dry_run"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return BadRequestError("Invalid dry_run parameter", err.Error())
		}
		dryRun = parsed
	}

	s.mu.Lock()
	report := s.scanner.Scan(s.model)
	result, err := s.scanner.Repair(s.model, report, dryRun)
	s.mu.Unlock()
	if err != nil {
		return InternalError("Repair failed", err.Error())
	}

	if !dryRun && result.Removed > 0 {
		s.BroadcastGraphEvent(EventModelRepaired, result)
	}

	return c.JSON(http.StatusOK, result)
}

// scheduledScan is the background integrity job. Clients are notified when
// the health score moves.
func (s *Server) scheduledScan(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	report := s.scanner.Scan(s.model)
	s.mu.RUnlock()

	score := report.Summary.HealthScore
	if score == s.lastScore {
		return nil
	}

	if s.lastScore >= 0 {
		s.logger.Printf("Integrity of model %s changed: health score %d -> %d (%d issues)",
			report.Model, s.lastScore, score, report.Summary.TotalIssues)
	}
	s.lastScore = score

	s.BroadcastGraphEvent(EventIntegrityChanged, report.Summary)
	return nil
}
