package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/internal/models"
	"github.com/clusterscope/evidence-core/internal/monitoring"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

// ErrDispatchFailed wraps any dispatch error after the retry budget is
// exhausted. Callers surface it so the upstream alert source's delivery
// retry can re-trigger the investigation.
var ErrDispatchFailed = errors.New("investigation dispatch failed")

// InvestigatorService forwards accepted alerts to the external investigation
// agent over HTTP. One retry on transient failure, bounded by the configured
// timeout per attempt.
type InvestigatorService struct {
	endpoint string
	retries  int
	client   *http.Client
	logger   logger.Logger
}

// DispatchRequest is the payload handed to the investigation agent.
type DispatchRequest struct {
	InvestigationID string             `json:"investigation_id"`
	Instruction     string             `json:"instruction"`
	Alert           *models.AlertEvent `json:"alert"`
}

func NewInvestigatorService(cfg config.InvestigatorConfig, log logger.Logger) *InvestigatorService {
	return &InvestigatorService{
		endpoint: cfg.Endpoint,
		retries:  cfg.Retries,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger: log,
	}
}

// Dispatch sends the alert and its investigation instruction to the agent
// and returns the assigned investigation ID.
func (s *InvestigatorService) Dispatch(ctx context.Context, event *models.AlertEvent, instruction string) (string, error) {
	investigationID := uuid.NewString()

	body, err := json.Marshal(&DispatchRequest{
		InvestigationID: investigationID,
		Instruction:     instruction,
		Alert:           event,
	})
	if err != nil {
		return "", fmt.Errorf("marshal dispatch request: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying investigation dispatch",
				"investigationId", investigationID,
				"attempt", attempt,
				"error", lastErr,
			)
		}
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			monitoring.RecordDispatch("success", time.Since(start))
			s.logger.Info("Investigation dispatched",
				"investigationId", investigationID,
				"alertname", event.Name(),
				"fingerprint", event.Fingerprint,
			)
			return investigationID, nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	monitoring.RecordDispatch("error", time.Since(start))
	return "", fmt.Errorf("%w: %v", ErrDispatchFailed, lastErr)
}

func (s *InvestigatorService) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("investigator returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
