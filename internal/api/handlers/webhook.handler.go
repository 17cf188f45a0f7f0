package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clusterscope/evidence-core/internal/intake"
	"github.com/clusterscope/evidence-core/internal/models"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

type WebhookHandler struct {
	intake *intake.Intake
	logger logger.Logger
}

func NewWebhookHandler(in *intake.Intake, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{intake: in, logger: log}
}

// POST /api/v1/webhook/alertmanager - Alertmanager webhook intake
//
// Duplicate and resolved alerts get a quiet success so Alertmanager does not
// retry-storm; a dispatch failure yields 502 so its delivery retry fires
// again.
func (h *WebhookHandler) ReceiveAlertmanager(c *gin.Context) {
	var webhook models.AlertmanagerWebhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "invalid webhook payload: " + err.Error(),
		})
		return
	}

	h.logger.Info("Received webhook",
		"groupKey", webhook.GroupKey,
		"status", webhook.Status,
		"alerts", len(webhook.Alerts),
	)

	results := make([]models.AlertResult, 0, len(webhook.Alerts))
	dispatchFailed := false

	for i := range webhook.Alerts {
		alert := &webhook.Alerts[i]
		event := alert.Event()
		result := models.AlertResult{
			AlertName: event.Name(),
		}

		outcome, err := h.intake.Submit(c.Request.Context(), event)
		result.Fingerprint = event.Fingerprint
		switch {
		case errors.Is(err, intake.ErrInvalidEvent):
			result.Error = err.Error()
		case err != nil:
			dispatchFailed = true
			result.Error = err.Error()
			h.logger.Error("Alert processing failed",
				"fingerprint", event.Fingerprint, "error", err)
		default:
			result.Outcome = outcome.Outcome
			result.InvestigationID = outcome.InvestigationID
		}
		results = append(results, result)
	}

	status := http.StatusOK
	if dispatchFailed {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"status":           "processed",
		"webhook_group":    webhook.GroupKey,
		"alerts_received":  len(webhook.Alerts),
		"alerts_processed": len(results),
		"results":          results,
	})
}

// POST /api/v1/webhook/test - echo endpoint for manual submissions
func (h *WebhookHandler) ReceiveTest(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Test webhook received", "keys", len(body))
	c.JSON(http.StatusOK, gin.H{
		"status":    "test_received",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"data":      body,
	})
}
