package intake

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterscope/evidence-core/internal/models"
)

func instructionEvent() *models.AlertEvent {
	return &models.AlertEvent{
		Fingerprint: "2a3f9c1d",
		Status:      models.StatusFiring,
		Labels: map[string]string{
			"alertname": "PodCrashLooping",
			"severity":  "critical",
			"namespace": "payments",
			"pod":       "payments-api-7d9f",
		},
		Annotations: map[string]string{
			"summary":     "Pod is crash looping",
			"description": "Container restarted 12 times in 10 minutes",
		},
		StartsAt:     time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		GeneratorURL: "http://prometheus:9090/graph?g0.expr=up",
	}
}

func TestBuildInstruction_Contents(t *testing.T) {
	text := BuildInstruction(instructionEvent())

	assert.True(t, strings.HasPrefix(text, "ALERT RECEIVED - INVESTIGATE AND ANALYZE"))
	assert.Contains(t, text, "Alert Name: PodCrashLooping")
	assert.Contains(t, text, "Severity: critical")
	assert.Contains(t, text, "Status: firing")
	assert.Contains(t, text, "Started At: 2026-08-20T14:30:00Z")
	assert.Contains(t, text, "Fingerprint: 2a3f9c1d")
	assert.Contains(t, text, "- Namespace: payments")
	assert.Contains(t, text, "- Pod: payments-api-7d9f")
	assert.Contains(t, text, "http://prometheus:9090/graph?g0.expr=up")
	assert.Contains(t, text, "INSTRUCTIONS:")
}

func TestBuildInstruction_SortedLabels(t *testing.T) {
	text := BuildInstruction(instructionEvent())

	alertname := strings.Index(text, "  alertname: PodCrashLooping")
	namespace := strings.Index(text, "  namespace: payments")
	severity := strings.Index(text, "  severity: critical")
	require.True(t, alertname >= 0 && namespace >= 0 && severity >= 0)
	assert.Less(t, alertname, namespace)
	assert.Less(t, namespace, severity)
}

func TestBuildInstruction_Deterministic(t *testing.T) {
	assert.Equal(t, BuildInstruction(instructionEvent()), BuildInstruction(instructionEvent()))
}

func TestBuildInstruction_MissingOptionalFields(t *testing.T) {
	event := &models.AlertEvent{
		Fingerprint: "fp",
		Status:      models.StatusFiring,
		Labels:      map[string]string{"alertname": "DiskFull"},
		StartsAt:    time.Now(),
	}
	text := BuildInstruction(event)

	assert.Contains(t, text, "Severity: unknown")
	assert.Contains(t, text, "- Namespace: unknown")
	assert.Contains(t, text, "- Pod: unknown")
	assert.NotContains(t, text, "GENERATOR URL")
}
