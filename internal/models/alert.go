package models

import "time"

// AlertStatus mirrors the Alertmanager notification status.
type AlertStatus string

const (
	StatusFiring   AlertStatus = "firing"
	StatusResolved AlertStatus = "resolved"
)

// AlertEvent is one alert delivery after intake normalization. It lives for
// the duration of a single Submit call; only the dedup entry keyed by
// Fingerprint outlasts it.
type AlertEvent struct {
	Fingerprint  string            `json:"fingerprint"`
	Status       AlertStatus       `json:"status"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     time.Time         `json:"startsAt"`
	GeneratorURL string            `json:"generatorURL,omitempty"`
}

// Name returns the alertname label, the conventional identity of an alert.
func (e *AlertEvent) Name() string {
	if name, ok := e.Labels["alertname"]; ok {
		return name
	}
	return "Unknown"
}

// AlertmanagerWebhook is the Alertmanager webhook payload.
// https://prometheus.io/docs/alerting/latest/configuration/#webhook_config
type AlertmanagerWebhook struct {
	Version           string            `json:"version"`
	GroupKey          string            `json:"groupKey"`
	Status            string            `json:"status"`
	Receiver          string            `json:"receiver"`
	GroupLabels       map[string]string `json:"groupLabels"`
	CommonLabels      map[string]string `json:"commonLabels"`
	CommonAnnotations map[string]string `json:"commonAnnotations"`
	ExternalURL       string            `json:"externalURL"`
	Alerts            []WebhookAlert    `json:"alerts"`
}

// WebhookAlert is a single alert inside the webhook batch.
type WebhookAlert struct {
	Status       string            `json:"status"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     time.Time         `json:"startsAt"`
	EndsAt       *time.Time        `json:"endsAt,omitempty"`
	GeneratorURL string            `json:"generatorURL,omitempty"`
	Fingerprint  string            `json:"fingerprint,omitempty"`
}

// Event converts a webhook alert into the intake event shape.
func (a *WebhookAlert) Event() *AlertEvent {
	return &AlertEvent{
		Fingerprint:  a.Fingerprint,
		Status:       AlertStatus(a.Status),
		Labels:       a.Labels,
		Annotations:  a.Annotations,
		StartsAt:     a.StartsAt,
		GeneratorURL: a.GeneratorURL,
	}
}

// SubmitOutcome is the result of one intake submission.
type SubmitOutcome string

const (
	OutcomeAccepted     SubmitOutcome = "accepted"
	OutcomeDeduplicated SubmitOutcome = "deduplicated"
)

// AlertResult is the per-alert entry in the webhook response.
type AlertResult struct {
	Fingerprint     string        `json:"fingerprint"`
	AlertName       string        `json:"alertname"`
	Outcome         SubmitOutcome `json:"outcome,omitempty"`
	InvestigationID string        `json:"investigation_id,omitempty"`
	Error           string        `json:"error,omitempty"`
}
