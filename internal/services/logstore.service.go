package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

// LogStoreService fetches raw container log text from the log store. The
// evidence extractor only ever sees text, never pod identifiers.
type LogStoreService struct {
	endpoint  string
	tailLines int
	client    *http.Client
	logger    logger.Logger

	username string
	password string
}

func NewLogStoreService(cfg config.LogStoreConfig, log logger.Logger) *LogStoreService {
	return &LogStoreService{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		tailLines: cfg.TailLines,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger:   log,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// FetchLogs returns the most recent log text for a container. A tailLines of
// zero uses the configured default.
func (s *LogStoreService) FetchLogs(ctx context.Context, namespace, pod, container string, tailLines int) (string, error) {
	if tailLines <= 0 {
		tailLines = s.tailLines
	}

	q := url.Values{}
	q.Set("namespace", namespace)
	q.Set("pod", pod)
	if container != "" {
		q.Set("container", container)
	}
	q.Set("tail", strconv.Itoa(tailLines))

	endpoint := s.endpoint + "/api/v1/logs?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch logs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("log store returned %d for %s/%s: %s",
			resp.StatusCode, namespace, pod, string(detail))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(body), nil
}
