package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/internal/diffengine"
	"github.com/clusterscope/evidence-core/internal/models"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

// ReleaseStoreService fetches named revision value snapshots from the
// release-history store. The diff engine itself only ever sees the parsed
// trees, never release identifiers.
type ReleaseStoreService struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger

	username string
	password string
}

func NewReleaseStoreService(cfg config.ReleaseStoreConfig, log logger.Logger) *ReleaseStoreService {
	return &ReleaseStoreService{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger:   log,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// GetRevisionValues returns the value snapshot for one revision of a
// release, parsed into a ConfigTree.
func (s *ReleaseStoreService) GetRevisionValues(ctx context.Context, release, namespace string, revision int) (models.ConfigTree, error) {
	endpoint := fmt.Sprintf("%s/api/v1/releases/%s/%s/revisions/%d/values",
		s.endpoint, url.PathEscape(namespace), url.PathEscape(release), revision)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch revision values: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("release store returned %d for %s/%s rev %d: %s",
			resp.StatusCode, namespace, release, revision, string(detail))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read revision values: %w", err)
	}

	tree, err := diffengine.ParseConfigTree(body)
	if err != nil {
		return nil, fmt.Errorf("revision %d of %s/%s: %w", revision, namespace, release, err)
	}
	return tree, nil
}
