package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clusterscope/evidence-core/internal/diffengine"
	"github.com/clusterscope/evidence-core/internal/logevidence"
	"github.com/clusterscope/evidence-core/internal/models"
	"github.com/clusterscope/evidence-core/internal/services"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

// EvidenceHandler exposes the diff engine and log extractor as tool
// endpoints for the investigator.
type EvidenceHandler struct {
	releases *services.ReleaseStoreService
	logStore *services.LogStoreService
	logger   logger.Logger
}

func NewEvidenceHandler(releases *services.ReleaseStoreService, logStore *services.LogStoreService, log logger.Logger) *EvidenceHandler {
	return &EvidenceHandler{releases: releases, logStore: logStore, logger: log}
}

// DiffRequest names two revisions of a release, or carries both value trees
// inline. Inline trees take precedence so the tool works without a release
// store connection.
type DiffRequest struct {
	Release     string `json:"release"`
	Namespace   string `json:"namespace"`
	OldRevision int    `json:"old_revision"`
	NewRevision int    `json:"new_revision"`

	OldValues interface{} `json:"old_values,omitempty"`
	NewValues interface{} `json:"new_values,omitempty"`
}

// POST /api/v1/tools/diff - structural diff of two revision snapshots
func (h *EvidenceHandler) DiffRevisions(c *gin.Context) {
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	oldRoot, newRoot := req.OldValues, req.NewValues
	if oldRoot == nil && newRoot == nil {
		if req.Release == "" || req.Namespace == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "either inline values or release, namespace and revisions are required",
			})
			return
		}
		var err error
		oldRoot, err = h.releases.GetRevisionValues(c.Request.Context(), req.Release, req.Namespace, req.OldRevision)
		if err == nil {
			newRoot, err = h.releases.GetRevisionValues(c.Request.Context(), req.Release, req.Namespace, req.NewRevision)
		}
		if err != nil {
			h.logger.Error("Revision fetch failed", "release", req.Release, "namespace", req.Namespace, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"status": "error", "error": err.Error()})
			return
		}
	}

	changes, err := diffengine.DiffValues(oldRoot, newRoot)
	if err != nil {
		if errors.Is(err, diffengine.ErrNotATree) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if changes == nil {
		changes = []models.ChangeRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"changes": changes,
		"count":   len(changes),
	})
}

// AnalyzeLogsRequest carries raw log text, or names a container to fetch
// logs for. Inline text takes precedence.
type AnalyzeLogsRequest struct {
	Namespace  string `json:"namespace"`
	Pod        string `json:"pod"`
	Container  string `json:"container"`
	Tail       int    `json:"tail"`
	Text       string `json:"text,omitempty"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	MinRepeats int    `json:"min_repeats,omitempty"`
}

// POST /api/v1/tools/logs/analyze - extract structured log evidence
func (h *EvidenceHandler) AnalyzeLogs(c *gin.Context) {
	var req AnalyzeLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	text := req.Text
	if text == "" {
		if req.Namespace == "" || req.Pod == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "either inline text or namespace and pod are required",
			})
			return
		}
		fetched, err := h.logStore.FetchLogs(c.Request.Context(), req.Namespace, req.Pod, req.Container, req.Tail)
		if err != nil {
			h.logger.Error("Log fetch failed", "namespace", req.Namespace, "pod", req.Pod, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"status": "error", "error": err.Error()})
			return
		}
		text = fetched
	}

	evidence := logevidence.Analyze(text, logevidence.Options{
		ExitCode:   req.ExitCode,
		MinRepeats: req.MinRepeats,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"evidence": evidence,
	})
}

// GET /api/v1/tools/exitcode/:code - classify a container exit code
func (h *EvidenceHandler) ClassifyExitCode(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "exit code must be an integer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"exit_code": logevidence.ClassifyExitCode(code),
	})
}
