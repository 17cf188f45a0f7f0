package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clusterscope/evidence-core/internal/knowledge"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

type KnowledgeHandler struct {
	store  *knowledge.Store
	logger logger.Logger
}

func NewKnowledgeHandler(store *knowledge.Store, log logger.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{store: store, logger: log}
}

// GET /api/v1/knowledge/files
func (h *KnowledgeHandler) ListFiles(c *gin.Context) {
	files, err := h.store.ListFiles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "files": files})
}

// GET /api/v1/knowledge/files/*name
func (h *KnowledgeHandler) ReadFile(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	content, err := h.store.ReadFile(name)
	if err != nil {
		c.JSON(knowledgeStatus(err), gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "file": name, "content": content})
}

type writeFileRequest struct {
	Content string `json:"content"`
	Append  bool   `json:"append"`
}

// PUT /api/v1/knowledge/files/*name
func (h *KnowledgeHandler) WriteFile(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")

	var req writeFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	var err error
	if req.Append {
		err = h.store.AppendFile(name, req.Content)
	} else {
		err = h.store.WriteFile(name, req.Content)
	}
	if err != nil {
		c.JSON(knowledgeStatus(err), gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "file": name, "bytes": len(req.Content)})
}

// GET /api/v1/knowledge/search?q=
func (h *KnowledgeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "query parameter q is required"})
		return
	}
	matches, err := h.store.Search(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if matches == nil {
		matches = []knowledge.SearchMatch{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "query": query, "matches": matches})
}

type saveReportRequest struct {
	AlertName string `json:"alertname"`
	Content   string `json:"content"`
}

// POST /api/v1/knowledge/reports
func (h *KnowledgeHandler) SaveReport(c *gin.Context) {
	var req saveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "content is required"})
		return
	}

	name, err := h.store.SaveReport(req.AlertName, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "file": name})
}

// GET /api/v1/knowledge/reports/recent?limit=
func (h *KnowledgeHandler) RecentReports(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	reports, err := h.store.RecentReports(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	if reports == nil {
		reports = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "reports": reports})
}

func knowledgeStatus(err error) int {
	switch {
	case errors.Is(err, knowledge.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, knowledge.ErrBadName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
