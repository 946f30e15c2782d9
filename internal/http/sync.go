package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dengxuezhao/kompanion/internal/auth"
	"github.com/dengxuezhao/kompanion/internal/entities"
	"github.com/dengxuezhao/kompanion/internal/progress"
)

// ProgressRequest is the body KOReader's sync plugin sends. Timestamp is
// optional; zero means "stamp it server-side".
type ProgressRequest struct {
	Document   string  `json:"document" binding:"required"`
	Percentage float64 `json:"percentage"`
	Progress   string  `json:"progress"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id"`
	Timestamp  int64   `json:"timestamp"`
}

type SyncController struct {
	progress *progress.Service
}

func NewSyncController(svc *progress.Service) *SyncController {
	return &SyncController{progress: svc}
}

// Update reconciles one progress report and echoes back whichever position
// won, so an outdated client immediately learns the newer one.
func (controller *SyncController) Update(c *gin.Context) {
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid progress payload"})
		return
	}

	result, err := controller.progress.Sync(c.Request.Context(), auth.DeviceName(c), entities.Progress{
		Document:   req.Document,
		Percentage: req.Percentage,
		Progress:   req.Progress,
		Device:     req.Device,
		DeviceID:   req.DeviceID,
		Timestamp:  req.Timestamp,
	})
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to sync progress"})
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

func (controller *SyncController) Fetch(c *gin.Context) {
	document := c.Param("document")

	result, err := controller.progress.Fetch(c.Request.Context(), document)
	if err != nil {
		if errors.Is(err, progress.ErrNoProgress) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "no progress for document"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch progress"})
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

// AuthCheck is KOReader's credential probe; the device middleware has
// already done the work by the time it runs.
func (controller *SyncController) AuthCheck(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"authorized": "OK"})
}

func (controller *SyncController) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	history, err := controller.progress.History(c.Request.Context(), c.Param("document"), limit)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
}
