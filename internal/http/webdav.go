package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dengxuezhao/kompanion/internal/auth"
	"github.com/dengxuezhao/kompanion/internal/stats"
)

// multistatusBody is the static PROPFIND answer. KOReader only probes that
// the collection exists before PUTting the statistics file, so an empty
// multistatus is enough.
const multistatusBody = `<?xml version="1.0" encoding="UTF-8"?>
<D:multistatus xmlns:D="DAV:">
</D:multistatus>`

type WebDAVController struct {
	stats *stats.Service
}

func NewWebDAVController(svc *stats.Service) *WebDAVController {
	return &WebDAVController{stats: svc}
}

func (controller *WebDAVController) Propfind(c *gin.Context) {
	c.Data(http.StatusMultiStatus, "application/xml", []byte(multistatusBody))
}

func (controller *WebDAVController) PutStatistics(c *gin.Context) {
	device := auth.DeviceName(c)

	err := controller.stats.Write(c.Request.Context(), device, c.Request.Body)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to store statistics"})
		return
	}
	c.Status(http.StatusCreated)
}

func (controller *WebDAVController) GetStatistics(c *gin.Context) {
	device := auth.DeviceName(c)

	path, err := controller.stats.Read(c.Request.Context(), device)
	if err != nil {
		if errors.Is(err, stats.ErrNoStats) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.File(path)
}

func (controller *WebDAVController) Summary(c *gin.Context) {
	device := auth.DeviceName(c)

	summary, err := controller.stats.Summary(c.Request.Context(), device)
	if err != nil {
		if errors.Is(err, stats.ErrNoStats) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "no statistics for device"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to read summary"})
		return
	}
	c.IndentedJSON(http.StatusOK, summary)
}
