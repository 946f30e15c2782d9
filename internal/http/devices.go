package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dengxuezhao/kompanion/internal/auth"
	"github.com/dengxuezhao/kompanion/internal/database/devices"
)

type DeviceCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type DevicesController struct {
	auth *auth.Service
}

func NewDevicesController(svc *auth.Service) *DevicesController {
	return &DevicesController{auth: svc}
}

func (controller *DevicesController) Create(c *gin.Context) {
	var req DeviceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "name and password are required"})
		return
	}

	device, err := controller.auth.RegisterDevice(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, devices.ErrDuplicate) {
			c.IndentedJSON(http.StatusConflict, gin.H{"error": "device name already registered"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}
	c.IndentedJSON(http.StatusCreated, device)
}

func (controller *DevicesController) List(c *gin.Context) {
	list, err := controller.auth.ListDevices(c.Request.Context())
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to list devices"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"devices": list, "count": len(list)})
}

func (controller *DevicesController) Delete(c *gin.Context) {
	err := controller.auth.RevokeDevice(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, devices.ErrNotFound) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke device"})
		return
	}
	c.Status(http.StatusNoContent)
}
