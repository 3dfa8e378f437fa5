package api

import (
	"net/http"

	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	service rides.RideUseCase
}

func NewRideHandler(service rides.RideUseCase) *RideHandler {
	return &RideHandler{service: service}
}

func (h *RideHandler) Register(router *gin.RouterGroup) {
	router.POST("/rides", h.publish)
	router.GET("/rides/:id", h.get)
	router.PATCH("/rides/:id", h.update)
	router.DELETE("/rides/:id", h.delete)
	router.GET("/drivers/:id/rides", h.listByDriver)
}

func (h *RideHandler) publish(c *gin.Context) {
	var req rides.PublishInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ride, err := h.service.Publish(c.Request.Context(), CallerID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ride)
}

func (h *RideHandler) get(c *gin.Context) {
	ride, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *RideHandler) update(c *gin.Context) {
	var patch rides.DetailsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}

	ride, err := h.service.UpdateDetails(c.Request.Context(), c.Param("id"), CallerID(c), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

func (h *RideHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), CallerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RideHandler) listByDriver(c *gin.Context) {
	list, err := h.service.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": list})
}
