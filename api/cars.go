package api

import (
	"net/http"

	"github.com/Domenick1991/carpool/internal/service/cars"
	"github.com/gin-gonic/gin"
)

type CarHandler struct {
	service cars.CarUseCase
}

func NewCarHandler(service cars.CarUseCase) *CarHandler {
	return &CarHandler{service: service}
}

func (h *CarHandler) Register(router *gin.RouterGroup) {
	router.POST("/cars", h.register)
	router.GET("/cars/:id", h.get)
	router.PATCH("/cars/:id", h.update)
	router.DELETE("/cars/:id", h.delete)
	router.GET("/drivers/:id/cars", h.listByOwner)
}

func (h *CarHandler) register(c *gin.Context) {
	var req cars.CarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	car, err := h.service.Register(c.Request.Context(), CallerID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, car)
}

func (h *CarHandler) get(c *gin.Context) {
	car, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) update(c *gin.Context) {
	var patch cars.CarPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}

	car, err := h.service.Update(c.Request.Context(), c.Param("id"), CallerID(c), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), CallerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CarHandler) listByOwner(c *gin.Context) {
	list, err := h.service.ListByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": list})
}
