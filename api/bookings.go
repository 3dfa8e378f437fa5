package api

import (
	"net/http"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createRequestBody struct {
	Seats int    `json:"seats"`
	Notes string `json:"notes"`
}

type updateRequestBody struct {
	Action string `json:"action"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/rides/:id/requests", h.create)
	router.GET("/rides/:id/requests", h.listByRide)
	router.GET("/requests/:id", h.get)
	router.PUT("/requests/:id", h.update)
	router.DELETE("/requests/:id", h.delete)
	router.GET("/drivers/:id/requests", h.listByDriver)
	router.GET("/riders/:id/requests", h.listByRider)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), booking.CreateInput{
		RideID:  c.Param("id"),
		RiderID: CallerID(c),
		Seats:   req.Seats,
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) update(c *gin.Context) {
	var req updateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, id, caller := c.Request.Context(), c.Param("id"), CallerID(c)
	var (
		updated *domain.BookingRequest
		err     error
	)
	switch domain.UpdateType(req.Action) {
	case domain.UpdateAccept:
		updated, err = h.service.Accept(ctx, id, caller)
	case domain.UpdateReject:
		updated, err = h.service.Reject(ctx, id, caller)
	case domain.UpdateCancel:
		updated, err = h.service.Cancel(ctx, id, caller)
	default:
		badRequest(c, "action must be accept, reject or cancel")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) get(c *gin.Context) {
	req, err := h.service.Get(c.Request.Context(), c.Param("id"), CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *BookingHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), CallerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) listByRide(c *gin.Context) {
	list, err := h.service.ListByRide(c.Request.Context(), c.Param("id"), CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *BookingHandler) listByDriver(c *gin.Context) {
	driverID := c.Param("id")
	if !requireSelf(c, driverID) {
		return
	}
	list, err := h.service.ListByDriver(c.Request.Context(), driverID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *BookingHandler) listByRider(c *gin.Context) {
	riderID := c.Param("id")
	if !requireSelf(c, riderID) {
		return
	}
	list, err := h.service.ListByRider(c.Request.Context(), riderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}
