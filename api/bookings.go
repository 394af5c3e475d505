package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register attaches the booking lifecycle endpoints to the rides group.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/book", h.book)
	router.POST("/:id/accept", h.accept)
	router.POST("/:id/reject", h.reject)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/complete", h.complete)
	router.POST("/:id/review", h.review)
}

type bookRequest struct {
	Seats int `json:"seats"`
}

type decideRequest struct {
	PassengerID string `json:"passengerId"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *BookingHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Request(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID), req.Seats)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "booking request sent",
		"booking": gin.H{
			"id":          p.ID,
			"bookedSeats": p.BookedSeats,
			"status":      string(p.Status),
			"bookedAt":    p.BookedAt.Format(time.RFC3339),
		},
	})
}

func (h *BookingHandler) accept(c *gin.Context) {
	h.decide(c, true)
}

func (h *BookingHandler) reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *BookingHandler) decide(c *gin.Context, accept bool) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Decide(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID), req.PassengerID, accept)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "booking rejected"
	if accept {
		message = "booking accepted"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "status": string(p.Status)})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

func (h *BookingHandler) complete(c *gin.Context) {
	ride, err := h.service.Complete(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ride completed", "status": string(ride.Status)})
}

func (h *BookingHandler) review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "review submitted",
		"review": gin.H{
			"id":        review.ID,
			"rating":    review.Rating,
			"comment":   review.Comment,
			"createdAt": review.CreatedAt.Format(time.RFC3339),
		},
	})
}
