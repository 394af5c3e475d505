package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/carpool/internal/domain"
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
	router.POST("/", h.create)
	router.GET("/", RequireAdmin(), h.list)
	router.GET("/search", h.search)
	router.GET("/my-rides", h.myRides)
	router.GET("/my-bookings", h.myBookings)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.delete)
}

type createRideRequest struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DepartureDate string  `json:"departureDate"`
	DepartureTime string  `json:"departureTime"`
	TotalSeats    int     `json:"availableSeats"`
	PricePerSeat  float64 `json:"pricePerSeat"`
	Description   string  `json:"description"`
	VehicleModel  string  `json:"vehicleModel"`
	VehicleNumber string  `json:"vehicleNumber"`
	VehiclePhoto  string  `json:"vehiclePhoto"`
}

func (h *RideHandler) create(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ride, err := h.service.Create(c.Request.Context(), c.GetString(ctxUserID), rides.CreateRideInput{
		From:          req.From,
		To:            req.To,
		DepartureDate: req.DepartureDate,
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		PricePerSeat:  req.PricePerSeat,
		Description:   req.Description,
		VehicleModel:  req.VehicleModel,
		VehicleNumber: req.VehicleNumber,
		VehiclePhoto:  req.VehiclePhoto,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRideResponse(ride))
}

func (h *RideHandler) list(c *gin.Context) {
	all, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponses(all))
}

func (h *RideHandler) search(c *gin.Context) {
	input := rides.SearchInput{
		From: c.Query("from"),
		To:   c.Query("to"),
		Date: c.Query("date"),
	}
	if v := c.Query("minSeats"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minSeats must be an integer"})
			return
		}
		input.MinSeats = n
	}
	if v := c.Query("minPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minPrice must be a number"})
			return
		}
		input.MinPrice = f
	}
	if v := c.Query("maxPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice must be a number"})
			return
		}
		input.MaxPrice = f
	}

	result, err := h.service.Search(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSearchResponse(result))
}

func (h *RideHandler) myRides(c *gin.Context) {
	mine, err := h.service.MyRides(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponses(mine))
}

func (h *RideHandler) myBookings(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	booked, err := h.service.MyBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]bookingRideResponse, 0, len(booked))
	for i := range booked {
		out = append(out, toBookingRideResponse(&booked[i], userID))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RideHandler) get(c *gin.Context) {
	ride, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func (h *RideHandler) delete(c *gin.Context) {
	admin := c.GetString(ctxUserRole) == domain.RoleAdmin
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID), admin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ride deleted"})
}
