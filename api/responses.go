package api

import (
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/service/rides"
)

const dateLayout = "2006-01-02"

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

type userBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type passengerResponse struct {
	ID          string     `json:"id"`
	User        *userBrief `json:"user"`
	BookedSeats int        `json:"bookedSeats"`
	Status      string     `json:"status"`
	BookedAt    string     `json:"bookedAt"`
}

type reviewResponse struct {
	ID        string     `json:"id"`
	User      *userBrief `json:"user"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt string     `json:"createdAt"`
}

type rideResponse struct {
	ID             string              `json:"id"`
	Driver         *userBrief          `json:"driver"`
	From           string              `json:"from"`
	To             string              `json:"to"`
	DepartureDate  string              `json:"departureDate"`
	DepartureTime  string              `json:"departureTime"`
	TotalSeats     int                 `json:"totalSeats"`
	AvailableSeats int                 `json:"availableSeats"`
	PricePerSeat   float64             `json:"pricePerSeat"`
	Description    string              `json:"description,omitempty"`
	VehicleModel   string              `json:"vehicleModel,omitempty"`
	VehicleNumber  string              `json:"vehicleNumber,omitempty"`
	VehiclePhoto   string              `json:"vehiclePhoto,omitempty"`
	Status         string              `json:"status"`
	AverageRating  float64             `json:"averageRating"`
	Passengers     []passengerResponse `json:"passengers"`
	Reviews        []reviewResponse    `json:"reviews"`
	CreatedAt      string              `json:"createdAt"`
}

// bookingRideResponse is a ride seen from the booking passenger's side.
type bookingRideResponse struct {
	rideResponse
	UserBookingStatus string `json:"userBookingStatus"`
	UserBookedSeats   int    `json:"userBookedSeats"`
}

type nearbyRideResponse struct {
	rideResponse
	FromDistance float64 `json:"fromDistance"`
	ToDistance   float64 `json:"toDistance"`
}

type searchResponse struct {
	ExactMatches  []rideResponse       `json:"exactMatches"`
	NearbyMatches []nearbyRideResponse `json:"nearbyMatches"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toUserBrief(u *domain.User) *userBrief {
	if u == nil {
		return nil
	}
	return &userBrief{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

func toRideResponse(r *domain.Ride) rideResponse {
	resp := rideResponse{
		ID:             r.ID,
		Driver:         toUserBrief(r.Driver),
		From:           r.From,
		To:             r.To,
		DepartureDate:  r.DepartureDate.Format(dateLayout),
		DepartureTime:  r.DepartureTime,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats(),
		PricePerSeat:   r.PricePerSeat,
		Description:    r.Description,
		VehicleModel:   r.VehicleModel,
		VehicleNumber:  r.VehicleNumber,
		VehiclePhoto:   r.VehiclePhoto,
		Status:         string(r.Status),
		AverageRating:  r.AverageRating(),
		Passengers:     make([]passengerResponse, 0, len(r.Passengers)),
		Reviews:        make([]reviewResponse, 0, len(r.Reviews)),
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	for i := range r.Passengers {
		p := &r.Passengers[i]
		resp.Passengers = append(resp.Passengers, passengerResponse{
			ID:          p.ID,
			User:        toUserBrief(p.User),
			BookedSeats: p.BookedSeats,
			Status:      string(p.Status),
			BookedAt:    p.BookedAt.Format(time.RFC3339),
		})
	}
	for i := range r.Reviews {
		v := &r.Reviews[i]
		resp.Reviews = append(resp.Reviews, reviewResponse{
			ID:        v.ID,
			User:      toUserBrief(v.User),
			Rating:    v.Rating,
			Comment:   v.Comment,
			CreatedAt: v.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func toRideResponses(rs []domain.Ride) []rideResponse {
	out := make([]rideResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toRideResponse(&rs[i]))
	}
	return out
}

func toBookingRideResponse(r *domain.Ride, userID string) bookingRideResponse {
	resp := bookingRideResponse{rideResponse: toRideResponse(r)}
	if p := r.PassengerByUser(userID); p != nil {
		resp.UserBookingStatus = string(p.Status)
		resp.UserBookedSeats = p.BookedSeats
	}
	return resp
}

func toSearchResponse(result *rides.SearchResult) searchResponse {
	resp := searchResponse{
		ExactMatches:  toRideResponses(result.ExactMatches),
		NearbyMatches: make([]nearbyRideResponse, 0, len(result.NearbyMatches)),
	}
	for i := range result.NearbyMatches {
		m := &result.NearbyMatches[i]
		resp.NearbyMatches = append(resp.NearbyMatches, nearbyRideResponse{
			rideResponse: toRideResponse(&m.Ride),
			FromDistance: m.FromDistance,
			ToDistance:   m.ToDistance,
		})
	}
	return resp
}
