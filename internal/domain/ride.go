package domain

import "time"

type RideStatus string

const (
	RideStatusActive    RideStatus = "active"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
)

type Ride struct {
	ID            string
	DriverID      string
	Driver        *User
	From          string
	To            string
	DepartureDate time.Time
	DepartureTime string
	TotalSeats    int
	PricePerSeat  float64
	Description   string
	VehicleModel  string
	VehicleNumber string
	VehiclePhoto  string
	Status        RideStatus
	Passengers    []Passenger
	Reviews       []Review
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Passenger struct {
	ID          string
	RideID      string
	UserID      string
	User        *User
	BookedSeats int
	Status      BookingStatus
	BookedAt    time.Time
}

type Review struct {
	ID        string
	RideID    string
	UserID    string
	User      *User
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// AcceptedSeats is the running total of seats across accepted passenger
// entries. It is always derived, never stored.
func (r *Ride) AcceptedSeats() int {
	sum := 0
	for _, p := range r.Passengers {
		if p.Status == BookingStatusAccepted {
			sum += p.BookedSeats
		}
	}
	return sum
}

func (r *Ride) AvailableSeats() int {
	return r.TotalSeats - r.AcceptedSeats()
}

// PassengerByUser returns the user's booking entry. A rejected entry is
// returned only when the user has no other one, so rebooking after a
// rejection shadows the old entry.
func (r *Ride) PassengerByUser(userID string) *Passenger {
	var rejected *Passenger
	for i := range r.Passengers {
		p := &r.Passengers[i]
		if p.UserID != userID {
			continue
		}
		if p.Status != BookingStatusRejected {
			return p
		}
		if rejected == nil || p.BookedAt.After(rejected.BookedAt) {
			rejected = p
		}
	}
	return rejected
}

// AcceptedPassengers returns the entries holding seats on the ride.
func (r *Ride) AcceptedPassengers() []Passenger {
	var out []Passenger
	for _, p := range r.Passengers {
		if p.Status == BookingStatusAccepted {
			out = append(out, p)
		}
	}
	return out
}

func (r *Ride) HasReviewBy(userID string) bool {
	for _, rv := range r.Reviews {
		if rv.UserID == userID {
			return true
		}
	}
	return false
}

// AverageRating is the mean of review ratings, zero when there are none.
func (r *Ride) AverageRating() float64 {
	if len(r.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, rv := range r.Reviews {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(r.Reviews))
}

// ValidateBookingRequest applies the rules for a new seat request. Passengers
// must be loaded; the capacity check counts accepted entries only.
func (r *Ride) ValidateBookingRequest(userID string, seats int) error {
	if r.Status != RideStatusActive {
		return StateError("ride is not active")
	}
	if r.DriverID == userID {
		return ValidationError("driver cannot book own ride")
	}
	if p := r.PassengerByUser(userID); p != nil && p.Status != BookingStatusRejected {
		return ConflictError("booking request already exists for this ride")
	}
	if seats > r.AvailableSeats() {
		return CapacityError("only %d seats available", r.AvailableSeats())
	}
	return nil
}

// ValidateDecision checks that the driver may move the entry out of pending.
// Capacity is re-checked for an accept, since seats may have been committed
// since the request was made.
func (r *Ride) ValidateDecision(driverID string, p *Passenger, accept bool) error {
	if r.DriverID != driverID {
		return AuthorizationError("only the ride driver can decide booking requests")
	}
	if p.Status != BookingStatusPending {
		return StateError("booking request is already %s", p.Status)
	}
	if accept && r.AcceptedSeats()+p.BookedSeats > r.TotalSeats {
		return CapacityError("accepting would exceed the %d offered seats", r.TotalSeats)
	}
	return nil
}

// CancellableEntry returns the entry a cancel targets, or why there is none.
func (r *Ride) CancellableEntry(userID string) (*Passenger, error) {
	p := r.PassengerByUser(userID)
	if p == nil {
		return nil, NotFoundError("booking request not found")
	}
	if p.Status != BookingStatusPending {
		return nil, StateError("only pending booking requests can be cancelled")
	}
	return p, nil
}

func (r *Ride) ValidateComplete(driverID string) error {
	if r.DriverID != driverID {
		return AuthorizationError("only the ride driver can complete the ride")
	}
	if r.Status != RideStatusActive {
		return StateError("ride is not active")
	}
	return nil
}

// ValidateDelete blocks a driver delete once seats are committed.
func (r *Ride) ValidateDelete(driverID string) error {
	if r.DriverID != driverID {
		return AuthorizationError("only the ride driver can delete the ride")
	}
	for _, p := range r.Passengers {
		if p.Status == BookingStatusAccepted {
			return ConflictError("ride has accepted passengers")
		}
	}
	return nil
}

// ValidateReview gates reviews to accepted passengers of a completed ride,
// once each.
func (r *Ride) ValidateReview(userID string) error {
	if r.Status != RideStatusCompleted {
		return StateError("ride is not completed")
	}
	p := r.PassengerByUser(userID)
	if p == nil || p.Status != BookingStatusAccepted {
		return AuthorizationError("only accepted passengers can review the ride")
	}
	if r.HasReviewBy(userID) {
		return ConflictError("ride already reviewed")
	}
	return nil
}
