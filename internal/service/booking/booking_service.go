package booking

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/repository"
)

type BookingUseCase interface {
	Request(ctx context.Context, rideID, userID string, seats int) (*domain.Passenger, error)
	Decide(ctx context.Context, rideID, driverID, passengerID string, accept bool) (*domain.Passenger, error)
	Cancel(ctx context.Context, rideID, userID string) error
	Complete(ctx context.Context, rideID, driverID string) (*domain.Ride, error)
	SubmitReview(ctx context.Context, rideID, userID string, rating int, comment string) (*domain.Review, error)
}

// Notifier fans a notification out to one user. Implementations never
// propagate failures back into the booking transition.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ domain.NotificationType, message string)
}

type RidesCache interface {
	InvalidateActiveRides(ctx context.Context) error
}

type Service struct {
	rides    repository.RideRepository
	users    repository.UserRepository
	notifier Notifier
	cache    RidesCache
}

func NewService(rides repository.RideRepository, users repository.UserRepository, notifier Notifier, cache RidesCache) *Service {
	return &Service{rides: rides, users: users, notifier: notifier, cache: cache}
}

func (s *Service) Request(ctx context.Context, rideID, userID string, seats int) (*domain.Passenger, error) {
	if seats < 1 {
		return nil, domain.ValidationError("seats must be at least 1")
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	p, err := s.rides.RequestBooking(ctx, rideID, userID, seats)
	if err != nil {
		return nil, err
	}

	name := "A passenger"
	if u, err := s.users.GetByID(ctx, userID); err == nil {
		name = u.Name
	}
	s.notifier.Notify(ctx, ride.DriverID, domain.NotificationBookingRequest,
		fmt.Sprintf("%s requested %d seat(s) on your ride %s → %s", name, seats, ride.From, ride.To))

	return p, nil
}

func (s *Service) Decide(ctx context.Context, rideID, driverID, passengerID string, accept bool) (*domain.Passenger, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	p, err := s.rides.DecideBooking(ctx, rideID, driverID, passengerID, accept)
	if err != nil {
		return nil, err
	}

	if accept {
		s.notifier.Notify(ctx, p.UserID, domain.NotificationBookingAccepted,
			fmt.Sprintf("Your booking for the ride %s → %s was accepted", ride.From, ride.To))
		s.invalidate(ctx)
	} else {
		s.notifier.Notify(ctx, p.UserID, domain.NotificationBookingRejected,
			fmt.Sprintf("Your booking for the ride %s → %s was declined", ride.From, ride.To))
	}
	return p, nil
}

func (s *Service) Cancel(ctx context.Context, rideID, userID string) error {
	return s.rides.CancelBooking(ctx, rideID, userID)
}

func (s *Service) Complete(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	accepted, err := s.rides.Complete(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	for _, p := range accepted {
		s.notifier.Notify(ctx, p.UserID, domain.NotificationRideCompleted,
			fmt.Sprintf("Your ride %s → %s is completed. You can now leave a review", ride.From, ride.To))
	}
	s.invalidate(ctx)

	ride.Status = domain.RideStatusCompleted
	return ride, nil
}

func (s *Service) SubmitReview(ctx context.Context, rideID, userID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ValidationError("rating must be between 1 and 5")
	}
	return s.rides.AddReview(ctx, rideID, userID, rating, comment)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActiveRides(ctx); err != nil {
		log.Printf("WARNING: failed to invalidate ride cache: %v", err)
	}
}

var _ BookingUseCase = (*Service)(nil)
