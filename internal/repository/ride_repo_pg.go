package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StaleRequest is a pending booking request left on a ride whose departure
// has already passed, as returned by the sweep.
type StaleRequest struct {
	PassengerID string
	RideID      string
	UserID      string
	From        string
	To          string
}

type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	List(ctx context.Context) ([]domain.Ride, error)
	ListActive(ctx context.Context) ([]domain.Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error)
	ListByPassenger(ctx context.Context, userID string) ([]domain.Ride, error)
	Delete(ctx context.Context, rideID, driverID string, force bool) error
	RequestBooking(ctx context.Context, rideID, userID string, seats int) (*domain.Passenger, error)
	DecideBooking(ctx context.Context, rideID, driverID, passengerID string, accept bool) (*domain.Passenger, error)
	CancelBooking(ctx context.Context, rideID, userID string) error
	Complete(ctx context.Context, rideID, driverID string) ([]domain.Passenger, error)
	AddReview(ctx context.Context, rideID, userID string, rating int, comment string) (*domain.Review, error)
	RejectStaleRequests(ctx context.Context, deadline time.Time) ([]StaleRequest, error)
}

type PGRideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &PGRideRepository{db: db}
}

const rideColumns = `id, driver_id, from_location, to_location, departure_date, departure_time, total_seats, price_per_seat, description, vehicle_model, vehicle_number, vehicle_photo, status, created_at, updated_at`

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var r domain.Ride
	if err := row.Scan(&r.ID, &r.DriverID, &r.From, &r.To, &r.DepartureDate, &r.DepartureTime, &r.TotalSeats, &r.PricePerSeat, &r.Description, &r.VehicleModel, &r.VehicleNumber, &r.VehiclePhoto, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError("ride not found")
		}
		return nil, err
	}
	return &r, nil
}

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if ride.ID == "" {
		ride.ID = uuid.NewString()
	}
	ride.Status = domain.RideStatusActive
	return r.db.QueryRow(ctx, `INSERT INTO rides (id, driver_id, from_location, to_location, departure_date, departure_time, total_seats, price_per_seat, description, vehicle_model, vehicle_number, vehicle_photo, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		ride.ID, ride.DriverID, ride.From, ride.To, ride.DepartureDate, ride.DepartureTime, ride.TotalSeats, ride.PricePerSeat, ride.Description, ride.VehicleModel, ride.VehicleNumber, ride.VehiclePhoto, ride.Status).
		Scan(&ride.CreatedAt, &ride.UpdatedAt)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	ride, err := scanRide(r.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	rides := []domain.Ride{*ride}
	if err := r.loadChildren(ctx, rides); err != nil {
		return nil, err
	}
	return &rides[0], nil
}

func (r *PGRideRepository) List(ctx context.Context) ([]domain.Ride, error) {
	return r.queryRides(ctx, `SELECT `+rideColumns+` FROM rides ORDER BY departure_date, departure_time`)
}

func (r *PGRideRepository) ListActive(ctx context.Context) ([]domain.Ride, error) {
	return r.queryRides(ctx, `SELECT `+rideColumns+` FROM rides WHERE status=$1 ORDER BY departure_date, departure_time`, domain.RideStatusActive)
}

func (r *PGRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	return r.queryRides(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id=$1 ORDER BY departure_date, departure_time`, driverID)
}

func (r *PGRideRepository) ListByPassenger(ctx context.Context, userID string) ([]domain.Ride, error) {
	return r.queryRides(ctx, `SELECT `+rideColumns+` FROM rides WHERE id IN (SELECT ride_id FROM ride_passengers WHERE user_id=$1) ORDER BY departure_date, departure_time`, userID)
}

func (r *PGRideRepository) queryRides(ctx context.Context, sql string, args ...any) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rides := make([]domain.Ride, 0)
	for rows.Next() {
		var ride domain.Ride
		if err := rows.Scan(&ride.ID, &ride.DriverID, &ride.From, &ride.To, &ride.DepartureDate, &ride.DepartureTime, &ride.TotalSeats, &ride.PricePerSeat, &ride.Description, &ride.VehicleModel, &ride.VehicleNumber, &ride.VehiclePhoto, &ride.Status, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// loadChildren attaches passenger and review entries (with their users) to
// the given rides in one query per relation.
func (r *PGRideRepository) loadChildren(ctx context.Context, rides []domain.Ride) error {
	if len(rides) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rides))
	byID := make(map[string]*domain.Ride, len(rides))
	for i := range rides {
		ids = append(ids, rides[i].ID)
		byID[rides[i].ID] = &rides[i]
	}

	rows, err := r.db.Query(ctx, `SELECT p.id, p.ride_id, p.user_id, p.booked_seats, p.status, p.booked_at, u.name, u.email, u.phone
		FROM ride_passengers p JOIN users u ON u.id = p.user_id
		WHERE p.ride_id = ANY($1) ORDER BY p.booked_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Passenger
		var u domain.User
		if err := rows.Scan(&p.ID, &p.RideID, &p.UserID, &p.BookedSeats, &p.Status, &p.BookedAt, &u.Name, &u.Email, &u.Phone); err != nil {
			return err
		}
		u.ID = p.UserID
		p.User = &u
		ride := byID[p.RideID]
		ride.Passengers = append(ride.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `SELECT v.id, v.ride_id, v.user_id, v.rating, v.comment, v.created_at, u.name
		FROM ride_reviews v JOIN users u ON u.id = v.user_id
		WHERE v.ride_id = ANY($1) ORDER BY v.created_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v domain.Review
		var u domain.User
		if err := rows.Scan(&v.ID, &v.RideID, &v.UserID, &v.Rating, &v.Comment, &v.CreatedAt, &u.Name); err != nil {
			return err
		}
		u.ID = v.UserID
		v.User = &u
		ride := byID[v.RideID]
		ride.Reviews = append(ride.Reviews, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	driverIDs := make([]string, 0, len(rides))
	for i := range rides {
		driverIDs = append(driverIDs, rides[i].DriverID)
	}
	rows, err = r.db.Query(ctx, `SELECT id, name, email, phone FROM users WHERE id = ANY($1)`, driverIDs)
	if err != nil {
		return err
	}
	defer rows.Close()
	drivers := make(map[string]*domain.User)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone); err != nil {
			return err
		}
		drivers[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range rides {
		rides[i].Driver = drivers[rides[i].DriverID]
	}
	return nil
}

// lockRide reads the ride row under FOR UPDATE and loads its passenger
// entries, so every booking and lifecycle transition is a serialized
// read-modify-write against a consistent seat ledger. The transition rules
// themselves live on domain.Ride.
func lockRide(ctx context.Context, tx pgx.Tx, rideID string) (*domain.Ride, error) {
	ride, err := scanRide(tx.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1 FOR UPDATE`, rideID))
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, ride_id, user_id, booked_seats, status, booked_at FROM ride_passengers WHERE ride_id=$1 ORDER BY booked_at`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.RideID, &p.UserID, &p.BookedSeats, &p.Status, &p.BookedAt); err != nil {
			return nil, err
		}
		ride.Passengers = append(ride.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ride, nil
}

func (r *PGRideRepository) RequestBooking(ctx context.Context, rideID, userID string, seats int) (*domain.Passenger, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ride, err := lockRide(ctx, tx, rideID)
	if err != nil {
		return nil, err
	}
	if err := ride.ValidateBookingRequest(userID, seats); err != nil {
		return nil, err
	}

	p := &domain.Passenger{
		ID:          uuid.NewString(),
		RideID:      rideID,
		UserID:      userID,
		BookedSeats: seats,
		Status:      domain.BookingStatusPending,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO ride_passengers (id, ride_id, user_id, booked_seats, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING booked_at`,
		p.ID, p.RideID, p.UserID, p.BookedSeats, p.Status).Scan(&p.BookedAt); err != nil {
		return nil, err
	}
	return p, tx.Commit(ctx)
}

func (r *PGRideRepository) DecideBooking(ctx context.Context, rideID, driverID, passengerID string, accept bool) (*domain.Passenger, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ride, err := lockRide(ctx, tx, rideID)
	if err != nil {
		return nil, err
	}

	var target *domain.Passenger
	for i := range ride.Passengers {
		if ride.Passengers[i].ID == passengerID {
			target = &ride.Passengers[i]
			break
		}
	}
	if target == nil {
		return nil, domain.NotFoundError("booking request not found")
	}
	// Decision rules run under the ride lock, so a decision racing a new
	// request cannot oversell the ride.
	if err := ride.ValidateDecision(driverID, target, accept); err != nil {
		return nil, err
	}

	status := domain.BookingStatusRejected
	if accept {
		status = domain.BookingStatusAccepted
	}
	if _, err := tx.Exec(ctx, `UPDATE ride_passengers SET status=$1 WHERE id=$2`, status, target.ID); err != nil {
		return nil, err
	}
	p := *target
	p.Status = status
	return &p, tx.Commit(ctx)
}

func (r *PGRideRepository) CancelBooking(ctx context.Context, rideID, userID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ride, err := lockRide(ctx, tx, rideID)
	if err != nil {
		return err
	}
	p, err := ride.CancellableEntry(userID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ride_passengers WHERE id=$1`, p.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRideRepository) Complete(ctx context.Context, rideID, driverID string) ([]domain.Passenger, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ride, err := lockRide(ctx, tx, rideID)
	if err != nil {
		return nil, err
	}
	if err := ride.ValidateComplete(driverID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE rides SET status=$1, updated_at=now() WHERE id=$2`, domain.RideStatusCompleted, rideID); err != nil {
		return nil, err
	}
	return ride.AcceptedPassengers(), tx.Commit(ctx)
}

func (r *PGRideRepository) Delete(ctx context.Context, rideID, driverID string, force bool) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ride, err := lockRide(ctx, tx, rideID)
	if err != nil {
		return err
	}
	if !force {
		if err := ride.ValidateDelete(driverID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rides WHERE id=$1`, rideID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRideRepository) AddReview(ctx context.Context, rideID, userID string, rating int, comment string) (*domain.Review, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ride, err := lockRide(ctx, tx, rideID)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, user_id FROM ride_reviews WHERE ride_id=$1`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v domain.Review
		if err := rows.Scan(&v.ID, &v.UserID); err != nil {
			return nil, err
		}
		ride.Reviews = append(ride.Reviews, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := ride.ValidateReview(userID); err != nil {
		return nil, err
	}

	v := &domain.Review{
		ID:      uuid.NewString(),
		RideID:  rideID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO ride_reviews (id, ride_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		v.ID, v.RideID, v.UserID, v.Rating, v.Comment).Scan(&v.CreatedAt); err != nil {
		return nil, err
	}
	return v, tx.Commit(ctx)
}

func (r *PGRideRepository) RejectStaleRequests(ctx context.Context, deadline time.Time) ([]StaleRequest, error) {
	rows, err := r.db.Query(ctx, `UPDATE ride_passengers p SET status=$1
		FROM rides r
		WHERE p.ride_id = r.id AND p.status = $2 AND r.departure_date < $3
		RETURNING p.id, p.ride_id, p.user_id, r.from_location, r.to_location`,
		domain.BookingStatusRejected, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []StaleRequest
	for rows.Next() {
		var s StaleRequest
		if err := rows.Scan(&s.PassengerID, &s.RideID, &s.UserID, &s.From, &s.To); err != nil {
			return nil, err
		}
		stale = append(stale, s)
	}
	return stale, rows.Err()
}

var _ RideRepository = (*PGRideRepository)(nil)
