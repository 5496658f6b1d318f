package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// GetUser returns a user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) ListDriversPendingReview(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.User
	for _, u := range m.users {
		if u.Role == domain.RoleDriver && u.Status == domain.UserStatusPendingProfileReview {
			copy := *u
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginate(result, offset, limit), nil
}

// ──────────────────────────────────────────────
// MOCK CAR REPOSITORY
// ──────────────────────────────────────────────

// MockCarRepository is a mock implementation of CarRepository.
type MockCarRepository struct {
	mu   sync.RWMutex
	cars map[string]*domain.Car

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32
	DeleteCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockCarRepository creates a new mock car repository.
func NewMockCarRepository() *MockCarRepository {
	return &MockCarRepository{
		cars: make(map[string]*domain.Car),
	}
}

// AddCar adds a car to the mock repository.
func (m *MockCarRepository) AddCar(car *domain.Car) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars[car.ID] = car
}

// GetCar returns a car for test assertions.
func (m *MockCarRepository) GetCar(id string) *domain.Car {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cars[id]
}

func (m *MockCarRepository) Create(ctx context.Context, car *domain.Car) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *car
	m.cars[car.ID] = &copy
	return nil
}

func (m *MockCarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	car, ok := m.cars[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *car
	return &copy, nil
}

func (m *MockCarRepository) GetByLicensePlate(ctx context.Context, plate string) (*domain.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cars {
		if c.LicensePlate == plate {
			copy := *c
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCarRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Car
	for _, c := range m.cars {
		if c.DriverID == driverID {
			copy := *c
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockCarRepository) Update(ctx context.Context, car *domain.Car) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cars[car.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *car
	m.cars[car.ID] = &copy
	return nil
}

func (m *MockCarRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cars[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.cars, id)
	return nil
}

func (m *MockCarRepository) ClearDefault(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cars {
		if c.DriverID == driverID {
			c.IsDefault = false
		}
	}
	return nil
}

func (m *MockCarRepository) ListPendingVerification(ctx context.Context, offset, limit int) ([]*domain.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Car
	for _, c := range m.cars {
		if c.VerificationStatus == domain.CarStatusPendingVerification {
			copy := *c
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginate(result, offset, limit), nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount        int32
	UpdateCallCount        int32
	UpdateDetailsCallCount int32

	// Error injection
	CreateError        error
	UpdateError        error
	UpdateDetailsError error

	// BeforeUpdateDetails, when set, runs just before the detail write
	// so tests can interleave a competing seat mutation.
	BeforeUpdateDetails func()
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// GetTrip returns a trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) UpdateDetails(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateDetailsCallCount, 1)
	if m.UpdateDetailsError != nil {
		return m.UpdateDetailsError
	}
	if m.BeforeUpdateDetails != nil {
		m.BeforeUpdateDetails()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.FromLocation = trip.FromLocation
	stored.ToLocation = trip.ToLocation
	stored.DepartureTime = trip.DepartureTime
	stored.EstimatedArrival = trip.EstimatedArrival
	stored.PricePerSeat = trip.PricePerSeat
	stored.AdditionalInfo = trip.AdditionalInfo
	return nil
}

func (m *MockTripRepository) Search(ctx context.Context, filter repository.TripSearch) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seats := filter.SeatsNeeded
	if seats < 1 {
		seats = 1
	}
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.Status != domain.TripStatusScheduled || t.AvailableSeats < seats {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime.Before(result[j].DepartureTime)
	})
	return paginate(result, filter.Offset, filter.Limit), nil
}

func (m *MockTripRepository) GetByDriverID(ctx context.Context, driverID string, offset, limit int) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.DriverID == driverID {
			copy := *t
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime.After(result[j].DepartureTime)
	})
	return paginate(result, offset, limit), nil
}

func (m *MockTripRepository) ListAll(ctx context.Context, offset, limit int) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		copy := *t
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime.After(result[j].DepartureTime)
	})
	return paginate(result, offset, limit), nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// GetBooking returns a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) GetByIDAndPassenger(ctx context.Context, id, passengerID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok || booking.PassengerID != passengerID {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) GetByPassengerID(ctx context.Context, passengerID string, offset, limit int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].BookedAt.After(result[j].BookedAt)
	})
	return paginate(result, offset, limit), nil
}

func (m *MockBookingRepository) GetConfirmedByTripAndPassenger(ctx context.Context, tripID, passengerID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.TripID == tripID && b.PassengerID == passengerID && b.Status == domain.BookingStatusConfirmed {
			copy := *b
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockBookingRepository) GetConfirmedByTripID(ctx context.Context, tripID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.TripID == tripID && b.Status == domain.BookingStatusConfirmed {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].BookedAt.Before(result[j].BookedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) CountConfirmedSeats(ctx context.Context, tripID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, b := range m.bookings {
		if b.TripID == tripID && b.Status == domain.BookingStatusConfirmed {
			total += b.SeatsBooked
		}
	}
	return total, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) CancelConfirmedByTripID(ctx context.Context, tripID string, status domain.BookingStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	affected := 0
	for _, b := range m.bookings {
		if b.TripID == tripID && b.Status == domain.BookingStatusConfirmed {
			b.Status = status
			affected++
		}
	}
	return affected, nil
}

// ──────────────────────────────────────────────
// MOCK OTP REPOSITORY
// ──────────────────────────────────────────────

// MockOTPRepository is a mock implementation of OTPRepository.
type MockOTPRepository struct {
	mu     sync.RWMutex
	nextID int64
	otps   map[int64]*domain.OTP

	// Counters for verification
	CreateCallCount     int32
	InvalidateCallCount int32
}

// NewMockOTPRepository creates a new mock OTP repository.
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{
		otps: make(map[int64]*domain.OTP),
	}
}

// LastCode returns the most recently stored code for a phone number.
func (m *MockOTPRepository) LastCode(phone string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *domain.OTP
	for _, o := range m.otps {
		if o.PhoneNumber == phone && (last == nil || o.ID > last.ID) {
			last = o
		}
	}
	if last == nil {
		return ""
	}
	return last.Code
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *domain.OTP) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	otp.ID = m.nextID
	copy := *otp
	m.otps[otp.ID] = &copy
	return nil
}

func (m *MockOTPRepository) GetValid(ctx context.Context, phone, code string) (*domain.OTP, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.otps {
		if o.PhoneNumber == phone && o.Code == code && !o.Used {
			copy := *o
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockOTPRepository) MarkUsed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	otp, ok := m.otps[id]
	if !ok {
		return repository.ErrNotFound
	}
	otp.Used = true
	return nil
}

func (m *MockOTPRepository) InvalidateActive(ctx context.Context, phone string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.otps {
		if o.PhoneNumber == phone {
			o.Used = true
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRIP CACHE
// ──────────────────────────────────────────────

// MockTripCache is an in-memory stand-in for the Redis trip cache.
type MockTripCache struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockTripCache creates a new mock trip cache.
func NewMockTripCache() *MockTripCache {
	return &MockTripCache{
		trips: make(map[string]*domain.Trip),
	}
}

func (m *MockTripCache) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, nil
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripCache) SetTrip(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripCache) InvalidateTrip(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, tripID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK OTP THROTTLE
// ──────────────────────────────────────────────

// MockOTPThrottle is a mock implementation of service.OTPThrottle.
type MockOTPThrottle struct {
	// Denied makes every Allow call report the number as throttled.
	Denied bool

	// Error injection
	AllowError error

	AllowCallCount int32
}

// NewMockOTPThrottle creates a new mock throttle that allows everything.
func NewMockOTPThrottle() *MockOTPThrottle {
	return &MockOTPThrottle{}
}

func (m *MockOTPThrottle) Allow(ctx context.Context, phoneNumber string) (bool, error) {
	atomic.AddInt32(&m.AllowCallCount, 1)
	if m.AllowError != nil {
		return false, m.AllowError
	}
	return !m.Denied, nil
}

// ──────────────────────────────────────────────
// MOCK SMS SENDER
// ──────────────────────────────────────────────

// MockSMSSender records sent messages for test assertions.
type MockSMSSender struct {
	mu       sync.Mutex
	messages []string

	// Error injection
	SendError error

	SendCallCount int32
}

// NewMockSMSSender creates a new mock SMS sender.
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

func (m *MockSMSSender) Send(ctx context.Context, phoneNumber, message string) error {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

// Messages returns the sent messages.
func (m *MockSMSSender) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
