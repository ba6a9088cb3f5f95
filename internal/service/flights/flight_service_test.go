package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Save(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) UpdateAvailableSeats(ctx context.Context, id int64, expected, next int) error {
	return m.Called(ctx, id, expected, next).Error(0)
}

func (m *MockFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockFlightRepository) Search(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) UpdateDetails(ctx context.Context, flight *domain.Flight) error {
	return m.Called(ctx, flight).Error(0)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func sampleFlights() []domain.Flight {
	return []domain.Flight{
		{
			ID:             4,
			FlightNumber:   "SU1234",
			FromAirport:    "SVO",
			ToAirport:      "LED",
			DepartureTime:  time.Now(),
			ArrivalTime:    time.Now().Add(time.Hour),
			TotalSeats:     150,
			AvailableSeats: 149,
			PriceCents:     500000,
			Status:         domain.FlightStatusScheduled,
		},
	}
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()
	flights := sampleFlights()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()
	flights := sampleFlights()

	mockCache.On("GetFlights", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
	mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything)
}

func TestFlightService_List_CacheErrorFallsBackToStorage(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()
	flights := sampleFlights()

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), errors.New("cache error")).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(errors.New("cache error")).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()
	expectedErr := errors.New("database error")

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("List", ctx).Return([]domain.Flight{}, expectedErr).Once()

	result, err := service.List(ctx)

	assert.Nil(t, result)
	assert.Equal(t, expectedErr, err)
	mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything)
}

func TestFlightService_List_WithoutCache(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil)
	ctx := context.Background()
	flights := sampleFlights()

	mockRepo.On("List", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, flights, result)
}

func TestFlightService_GetByNumber(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil)
	ctx := context.Background()
	flight := &sampleFlights()[0]

	mockRepo.On("GetByNumber", ctx, "SU1234").Return(flight, nil).Once()
	mockRepo.On("GetByNumber", ctx, "XX0000").Return(nil, domain.ErrNotFound).Once()

	got, err := service.GetByNumber(ctx, "  SU1234 ")
	require.NoError(t, err)
	assert.Equal(t, flight, got)

	_, err = service.GetByNumber(ctx, "XX0000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.GetByNumber(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFlightService_UpdateStatus_ReopensCompletedFlight(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(4)).Return(&domain.Flight{ID: 4, FlightNumber: "SU1234", Status: domain.FlightStatusCompleted}, nil).Once()
	mockRepo.On("UpdateStatus", ctx, int64(4), domain.FlightStatusScheduled).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	got, err := service.UpdateStatus(ctx, 4, domain.FlightStatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusScheduled, got.Status)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_UpdateStatus_Rejections(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil)
	ctx := context.Background()

	_, err := service.UpdateStatus(ctx, 4, domain.FlightStatus("DELAYED"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	mockRepo.On("GetByID", ctx, int64(5)).Return(nil, domain.ErrNotFound).Once()
	_, err = service.UpdateStatus(ctx, 5, domain.FlightStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	mockRepo.On("GetByID", ctx, int64(6)).Return(&domain.Flight{ID: 6, Status: domain.FlightStatusCancelled}, nil).Once()
	got, err := service.UpdateStatus(ctx, 6, domain.FlightStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusCancelled, got.Status)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Search(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()
	flights := sampleFlights()
	day := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	mockRepo.On("Search", ctx, repository.FlightFilter{Origin: "SVO", Destination: "led", Date: day}).Return(flights, nil).Once()
	got, err := service.Search(ctx, repository.FlightFilter{Origin: " SVO ", Destination: "led", Date: day})
	require.NoError(t, err)
	assert.Equal(t, flights, got)

	mockCache.On("GetFlights", ctx).Return(flights, nil).Once()
	got, err = service.Search(ctx, repository.FlightFilter{Airline: "  "})
	require.NoError(t, err)
	assert.Equal(t, flights, got)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func validSchedule() ScheduleInput {
	dep := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	return ScheduleInput{Airline: " Aeroflot ", FromAirport: "svo", ToAirport: "led", DepartureTime: dep, ArrivalTime: dep.Add(90 * time.Minute), PriceCents: 15000}
}

func TestFlightService_Create(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockRepo.On("Save", ctx, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.FlightNumber == "SU10" && f.TotalSeats == 120 && f.AvailableSeats == 120 &&
			f.Status == domain.FlightStatusScheduled && f.FromAirport == "SVO" && f.Airline == "Aeroflot"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Flight).ID = 11
	}).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	got, err := service.Create(ctx, CreateFlightInput{FlightNumber: " su10", TotalSeats: 120, ScheduleInput: validSchedule()})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, "SVO -> LED", got.Route())
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_Create_DuplicateNumber(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockRepo.On("Save", ctx, mock.Anything).Return(domain.ErrConflict).Once()

	_, err := service.Create(ctx, CreateFlightInput{FlightNumber: "SU10", TotalSeats: 1, ScheduleInput: validSchedule()})
	assert.ErrorIs(t, err, domain.ErrConflict)
	mockCache.AssertNotCalled(t, "InvalidateFlights", mock.Anything)
}

func TestFlightService_Create_Rejections(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, nil, nil)

	testCases := []struct {
		name  string
		input func(*CreateFlightInput)
	}{
		{name: "missing number", input: func(in *CreateFlightInput) { in.FlightNumber = " " }},
		{name: "no seats", input: func(in *CreateFlightInput) { in.TotalSeats = 0 }},
		{name: "missing origin", input: func(in *CreateFlightInput) { in.FromAirport = "" }},
		{name: "same airports", input: func(in *CreateFlightInput) { in.ToAirport = "SVO" }},
		{name: "arrives before departure", input: func(in *CreateFlightInput) { in.ArrivalTime = in.DepartureTime }},
		{name: "negative price", input: func(in *CreateFlightInput) { in.PriceCents = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := CreateFlightInput{FlightNumber: "SU10", TotalSeats: 10, ScheduleInput: validSchedule()}
			tc.input(&input)
			_, err := service.Create(context.Background(), input)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestFlightService_Update(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil)
	ctx := context.Background()
	current := &domain.Flight{ID: 4, FlightNumber: "SU1234", FromAirport: "SVO", ToAirport: "AER", TotalSeats: 150, AvailableSeats: 12, PriceCents: 9000}

	mockRepo.On("GetByID", ctx, int64(4)).Return(current, nil).Once()
	mockRepo.On("UpdateDetails", ctx, current).Return(nil).Once()
	mockRepo.On("GetByID", ctx, int64(5)).Return(nil, domain.ErrNotFound).Once()

	got, err := service.Update(ctx, 4, validSchedule())
	require.NoError(t, err)
	assert.Equal(t, "LED", got.ToAirport)
	assert.Equal(t, int64(15000), got.PriceCents)
	assert.Equal(t, 12, got.AvailableSeats)

	_, err = service.Update(ctx, 5, validSchedule())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Delete(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache, nil)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(4)).Return(nil).Once()
	mockRepo.On("Delete", ctx, int64(5)).Return(domain.ErrConflict).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	assert.NoError(t, service.Delete(ctx, 4))
	assert.ErrorIs(t, service.Delete(ctx, 5), domain.ErrConflict)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}
