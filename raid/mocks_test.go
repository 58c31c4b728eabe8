package raid

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"api/domain"
)

// --- WebsocketConnection ---

type MockWebsocketConnection struct {
	mock.Mock
}

func (m *MockWebsocketConnection) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockWebsocketConnection) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockWebsocketConnection) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockWebsocketConnection) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- Player ---

type MockPlayer struct {
	mock.Mock
}

func (m *MockPlayer) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlayer) Send(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockPlayer) Ping() {
	m.Called()
}

func (m *MockPlayer) SetRoom(r *Room) {
	m.Called(r)
}

func (m *MockPlayer) CancelAndRelease() {
	m.Called()
}

// --- Scorer ---

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, roundText string) int {
	args := m.Called(ctx, roundText)
	return args.Int(0)
}

// --- RaidResultSaver ---

type MockRaidResultSaver struct {
	mock.Mock
}

func (m *MockRaidResultSaver) SaveRaidResult(ctx context.Context, result domain.RaidResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// --- UserStore ---

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetOrCreateUser(ctx context.Context, username string) (domain.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.User), args.Error(1)
}

// --- ClanStore ---

type MockClanStore struct {
	mock.Mock
}

func (m *MockClanStore) GetClanById(ctx context.Context, id int64) (domain.Clan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Clan), args.Error(1)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}
