package bot_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/dependencies/mocks"
	"github.com/mcoot/seabattle/internal/services/bot"
	"github.com/mcoot/seabattle/internal/testutil"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type ServiceSuite struct {
	suite.Suite
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom
	botService *bot.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	s.botService = bot.NewService(bot.NewRandomStrategy(s.mockRandom), s.mockClock, bot.DefaultConfig(), testutil.NopLogger())
}

func (s *ServiceSuite) TearDownTest() {
	s.botService.Stop()
}

// tickUntil fires the mock ticker until cond holds
func (s *ServiceSuite) tickUntil(cond func() bool) {
	s.Eventually(func() bool {
		s.mockClock.Tick()
		return cond()
	}, waitFor, tick)
}

func (s *ServiceSuite) TestSchedule_UsesConfiguredInterval() {
	svc := bot.NewService(s.botService.Strategy(), s.mockClock, bot.Config{TurnInterval: 250 * time.Millisecond}, testutil.NopLogger())
	defer svc.Stop()

	svc.Schedule("g1", func() bool { return true })

	s.Equal(1, s.mockClock.ActiveTickers())
	s.True(svc.IsScheduled("g1"))
}

func (s *ServiceSuite) TestSchedule_RunsTurnOnTick() {
	var calls atomic.Int32
	s.botService.Schedule("g1", func() bool {
		calls.Add(1)
		return true
	})

	s.tickUntil(func() bool { return calls.Load() >= 3 })
	s.Equal(1, s.botService.ActiveCount())
}

func (s *ServiceSuite) TestSchedule_StopsWhenTurnReturnsFalse() {
	var calls atomic.Int32
	s.botService.Schedule("g1", func() bool {
		return calls.Add(1) < 2
	})

	s.tickUntil(func() bool { return !s.botService.IsScheduled("g1") })
	s.Eventually(func() bool { return s.mockClock.ActiveTickers() == 0 }, waitFor, tick)

	s.mockClock.Tick()
	s.Equal(int32(2), calls.Load())
}

func (s *ServiceSuite) TestCancel_StopsTicker() {
	var calls atomic.Int32
	s.botService.Schedule("g1", func() bool {
		calls.Add(1)
		return true
	})

	s.botService.Cancel("g1")

	s.False(s.botService.IsScheduled("g1"))
	s.Eventually(func() bool { return s.mockClock.ActiveTickers() == 0 }, waitFor, tick)
	s.mockClock.Tick()
	s.Equal(int32(0), calls.Load())
}

func (s *ServiceSuite) TestCancel_UnknownGame() {
	s.NotPanics(func() { s.botService.Cancel("missing") })
}

func (s *ServiceSuite) TestCancel_FromInsideTurn() {
	s.botService.Schedule("g1", func() bool {
		s.botService.Cancel("g1")
		return false
	})

	s.tickUntil(func() bool { return s.botService.ActiveCount() == 0 })
	s.Eventually(func() bool { return s.mockClock.ActiveTickers() == 0 }, waitFor, tick)
}

func (s *ServiceSuite) TestSchedule_ReplacesExisting() {
	var first, second atomic.Int32
	s.botService.Schedule("g1", func() bool { first.Add(1); return true })
	s.botService.Schedule("g1", func() bool { second.Add(1); return true })

	s.tickUntil(func() bool { return second.Load() > 0 })
	s.Equal(int32(0), first.Load())
	s.Equal(1, s.botService.ActiveCount())
}

func (s *ServiceSuite) TestStop_CancelsAll() {
	s.botService.Schedule("g1", func() bool { return true })
	s.botService.Schedule("g2", func() bool { return true })
	s.Equal(2, s.botService.ActiveCount())

	s.botService.Stop()

	s.Equal(0, s.botService.ActiveCount())
	s.Equal(0, s.mockClock.ActiveTickers())

	s.botService.Schedule("g3", func() bool { return true })
	s.Equal(0, s.botService.ActiveCount())
}
