// Package monitorService keeps the client-side view state of the risk
// monitor: the account directory, the positions and margin status snapshots
// of the selected account, and the polling that refreshes them.
package monitorService

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/KotFed0t/risk_monitor/internal/metrics"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/scheduler"
	"github.com/KotFed0t/risk_monitor/internal/store"
	"github.com/google/uuid"
)

type RiskApi interface {
	GetClients(ctx context.Context) ([]model.AccountID, error)
	GetPositions(ctx context.Context, accountID model.AccountID) ([]model.Position, error)
	GetMarginStatus(ctx context.Context, accountID model.AccountID) (model.RiskStatus, error)
}

type Scheduler interface {
	NewIntervalJob(name string, fn scheduler.TaskFn, interval time.Duration, startImmediately bool) (uuid.UUID, error)
	RemoveJob(id uuid.UUID) error
}

type RefreshReason string

const (
	ReasonPoll       RefreshReason = "poll"
	ReasonSubmission RefreshReason = "submission"
	ReasonManual     RefreshReason = "manual"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	if p == PhaseActive {
		return "active"
	}
	return "idle"
}

// State is a copy of everything the view renders. Nothing in it is shared
// with the service.
type State struct {
	Accounts        []model.AccountID
	DirectoryLoaded bool
	DirectoryErr    error

	Selected     model.AccountID
	HasSelection bool
	Phase        Phase

	Positions       []model.Position
	Buckets         []model.ValueBucket
	PositionsLoaded bool

	Risk       model.RiskStatus
	RiskLoaded bool

	RefreshErr error
}

type positionsSnapshot struct {
	positions []model.Position
	buckets   []model.ValueBucket
}

func clonePositions(s positionsSnapshot) positionsSnapshot {
	return positionsSnapshot{
		positions: slices.Clone(s.positions),
		buckets:   slices.Clone(s.buckets),
	}
}

type MonitorService struct {
	api      RiskApi
	sched    Scheduler
	metrics  *metrics.Metrics
	interval time.Duration

	// pollMu serializes selection changes so at most one job is registered.
	pollMu sync.Mutex

	mu              sync.Mutex
	initStarted     bool
	accounts        []model.AccountID
	directoryLoaded bool
	directoryErr    error
	selected        model.AccountID
	hasSelection    bool
	epoch           uint64
	jobID           uuid.UUID
	active          bool
	seq             uint64
	refreshErr      error
	refreshErrSeq   uint64
	closed          bool

	positions *store.Store[positionsSnapshot]
	risk      *store.Store[model.RiskStatus]

	// notifyMu makes a delivery atomic from taking the copy to the last
	// listener returning, so listeners see states in the order they were made.
	notifyMu    sync.Mutex
	listenersMu sync.Mutex
	listeners   []func(State)
}

func New(api RiskApi, sched Scheduler, m *metrics.Metrics, interval time.Duration) *MonitorService {
	if m == nil {
		m = metrics.New()
	}
	return &MonitorService{
		api:       api,
		sched:     sched,
		metrics:   m,
		interval:  interval,
		positions: store.New(clonePositions),
		risk:      store.New[model.RiskStatus](nil),
	}
}

// Subscribe registers fn to receive the state after every applied change.
// fn runs on the goroutine that made the change, one delivery at a time, and
// never receives a state older than one it already got. A slow fn delays
// every later delivery, so fn must not block.
func (s *MonitorService) Subscribe(fn func(State)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *MonitorService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *MonitorService) stateLocked() State {
	pos := s.positions.Snapshot()
	risk := s.risk.Snapshot()

	st := State{
		Accounts:        slices.Clone(s.accounts),
		DirectoryLoaded: s.directoryLoaded,
		DirectoryErr:    s.directoryErr,
		Selected:        s.selected,
		HasSelection:    s.hasSelection,
		Phase:           PhaseIdle,
		Positions:       pos.Value.positions,
		Buckets:         pos.Value.buckets,
		PositionsLoaded: pos.Loaded,
		Risk:            risk.Value,
		RiskLoaded:      risk.Loaded,
		RefreshErr:      s.refreshErr,
	}
	if s.active {
		st.Phase = PhaseActive
	}
	return st
}

func (s *MonitorService) Selected() (model.AccountID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected, s.hasSelection
}

// notify must be called without pollMu held.
func (s *MonitorService) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	if len(listeners) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	st := s.stateLocked()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
