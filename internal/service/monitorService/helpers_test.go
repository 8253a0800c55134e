package monitorService

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/scheduler"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	kindPositions = "positions"
	kindRisk      = "risk"
)

type fakeApi struct {
	mu         sync.Mutex
	clients    []model.AccountID
	clientsErr error
	positions  map[model.AccountID][]model.Position
	risk       map[model.AccountID]model.RiskStatus
	posErr     error
	riskErr    error
	calls      map[string]int

	// hook runs after the response data is read and before it is returned
	hook func(kind string, id model.AccountID, call int)
}

func newFakeApi(clients ...model.AccountID) *fakeApi {
	return &fakeApi{
		clients:   clients,
		positions: map[model.AccountID][]model.Position{},
		risk:      map[model.AccountID]model.RiskStatus{},
		calls:     map[string]int{},
	}
}

func (f *fakeApi) GetClients(ctx context.Context) ([]model.AccountID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["clients"]++
	if f.clientsErr != nil {
		return nil, f.clientsErr
	}
	return append([]model.AccountID(nil), f.clients...), nil
}

func (f *fakeApi) GetPositions(ctx context.Context, id model.AccountID) ([]model.Position, error) {
	f.mu.Lock()
	f.calls[kindPositions]++
	call := f.calls[kindPositions]
	positions := append([]model.Position(nil), f.positions[id]...)
	err := f.posErr
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(kindPositions, id, call)
	}
	return positions, err
}

func (f *fakeApi) GetMarginStatus(ctx context.Context, id model.AccountID) (model.RiskStatus, error) {
	f.mu.Lock()
	f.calls[kindRisk]++
	call := f.calls[kindRisk]
	status := f.risk[id]
	err := f.riskErr
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(kindRisk, id, call)
	}
	return status, err
}

func (f *fakeApi) callCount(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[kind]
}

func (f *fakeApi) set(fn func(f *fakeApi)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn(f)
}

type fakeJob struct {
	id        uuid.UUID
	name      string
	fn        scheduler.TaskFn
	interval  time.Duration
	immediate bool
	created   int
}

type fakeScheduler struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]fakeJob
	created int
	newErr  error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[uuid.UUID]fakeJob{}}
}

func (s *fakeScheduler) NewIntervalJob(name string, fn scheduler.TaskFn, interval time.Duration, startImmediately bool) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.newErr != nil {
		return uuid.Nil, s.newErr
	}
	s.created++
	id := uuid.New()
	s.jobs[id] = fakeJob{id: id, name: name, fn: fn, interval: interval, immediate: startImmediately, created: s.created}
	return id, nil
}

func (s *fakeScheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return errors.New("job not found")
	}
	delete(s.jobs, id)
	return nil
}

func (s *fakeScheduler) live() []fakeJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]fakeJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].created < jobs[k].created })
	return jobs
}

func (s *fakeScheduler) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.created
}

// fire runs every live job once, like a timer tick.
func (s *fakeScheduler) fire(ctx context.Context) {
	for _, j := range s.live() {
		_ = j.fn(ctx)
	}
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func lot(symbol string, qty int64, cost, price string) model.Position {
	p := model.Position{Symbol: symbol, Quantity: qty, CostBasis: money(cost)}
	if price != "" {
		p.CurrentPrice = decimal.NewNullDecimal(money(price))
	}
	return p
}

func riskOf(value, loan string) model.RiskStatus {
	pv, l := money(value), money(loan)
	req := pv.Mul(money("0.25"))
	equity := pv.Sub(l)
	shortfall := req.Sub(equity)
	return model.RiskStatus{
		PortfolioValue:    pv,
		Loan:              l,
		NetEquity:         equity,
		MarginRequirement: req,
		MarginShortfall:   shortfall,
		MarginCall:        shortfall.IsPositive(),
	}
}

func jobIDs(jobs []fakeJob) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.id)
	}
	return ids
}
