// Package alertService sends a message when the selected account enters or
// leaves a margin call.
package alertService

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KotFed0t/risk_monitor/internal/converter/viewConverter"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/KotFed0t/risk_monitor/utils"
)

const queueSize = 16

type Sender interface {
	Send(ctx context.Context, text string) error
}

type alert struct {
	accountID  model.AccountID
	marginCall bool
	text       string
}

type AlertService struct {
	sender Sender
	queue  chan alert
	wg     sync.WaitGroup

	mu sync.Mutex
	// last known margin call flag per account, absent until a status arrived
	lastCall map[model.AccountID]bool
	stopped  bool
}

func New(sender Sender) *AlertService {
	return &AlertService{
		sender:   sender,
		queue:    make(chan alert, queueSize),
		lastCall: make(map[model.AccountID]bool),
	}
}

// Start runs the worker that hands alerts to the sender in order.
func (a *AlertService) Start() {
	a.wg.Add(1)
	go a.run()
}

// Stop lets queued alerts go out and waits for the worker. States arriving
// afterwards are ignored.
func (a *AlertService) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
}

// OnState is a monitorService subscriber. Only transitions are sent, so
// repeated polls in the same state stay silent. It never waits for the
// sender.
func (a *AlertService) OnState(st monitorService.State) {
	if !st.HasSelection || !st.RiskLoaded {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	prev, known := a.lastCall[st.Selected]
	a.lastCall[st.Selected] = st.Risk.MarginCall

	var text string
	switch {
	case st.Risk.MarginCall && (!known || !prev):
		text = viewConverter.AlertText(st.Selected, st.Risk)
	case !st.Risk.MarginCall && known && prev:
		text = viewConverter.ClearedText(st.Selected, st.Risk)
	default:
		return
	}

	select {
	case a.queue <- alert{accountID: st.Selected, marginCall: st.Risk.MarginCall, text: text}:
	default:
		slog.Warn("alert queue is full, alert dropped", slog.String("op", "AlertService.OnState"), slog.String("accountID", st.Selected.String()), slog.Bool("marginCall", st.Risk.MarginCall))
	}
}

func (a *AlertService) run() {
	defer a.wg.Done()

	for al := range a.queue {
		a.send(al)
	}
}

func (a *AlertService) send(al alert) {
	ctx := utils.CreateCtxWithRqID(context.Background())
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlertService.send"

	if err := a.sender.Send(ctx, al.text); err != nil {
		slog.Error("got error from sender.Send", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", al.accountID.String()), slog.String("err", err.Error()))
		return
	}
	slog.Info("margin alert sent", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", al.accountID.String()), slog.Bool("marginCall", al.marginCall))
}
