package telegram

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/KotFed0t/risk_monitor/config"
	"github.com/KotFed0t/risk_monitor/internal/converter/viewConverter"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/KotFed0t/risk_monitor/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg  = "something went wrong..."
	tooLargeMsg     = "the report is too large to send"
	helloMsg        = "Hello! /status shows the margin state of the selected client, /export sends a spreadsheet snapshot."
	nothingSelected = "no client is selected"
)

type MonitorService interface {
	State() monitorService.State
}

type ReportGenerator interface {
	Generate(ctx context.Context, st monitorService.State) (fileBytes []byte, fileExtension string, err error)
}

type Controller struct {
	monitor          MonitorService
	reportGenerator  ReportGenerator
	fileLimitInBytes int
}

func NewController(cfg *config.Config, monitor MonitorService, reportGenerator ReportGenerator) *Controller {
	return &Controller{
		monitor:          monitor,
		reportGenerator:  reportGenerator,
		fileLimitInBytes: cfg.Telegram.FileLimitInBytes,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Reply(helloMsg)
}

func (ctrl *Controller) Status(c tele.Context) error {
	return c.Send(viewConverter.StatusText(ctrl.monitor.State()))
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxFromTele(c)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Controller.Export"

	st := ctrl.monitor.State()
	if !st.HasSelection {
		return c.Send(nothingSelected)
	}

	fileBytes, ext, err := ctrl.reportGenerator.Generate(ctx, st)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	if ctrl.fileLimitInBytes > 0 && len(fileBytes) > ctrl.fileLimitInBytes {
		slog.Warn("report exceeds telegram file limit", slog.String("rqID", rqID), slog.String("op", op), slog.Int("size", len(fileBytes)))
		return c.Send(tooLargeMsg)
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(fileBytes)),
		FileName: "risk_" + st.Selected.PathSegment() + ext,
	}
	return c.Send(doc)
}
