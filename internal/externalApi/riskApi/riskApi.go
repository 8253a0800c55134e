package riskApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/risk_monitor/config"
	"github.com/KotFed0t/risk_monitor/internal/externalApi"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/utils"
	"github.com/go-resty/resty/v2"
)

const (
	clientsUrl      = "/api/clients"
	positionsUrl    = "/api/positions/{accountID}"
	marginStatusUrl = "/api/margin-status/{accountID}"
	createUrl       = "/api/positions"
)

// RiskApi talks to the positions/margin backend.
type RiskApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *RiskApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Backend.Url)
	return &RiskApi{client: client}
}

func (a *RiskApi) GetClients(ctx context.Context) ([]model.AccountID, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskApi.GetClients"

	slog.Debug("GetClients start", slog.String("rqID", rqID), slog.String("op", op))

	var ids []model.AccountID
	if err := a.get(ctx, op, clientsUrl, nil, &ids); err != nil {
		return nil, err
	}

	slog.Debug("GetClients completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("clients", len(ids)))

	return ids, nil
}

func (a *RiskApi) GetPositions(ctx context.Context, accountID model.AccountID) ([]model.Position, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskApi.GetPositions"

	slog.Debug("GetPositions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID.String()))

	var positions []model.Position
	pathParams := map[string]string{"accountID": accountID.String()}
	if err := a.get(ctx, op, positionsUrl, pathParams, &positions); err != nil {
		return nil, err
	}

	for i, p := range positions {
		if p.Symbol == "" {
			slog.Error("position without symbol", slog.String("rqID", rqID), slog.String("op", op), slog.Int("index", i))
			return nil, fmt.Errorf("position %d: empty symbol", i)
		}
	}

	slog.Debug("GetPositions completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("positions", len(positions)))

	return positions, nil
}

func (a *RiskApi) GetMarginStatus(ctx context.Context, accountID model.AccountID) (model.RiskStatus, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskApi.GetMarginStatus"

	slog.Debug("GetMarginStatus start", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID.String()))

	var status model.RiskStatus
	pathParams := map[string]string{"accountID": accountID.String()}
	if err := a.get(ctx, op, marginStatusUrl, pathParams, &status); err != nil {
		return model.RiskStatus{}, err
	}

	slog.Debug("GetMarginStatus completed", slog.String("rqID", rqID), slog.String("op", op))

	return status, nil
}

func (a *RiskApi) CreatePosition(ctx context.Context, req model.CreatePositionRequest) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RiskApi.CreatePosition"

	slog.Debug("CreatePosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", req.Symbol))

	body, err := json.Marshal(req)
	if err != nil {
		slog.Error("can't marshall create position request", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Request-ID", rqID).
		SetBody(body).
		Post(createUrl)
	if err != nil {
		slog.Error("error while dialing RiskApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err = checkStatus(resp); err != nil {
		slog.Error("create position rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("body", resp.String()))
		return err
	}

	slog.Debug("CreatePosition completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (a *RiskApi) get(ctx context.Context, op, url string, pathParams map[string]string, target any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", rqID).
		SetPathParams(pathParams).
		Get(url)
	if err != nil {
		slog.Error("error while dialing RiskApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if err = checkStatus(resp); err != nil {
		slog.Error("unexpected response status", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = json.Unmarshal(resp.Body(), target)
	if err != nil {
		slog.Error("can't unmarshall response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return fmt.Errorf("%s: malformed response: %w", op, err)
	}

	return nil
}

func checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%w: %d", externalApi.ErrNotFound, resp.StatusCode())
	case resp.IsError(), resp.StatusCode() < 200, resp.StatusCode() > 299:
		return fmt.Errorf("%w: %d", externalApi.ErrUnexpectedStatus, resp.StatusCode())
	}
	return nil
}
