package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KotFed0t/risk_monitor/internal/aggregator"
	"github.com/KotFed0t/risk_monitor/internal/converter/viewConverter"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/KotFed0t/risk_monitor/utils"
	"github.com/xuri/excelize/v2"
)

const (
	SheetPositions    = "positions"
	SheetMargin       = "margin"
	SheetDistribution = "distribution"
)

var ErrNothingToExport = errors.New("error no account selected to export")

type XLSXGenerator struct {
	now func() time.Time
}

func New() *XLSXGenerator {
	return &XLSXGenerator{now: time.Now}
}

// Generate writes a point-in-time snapshot of st as a workbook.
func (g *XLSXGenerator) Generate(ctx context.Context, st monitorService.State) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if !st.HasSelection {
		return nil, "", ErrNothingToExport
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", st.Selected.String()))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, "", err
	}

	if err = f.SetSheetName("Sheet1", SheetPositions); err != nil {
		slog.Error("got error while renaming Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillPositions(f, st, headerStyle); err != nil {
		return nil, "", err
	}
	if err = g.fillMargin(f, st, headerStyle); err != nil {
		return nil, "", err
	}
	if err = g.fillDistribution(f, st, headerStyle); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) header(f *excelize.File, sheet string, styleID int, titles ...string) error {
	for i, title := range titles {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(sheet, cell, title)
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	return nil
}

func (g *XLSXGenerator) fillPositions(f *excelize.File, st monitorService.State, styleID int) error {
	if err := g.header(f, SheetPositions, styleID, append(slices.Clone(viewConverter.PositionHeaders), "Market Value")...); err != nil {
		return err
	}

	for i, p := range st.Positions {
		row := i + 2
		_ = f.SetCellStr(SheetPositions, fmt.Sprintf("A%d", row), p.Symbol)
		_ = f.SetCellInt(SheetPositions, fmt.Sprintf("B%d", row), p.Quantity)
		_ = f.SetCellValue(SheetPositions, fmt.Sprintf("C%d", row), p.CostBasis.InexactFloat64())
		if p.CurrentPrice.Valid {
			_ = f.SetCellValue(SheetPositions, fmt.Sprintf("D%d", row), p.CurrentPrice.Decimal.InexactFloat64())
		} else {
			_ = f.SetCellStr(SheetPositions, fmt.Sprintf("D%d", row), viewConverter.NotAvailable)
		}
		_ = f.SetCellValue(SheetPositions, fmt.Sprintf("E%d", row), p.MarketValue().InexactFloat64())
	}

	return nil
}

func (g *XLSXGenerator) fillMargin(f *excelize.File, st monitorService.State, styleID int) error {
	if _, err := f.NewSheet(SheetMargin); err != nil {
		return err
	}
	if err := g.header(f, SheetMargin, styleID, "Field", "Value"); err != nil {
		return err
	}

	_ = f.SetCellStr(SheetMargin, "A2", "Client")
	_ = f.SetCellStr(SheetMargin, "B2", st.Selected.String())
	_ = f.SetCellStr(SheetMargin, "A3", "Exported At")
	_ = f.SetCellValue(SheetMargin, "B3", g.now().UTC().Format(time.RFC3339))

	if !st.RiskLoaded {
		_ = f.SetCellStr(SheetMargin, "A4", "Status")
		_ = f.SetCellStr(SheetMargin, "B4", viewConverter.LoadingMarginText)
		return nil
	}

	r := st.Risk
	rows := []struct {
		label string
		value float64
	}{
		{"Portfolio Value", r.PortfolioValue.InexactFloat64()},
		{"Loan", r.Loan.InexactFloat64()},
		{"Net Equity", r.NetEquity.InexactFloat64()},
		{"Margin Requirement", r.MarginRequirement.InexactFloat64()},
		{"Margin Shortfall", r.MarginShortfall.InexactFloat64()},
	}
	for i, row := range rows {
		_ = f.SetCellStr(SheetMargin, fmt.Sprintf("A%d", i+4), row.label)
		_ = f.SetCellValue(SheetMargin, fmt.Sprintf("B%d", i+4), row.value)
	}
	next := len(rows) + 4
	_ = f.SetCellStr(SheetMargin, fmt.Sprintf("A%d", next), "Status")
	_ = f.SetCellStr(SheetMargin, fmt.Sprintf("B%d", next), viewConverter.MarginHeadline(r))

	return nil
}

func (g *XLSXGenerator) fillDistribution(f *excelize.File, st monitorService.State, styleID int) error {
	if _, err := f.NewSheet(SheetDistribution); err != nil {
		return err
	}
	if err := g.header(f, SheetDistribution, styleID, "Symbol", "Value", "Share %"); err != nil {
		return err
	}

	total := aggregator.Total(st.Buckets)
	for i, b := range st.Buckets {
		row := i + 2
		_ = f.SetCellStr(SheetDistribution, fmt.Sprintf("A%d", row), b.Symbol)
		_ = f.SetCellValue(SheetDistribution, fmt.Sprintf("B%d", row), b.Value.InexactFloat64())
		_ = f.SetCellValue(SheetDistribution, fmt.Sprintf("C%d", row), aggregator.Share(b, total).Round(2).InexactFloat64())
	}

	return nil
}
