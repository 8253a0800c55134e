// Package exportService saves snapshots of the monitor state to disk.
package exportService

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/KotFed0t/risk_monitor/utils"
)

type ReportGenerator interface {
	Generate(ctx context.Context, st monitorService.State) (fileBytes []byte, fileExtension string, err error)
}

type ExportService struct {
	generator ReportGenerator
	dir       string
	now       func() time.Time
}

func New(generator ReportGenerator, dir string) *ExportService {
	return &ExportService{generator: generator, dir: dir, now: time.Now}
}

// Export writes st to dir/risk_<account>_<timestamp><ext> and returns the path.
func (s *ExportService) Export(ctx context.Context, st monitorService.State) (string, error) {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ExportService.Export"

	fileBytes, ext, err := s.generator.Generate(ctx, st)
	if err != nil {
		slog.Error("got error from generator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("generate report: %w", err)
	}

	if err = os.MkdirAll(s.dir, 0o755); err != nil {
		slog.Error("can't create export dir", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	name := fmt.Sprintf("risk_%s_%s%s", st.Selected.PathSegment(), s.now().Format("20060102_150405"), ext)
	path := filepath.Join(s.dir, name)

	if err = os.WriteFile(path, fileBytes, 0o644); err != nil {
		slog.Error("can't write export file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Info("snapshot exported", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", path))

	return path, nil
}
