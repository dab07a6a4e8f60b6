package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/step-challenge-api/internal/dto"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
	"github.com/noah-isme/step-challenge-api/pkg/export"
)

// Export formats accepted by the admin export endpoints.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type tableRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Table) ([]byte, error)
}

// ExportService renders the audit list and the campus ranking as downloadable files.
type ExportService struct {
	ledger    *LedgerService
	renderers map[string]tableRenderer
	logger    *zap.Logger
	printer   *message.Printer
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(ledger *LedgerService, logger *zap.Logger, csv, pdf tableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		ledger:    ledger,
		renderers: map[string]tableRenderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:    logger,
		printer:   message.NewPrinter(language.English),
		now:       time.Now,
	}
}

// ExportStudents renders every student with their logged days, newest activity first.
func (s *ExportService) ExportStudents(ctx context.Context, format string) (*dto.ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	rows := filterStudents(s.ledger.Snapshot(ctx), models.AdminFilter{})

	table := export.Table{
		Title:   "Step Challenge Submissions",
		Headers: []string{"Student ID", "Name", "Campus", "Session", "Total Steps", "Days Logged", "Latest Date", "Days"},
	}
	for _, row := range rows {
		days := make([]string, 0, len(row.Days))
		for _, day := range row.Days {
			days = append(days, s.printer.Sprintf("%s: %d", day.Date, day.Steps))
		}
		table.Rows = append(table.Rows, map[string]string{
			"Student ID":  row.StudentID,
			"Name":        row.Name,
			"Campus":      row.Campus,
			"Session":     string(row.Session),
			"Total Steps": s.printer.Sprintf("%d", row.TotalSteps),
			"Days Logged": strconv.Itoa(row.DaysLogged),
			"Latest Date": row.LatestDate,
			"Days":        strings.Join(days, "; "),
		})
	}
	return s.render(renderer, "students", table)
}

// ExportCampuses renders the campus ranking with raw and smoothed averages.
func (s *ExportService) ExportCampuses(ctx context.Context, format string) (*dto.ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	board := RankCampuses(s.ledger.Snapshot(ctx))

	table := export.Table{
		Title:   s.printer.Sprintf("%s (smoothing %d, global mean %.0f)", board.Title, board.Smoothing, board.GlobalMean),
		Headers: []string{"Rank", "Campus", "Score", "Raw Average", "Students", "Total Steps"},
	}
	for _, entry := range board.Entries {
		table.Rows = append(table.Rows, map[string]string{
			"Rank":        strconv.Itoa(entry.Rank),
			"Campus":      entry.Campus,
			"Score":       s.printer.Sprintf("%d", entry.Score),
			"Raw Average": s.printer.Sprintf("%d", entry.RawAverage),
			"Students":    strconv.Itoa(entry.StudentCount),
			"Total Steps": s.printer.Sprintf("%d", entry.TotalSteps),
		})
	}
	return s.render(renderer, "campuses", table)
}

func (s *ExportService) renderer(format string) (tableRenderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "unsupported export format",
			map[string]string{"format": fmt.Sprintf("format must be %s or %s", ExportFormatCSV, ExportFormatPDF)})
	}
	return renderer, nil
}

func (s *ExportService) render(renderer tableRenderer, name string, table export.Table) (*dto.ExportFile, error) {
	body, err := renderer.Render(table)
	if err != nil {
		s.logger.Error("export render failed", zap.String("export", name), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("step_challenge_%s_%s.%s", name, timestamp, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
