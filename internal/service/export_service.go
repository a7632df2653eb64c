package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-board-api/internal/models"
	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
	"github.com/noah-isme/school-board-api/pkg/export"
)

var exportColumns = []string{"category", "class", "type", "id", "text", "date", "faculty"}

const exportTextColumn = 4

type boardReader interface {
	Data(ctx context.Context) *models.Board
}

// ExportResult is a rendered board export ready to be downloaded.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService flattens the board into a table and renders it.
type ExportService struct {
	board     boardReader
	renderers map[string]export.Renderer
	clock     func() time.Time
	logger    *zap.Logger
}

// NewExportService constructs the service with CSV and PDF renderers.
func NewExportService(board boardReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvRenderer := export.NewCSVExporter()
	pdfRenderer := export.NewPDFExporter(exportTextColumn)
	return &ExportService{
		board: board,
		renderers: map[string]export.Renderer{
			csvRenderer.Extension(): csvRenderer,
			pdfRenderer.Extension(): pdfRenderer,
		},
		clock:  time.Now,
		logger: logger,
	}
}

// Export renders every post on the board in the requested format (csv or pdf).
func (s *ExportService) Export(ctx context.Context, format string) (*ExportResult, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Unsupported export format %q", format))
	}
	dataset := BuildBoardDataset(s.board.Data(ctx))
	content, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("board export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export board")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("notice-board-%s.%s", s.clock().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// BuildBoardDataset flattens the document: holidays, key information, then
// payment dues and faculty posts grouped by class code in lexical order.
func BuildBoardDataset(board *models.Board) export.Dataset {
	data := export.Dataset{Title: "Notice Board", Columns: exportColumns}
	if board == nil {
		return data
	}
	add := func(category, class, postType string, posts []models.Post) {
		for _, p := range posts {
			data.Rows = append(data.Rows, []string{
				category, class, postType, strconv.FormatInt(p.ID, 10), p.Text, p.Date, p.Faculty,
			})
		}
	}

	add(CategoryHoliday, "", "", board.Holidays)
	add(CategoryKeyInfo, "", "", board.KeyInfo)
	for _, class := range sortedKeys(board.PaymentDues) {
		add(CategoryPaymentDue, class, "", board.PaymentDues[class])
	}
	for _, class := range sortedKeys(board.FacultyPosts) {
		set := board.FacultyPosts[class]
		if set == nil {
			continue
		}
		for _, t := range models.FacultyPostTypes {
			add(CategoryFacultyPost, class, string(t), *set.List(t))
		}
	}
	return data
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
