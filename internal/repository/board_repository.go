package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-board-api/internal/models"
	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
	"github.com/noah-isme/school-board-api/pkg/jobs"
)

type documentFile interface {
	Exists() (bool, error)
	Read() ([]byte, error)
	Write(data []byte) error
	CreateExclusive(data []byte) (bool, error)
	Path() string
}

type storeObserver interface {
	ObserveStoreOperation(op string, duration time.Duration, err error)
}

// BoardRepository is the only owner of the board document on disk. Every
// mutation runs load, change and save on a single writer goroutine.
type BoardRepository struct {
	file    documentFile
	writer  *jobs.Writer
	metrics storeObserver
	logger  *zap.Logger
}

// NewBoardRepository creates the repository. The writer must be started by the caller.
func NewBoardRepository(file documentFile, writer *jobs.Writer, metrics storeObserver, logger *zap.Logger) *BoardRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardRepository{file: file, writer: writer, metrics: metrics, logger: logger}
}

// EnsureInitialized writes the default document when the file is absent and
// reports whether it did. An existing file is never touched.
func (r *BoardRepository) EnsureInitialized(ctx context.Context) (bool, error) {
	exists, err := r.file.Exists()
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	payload, err := encodeBoard(models.NewBoard())
	if err != nil {
		return false, err
	}
	created, err := r.file.CreateExclusive(payload)
	if err != nil {
		return false, err
	}
	if created {
		r.logger.Info("data file initialised", zap.String("path", r.file.Path()))
	}
	return created, nil
}

// Exists reports whether the data file is present.
func (r *BoardRepository) Exists() bool {
	exists, err := r.file.Exists()
	return err == nil && exists
}

// Load returns the stored document. Read and parse failures are logged and
// answered with an empty default document; they are never surfaced.
func (r *BoardRepository) Load(ctx context.Context) *models.Board {
	start := time.Now()
	board, err := r.read()
	r.observe("load", start, err)
	if err != nil {
		r.logger.Error("failed to load board, using empty document",
			zap.String("path", r.file.Path()), zap.Error(err))
		return models.NewBoard()
	}
	return board
}

// Save replaces the stored document.
func (r *BoardRepository) Save(ctx context.Context, board *models.Board) error {
	start := time.Now()
	err := r.write(board)
	r.observe("save", start, err)
	if err != nil {
		r.logger.Error("failed to save board", zap.String("path", r.file.Path()), zap.Error(err))
		return appErrors.WrapAs(appErrors.ErrPersistence, err)
	}
	return nil
}

// Mutate loads the document, applies fn and saves the result, serialized
// with every other mutation. When fn fails nothing is written and its error
// is returned unchanged.
func (r *BoardRepository) Mutate(ctx context.Context, fn func(*models.Board) error) (*models.Board, error) {
	var result *models.Board
	err := r.writer.Do(ctx, func(ctx context.Context) error {
		board := r.Load(ctx)
		if err := fn(board); err != nil {
			return err
		}
		if err := r.Save(ctx, board); err != nil {
			return err
		}
		result = board
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BoardRepository) read() (*models.Board, error) {
	raw, err := r.file.Read()
	if err != nil {
		return nil, err
	}
	board := &models.Board{}
	if err := json.Unmarshal(raw, board); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	board.Normalize()
	return board, nil
}

func (r *BoardRepository) write(board *models.Board) error {
	if board == nil {
		return fmt.Errorf("encode board: nil document")
	}
	payload, err := encodeBoard(board)
	if err != nil {
		return err
	}
	return r.file.Write(payload)
}

func (r *BoardRepository) observe(op string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveStoreOperation(op, time.Since(start), err)
}

func encodeBoard(board *models.Board) ([]byte, error) {
	payload, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return payload, nil
}
