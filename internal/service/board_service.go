package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-board-api/internal/dto"
	"github.com/noah-isme/school-board-api/internal/models"
	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
)

// BoardCacheKey is the cache key holding the whole document.
const BoardCacheKey = "board:data"

// Category labels used in metrics and exports.
const (
	CategoryHoliday     = "holiday"
	CategoryKeyInfo     = "keyInfo"
	CategoryPaymentDue  = "paymentDue"
	CategoryFacultyPost = "facultyPost"
)

// Validation failures reported by the create operations.
var (
	ErrTextRequired       = appErrors.Clone(appErrors.ErrValidation, "Text is required")
	ErrPaymentDueRequired = appErrors.Clone(appErrors.ErrValidation, "Class code and text are required")
	ErrFacultyRequired    = appErrors.Clone(appErrors.ErrValidation, "All fields are required")
	ErrInvalidPostType    = appErrors.Clone(appErrors.ErrValidation, "Invalid post type")
)

type boardStore interface {
	Load(ctx context.Context) *models.Board
	Mutate(ctx context.Context, fn func(*models.Board) error) (*models.Board, error)
}

type boardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type postCounter interface {
	RecordPostCreated(category string)
	RecordPostsDeleted(category string, n int)
}

// BoardService implements the notice board operations.
type BoardService struct {
	store     boardStore
	cache     boardCache
	metrics   postCounter
	stamper   *PostStamper
	validator *validator.Validate
	logger    *zap.Logger

	// cacheMu orders cache writes. generation counts completed mutations;
	// a read only fills the cache if no mutation finished while it loaded.
	// written is the ordinal of the mutation whose board is cached, so an
	// older mutation finishing late cannot replace a newer board.
	cacheMu    sync.Mutex
	generation uint64
	ordinal    uint64
	written    uint64
}

// NewBoardService constructs the service. cache and metrics are optional.
func NewBoardService(store boardStore, cache boardCache, metrics postCounter, stamper *PostStamper, validate *validator.Validate, logger *zap.Logger) *BoardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stamper == nil {
		stamper = NewPostStamper(nil, nil)
	}
	svc := &BoardService{store: store, cache: cache, metrics: metrics, stamper: stamper, validator: validate, logger: logger}
	svc.validator.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		return fl.Field().String() != ""
	})
	svc.validator.RegisterValidation("facultytype", func(fl validator.FieldLevel) bool {
		return models.FacultyPostType(fl.Field().String()).Valid()
	})
	return svc
}

// Data returns the whole document. It never fails: an unreadable file
// yields the empty default document.
func (s *BoardService) Data(ctx context.Context) *models.Board {
	if s.cache == nil {
		return s.store.Load(ctx)
	}
	cached := &models.Board{}
	if hit, _ := s.cache.Get(ctx, BoardCacheKey, cached); hit {
		cached.Normalize()
		return cached
	}

	s.cacheMu.Lock()
	start := s.generation
	s.cacheMu.Unlock()

	board := s.store.Load(ctx)

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation == start {
		_ = s.cache.Set(ctx, BoardCacheKey, board, 0)
	}
	return board
}

// CreateHoliday appends a holiday notice.
func (s *BoardService) CreateHoliday(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ErrTextRequired
	}
	return s.append(ctx, CategoryHoliday, func(b *models.Board) models.Post {
		post := s.stamper.Stamp(req.Text, "")
		b.Holidays = append(b.Holidays, post)
		return post
	})
}

// CreateKeyInfo appends a key information notice.
func (s *BoardService) CreateKeyInfo(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ErrTextRequired
	}
	return s.append(ctx, CategoryKeyInfo, func(b *models.Board) models.Post {
		post := s.stamper.Stamp(req.Text, "")
		b.KeyInfo = append(b.KeyInfo, post)
		return post
	})
}

// CreatePaymentDue appends a payment due notice to the class, creating its list if needed.
func (s *BoardService) CreatePaymentDue(ctx context.Context, req dto.CreatePaymentDueRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ErrPaymentDueRequired
	}
	return s.append(ctx, CategoryPaymentDue, func(b *models.Board) models.Post {
		post := s.stamper.Stamp(req.Text, "")
		b.PaymentDues[req.ClassCode] = append(b.PaymentDues[req.ClassCode], post)
		return post
	})
}

// CreateFacultyPost appends a homework, assignment or subject post to the class.
func (s *BoardService) CreateFacultyPost(ctx context.Context, req dto.CreateFacultyPostRequest) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, ErrFacultyRequired
	}
	postType := models.FacultyPostType(req.Type)
	if err := s.validator.Var(req.Type, "facultytype"); err != nil {
		return nil, ErrInvalidPostType
	}
	return s.append(ctx, CategoryFacultyPost, func(b *models.Board) models.Post {
		post := s.stamper.Stamp(req.Text, req.FacultyCode)
		list := b.FacultySet(req.ClassCode).List(postType)
		*list = append(*list, post)
		return post
	})
}

// DeletePost removes the post with id from the holiday or keyinfo
// collection. Other types, and ids that match nothing, succeed without
// changing the document.
func (s *BoardService) DeletePost(ctx context.Context, postType, id string) error {
	category := models.PostCategory(postType)
	if category != models.PostCategoryHoliday && category != models.PostCategoryKeyInfo {
		s.logger.Debug("delete ignored for unsupported type", zap.String("type", postType))
		return nil
	}
	postID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		s.logger.Debug("delete ignored for non-numeric id", zap.String("type", postType), zap.String("id", id))
		return nil
	}

	removed := 0
	var ordinal uint64
	board, err := s.store.Mutate(ctx, func(b *models.Board) error {
		ordinal = s.nextOrdinal()
		removed = b.RemovePost(category, postID)
		return nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrPersistence) {
			return err
		}
		return appErrors.WrapAs(appErrors.ErrDeleteFailed, err)
	}
	s.afterMutation(ctx, board, ordinal)
	if s.metrics != nil {
		s.metrics.RecordPostsDeleted(string(category), removed)
	}
	return nil
}

func (s *BoardService) append(ctx context.Context, category string, add func(*models.Board) models.Post) (*models.Post, error) {
	var post models.Post
	var ordinal uint64
	board, err := s.store.Mutate(ctx, func(b *models.Board) error {
		ordinal = s.nextOrdinal()
		s.stamper.Seed(b.MaxPostID())
		post = add(b)
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store post")
	}
	s.afterMutation(ctx, board, ordinal)
	if s.metrics != nil {
		s.metrics.RecordPostCreated(category)
	}
	return &post, nil
}

// nextOrdinal numbers mutations in the order the store applies them. It is
// called from inside Mutate, which runs one callback at a time.
func (s *BoardService) nextOrdinal() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.ordinal++
	return s.ordinal
}

// afterMutation writes the saved board through to the cache. A failed write
// drops the cached copy instead.
func (s *BoardService) afterMutation(ctx context.Context, board *models.Board, ordinal uint64) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if ordinal <= s.written {
		return
	}
	if board == nil || s.cache.Set(ctx, BoardCacheKey, board, 0) != nil {
		_ = s.cache.Invalidate(ctx, BoardCacheKey)
		return
	}
	s.written = ordinal
}
