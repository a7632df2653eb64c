package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-board-api/internal/dto"
	"github.com/noah-isme/school-board-api/internal/models"
	appErrors "github.com/noah-isme/school-board-api/pkg/errors"
	"github.com/noah-isme/school-board-api/pkg/jobs"
)

type boardStoreStub struct {
	mu        sync.Mutex
	board     *models.Board
	saveErr   error
	mutateErr error
	saves     int

	// when set, Load signals loading and waits for release after copying the board
	loading chan struct{}
	release chan struct{}
}

func newBoardStoreStub() *boardStoreStub {
	return &boardStoreStub{board: models.NewBoard()}
}

func (s *boardStoreStub) Load(ctx context.Context) *models.Board {
	s.mu.Lock()
	board := cloneBoard(s.board)
	loading, release := s.loading, s.release
	s.mu.Unlock()
	if loading != nil {
		loading <- struct{}{}
		<-release
	}
	return board
}

func (s *boardStoreStub) Mutate(ctx context.Context, fn func(*models.Board) error) (*models.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	working := cloneBoard(s.board)
	if err := fn(working); err != nil {
		return nil, err
	}
	if s.saveErr != nil {
		return nil, appErrors.WrapAs(appErrors.ErrPersistence, s.saveErr)
	}
	s.saves++
	s.board = working
	return working, nil
}

func cloneBoard(b *models.Board) *models.Board {
	out := models.NewBoard()
	out.Holidays = append(out.Holidays, b.Holidays...)
	out.KeyInfo = append(out.KeyInfo, b.KeyInfo...)
	for code, posts := range b.PaymentDues {
		out.PaymentDues[code] = append([]models.Post{}, posts...)
	}
	for code, set := range b.FacultyPosts {
		copySet := models.NewFacultyPostSet()
		copySet.Homework = append(copySet.Homework, set.Homework...)
		copySet.Assignment = append(copySet.Assignment, set.Assignment...)
		copySet.Subject = append(copySet.Subject, set.Subject...)
		out.FacultyPosts[code] = copySet
	}
	return out
}

type postCounterStub struct {
	created map[string]int
	deleted map[string]int
}

func newPostCounterStub() *postCounterStub {
	return &postCounterStub{created: map[string]int{}, deleted: map[string]int{}}
}

func (p *postCounterStub) RecordPostCreated(category string) { p.created[category]++ }

func (p *postCounterStub) RecordPostsDeleted(category string, n int) { p.deleted[category] += n }

type boardCacheStub struct {
	mu          sync.Mutex
	stored      *models.Board
	invalidated int
}

func (c *boardCacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored == nil {
		return false, nil
	}
	*dest.(*models.Board) = *cloneBoard(c.stored)
	return true, nil
}

func (c *boardCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = cloneBoard(value.(*models.Board))
	return nil
}

func (c *boardCacheStub) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = nil
	c.invalidated++
	return nil
}

var fixedNow = time.Date(2024, 10, 31, 4, 30, 15, 0, time.UTC)

func newTestBoardService(store boardStore, cache boardCache, metrics postCounter) *BoardService {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	stamper := NewPostStamper(loc, func() time.Time { return fixedNow })
	return NewBoardService(store, cache, metrics, stamper, validator.New(), nil)
}

func TestCreateHoliday(t *testing.T) {
	store := newBoardStoreStub()
	counter := newPostCounterStub()
	svc := newTestBoardService(store, nil, counter)

	post, err := svc.CreateHoliday(context.Background(), dto.CreatePostRequest{Text: "Diwali break"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), post.ID)
	assert.Equal(t, "Diwali break", post.Text)
	assert.Equal(t, "31/10/2024, 10:00:15 am", post.Date)
	assert.Empty(t, post.Faculty)

	board := svc.Data(context.Background())
	require.Len(t, board.Holidays, 1)
	assert.Equal(t, *post, board.Holidays[0])
	assert.Equal(t, 1, counter.created[CategoryHoliday])
}

func TestCreatePostRejectsEmptyText(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	_, err := svc.CreateHoliday(context.Background(), dto.CreatePostRequest{Text: ""})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Text is required", appErr.Message)

	_, err = svc.CreateKeyInfo(context.Background(), dto.CreatePostRequest{Text: ""})
	require.Error(t, err)
	assert.Zero(t, store.saves)
}

func TestCreatePostAcceptsWhitespaceText(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	post, err := svc.CreateHoliday(context.Background(), dto.CreatePostRequest{Text: "   "})
	require.NoError(t, err)
	assert.Equal(t, "   ", post.Text)

	_, err = svc.CreatePaymentDue(context.Background(), dto.CreatePaymentDueRequest{ClassCode: " ", Text: "\t"})
	require.NoError(t, err)
	require.Len(t, store.board.Holidays, 1)
	require.Len(t, store.board.PaymentDues[" "], 1)
}

func TestCreateKeyInfo(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	post, err := svc.CreateKeyInfo(context.Background(), dto.CreatePostRequest{Text: "School reopens Monday"})
	require.NoError(t, err)
	require.Len(t, store.board.KeyInfo, 1)
	assert.Equal(t, post.ID, store.board.KeyInfo[0].ID)
	assert.Empty(t, store.board.Holidays)
}

func TestCreatePaymentDueCreatesClassList(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	_, err := svc.CreatePaymentDue(context.Background(), dto.CreatePaymentDueRequest{ClassCode: "10a", Text: "Term 2 fee"})
	require.NoError(t, err)
	require.Len(t, store.board.PaymentDues, 1)
	require.Len(t, store.board.PaymentDues["10a"], 1)

	_, err = svc.CreatePaymentDue(context.Background(), dto.CreatePaymentDueRequest{ClassCode: "10a", Text: "Bus fee"})
	require.NoError(t, err)
	assert.Len(t, store.board.PaymentDues["10a"], 2)

	_, err = svc.CreatePaymentDue(context.Background(), dto.CreatePaymentDueRequest{Text: "no class"})
	require.Error(t, err)
	assert.Equal(t, "Class code and text are required", appErrors.FromError(err).Message)
}

func TestCreateFacultyPost(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	post, err := svc.CreateFacultyPost(context.Background(), dto.CreateFacultyPostRequest{
		ClassCode: "222p-1a", Type: "homework", Text: "Ch.3 exercises", FacultyCode: "F12",
	})
	require.NoError(t, err)
	assert.Equal(t, "F12", post.Faculty)

	set := store.board.FacultyPosts["222p-1a"]
	require.NotNil(t, set)
	require.Len(t, set.Homework, 1)
	assert.Equal(t, *post, set.Homework[0])
	assert.Empty(t, set.Assignment)
	assert.Empty(t, set.Subject)
}

func TestCreateFacultyPostValidation(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	_, err := svc.CreateFacultyPost(context.Background(), dto.CreateFacultyPostRequest{
		ClassCode: "1a", Type: "quiz", Text: "x", FacultyCode: "F1",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid post type", appErrors.FromError(err).Message)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)

	_, err = svc.CreateFacultyPost(context.Background(), dto.CreateFacultyPostRequest{
		ClassCode: "1a", Type: "homework", Text: "x",
	})
	require.Error(t, err)
	assert.Equal(t, "All fields are required", appErrors.FromError(err).Message)

	assert.Empty(t, store.board.FacultyPosts)
	assert.Zero(t, store.saves)
}

func TestCreatePostSaveFailure(t *testing.T) {
	store := newBoardStoreStub()
	store.saveErr = errors.New("read-only file system")
	counter := newPostCounterStub()
	svc := newTestBoardService(store, nil, counter)

	_, err := svc.CreateHoliday(context.Background(), dto.CreatePostRequest{Text: "x"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "Failed to save data", appErr.Message)
	assert.Equal(t, 500, appErr.Status)
	assert.Empty(t, store.board.Holidays)
	assert.Zero(t, counter.created[CategoryHoliday])
}

func TestPostIDsStayUnique(t *testing.T) {
	store := newBoardStoreStub()
	svc := newTestBoardService(store, nil, nil)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		post, err := svc.CreateHoliday(context.Background(), dto.CreatePostRequest{Text: "same millisecond"})
		require.NoError(t, err)
		require.False(t, seen[post.ID], "duplicate id %d", post.ID)
		seen[post.ID] = true
	}
}

func TestPostIDsPassStoredIDs(t *testing.T) {
	store := newBoardStoreStub()
	future := fixedNow.Add(time.Hour).UnixMilli()
	store.board.KeyInfo = []models.Post{{ID: future, Text: "from a fast clock", Date: "d"}}
	svc := newTestBoardService(store, nil, nil)

	post, err := svc.CreateHoliday(context.Background(), dto.CreatePostRequest{Text: "x"})
	require.NoError(t, err)
	assert.Greater(t, post.ID, future)
}

func TestDeletePost(t *testing.T) {
	store := newBoardStoreStub()
	store.board.Holidays = []models.Post{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}, {ID: 3, Text: "c"}}
	store.board.KeyInfo = []models.Post{{ID: 2, Text: "k"}}
	counter := newPostCounterStub()
	svc := newTestBoardService(store, nil, counter)
	ctx := context.Background()

	require.NoError(t, svc.DeletePost(ctx, "holiday", "2"))
	assert.Equal(t, []models.Post{{ID: 1, Text: "a"}, {ID: 3, Text: "c"}}, store.board.Holidays)
	assert.Len(t, store.board.KeyInfo, 1)
	assert.Equal(t, 1, counter.deleted["holiday"])

	require.NoError(t, svc.DeletePost(ctx, "holiday", "999"))
	assert.Len(t, store.board.Holidays, 2)

	require.NoError(t, svc.DeletePost(ctx, "keyinfo", "2"))
	assert.Empty(t, store.board.KeyInfo)
}

func TestDeletePostNoOps(t *testing.T) {
	store := newBoardStoreStub()
	store.board.Holidays = []models.Post{{ID: 1}}
	svc := newTestBoardService(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeletePost(ctx, "paymentdue", "1"))
	require.NoError(t, svc.DeletePost(ctx, "holiday", "not-a-number"))
	assert.Len(t, store.board.Holidays, 1)
	assert.Zero(t, store.saves)
}

func TestDeletePostSaveFailure(t *testing.T) {
	store := newBoardStoreStub()
	store.board.Holidays = []models.Post{{ID: 1}}
	store.saveErr = errors.New("disk full")
	svc := newTestBoardService(store, nil, nil)

	err := svc.DeletePost(context.Background(), "holiday", "1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Failed to save data", appErr.Message)
	assert.Len(t, store.board.Holidays, 1)
}

func TestDeletePostWriterFailure(t *testing.T) {
	store := newBoardStoreStub()
	store.board.Holidays = []models.Post{{ID: 1}}
	store.mutateErr = fmt.Errorf("writer board: %w", jobs.ErrWriterStopped)
	svc := newTestBoardService(store, nil, nil)

	err := svc.DeletePost(context.Background(), "holiday", "1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Failed to delete post", appErr.Message)
	assert.ErrorIs(t, err, jobs.ErrWriterStopped)
}

func TestDataUsesCacheAndWritesThroughOnMutation(t *testing.T) {
	store := newBoardStoreStub()
	cache := &boardCacheStub{}
	svc := newTestBoardService(store, cache, nil)
	ctx := context.Background()

	first := svc.Data(ctx)
	assert.Empty(t, first.Holidays)
	require.NotNil(t, cache.stored)

	_, err := svc.CreateHoliday(ctx, dto.CreatePostRequest{Text: "Founders day"})
	require.NoError(t, err)
	assert.Zero(t, cache.invalidated)
	require.NotNil(t, cache.stored)
	assert.Len(t, cache.stored.Holidays, 1)

	second := svc.Data(ctx)
	require.Len(t, second.Holidays, 1)

	store.board.Holidays = nil
	third := svc.Data(ctx)
	assert.Len(t, third.Holidays, 1, "served from cache")
}

func TestDataDoesNotCacheBoardLoadedBeforeConcurrentWrite(t *testing.T) {
	store := newBoardStoreStub()
	store.loading = make(chan struct{})
	store.release = make(chan struct{})
	cache := &boardCacheStub{}
	svc := newTestBoardService(store, cache, nil)
	ctx := context.Background()

	read := make(chan *models.Board, 1)
	go func() { read <- svc.Data(ctx) }()
	<-store.loading

	post, err := svc.CreateHoliday(ctx, dto.CreatePostRequest{Text: "Sports day"})
	require.NoError(t, err)

	close(store.release)
	assert.Empty(t, (<-read).Holidays)

	store.mu.Lock()
	store.loading, store.release = nil, nil
	store.mu.Unlock()

	later := svc.Data(ctx)
	require.Len(t, later.Holidays, 1)
	assert.Equal(t, post.ID, later.Holidays[0].ID)
}

func TestOlderMutationDoesNotOverwriteNewerCachedBoard(t *testing.T) {
	store := newBoardStoreStub()
	cache := &boardCacheStub{}
	svc := newTestBoardService(store, cache, nil)
	ctx := context.Background()

	older := models.NewBoard()
	newer := models.NewBoard()
	newer.Holidays = []models.Post{{ID: 2, Text: "newer"}}
	first := svc.nextOrdinal()
	second := svc.nextOrdinal()

	svc.afterMutation(ctx, newer, second)
	svc.afterMutation(ctx, older, first)

	board := svc.Data(ctx)
	require.Len(t, board.Holidays, 1)
	assert.Equal(t, "newer", board.Holidays[0].Text)
}
