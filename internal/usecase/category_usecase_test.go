package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCategoryRepo struct {
	items     map[uuid.UUID]*domain.Category
	order     []uuid.UUID
	lastList  *ListCategoriesReq
	updates   int
	listErr   error
	updateErr error
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{items: map[uuid.UUID]*domain.Category{}}
}

func cloneCategory(c *domain.Category) *domain.Category {
	return domain.RestoreCategory(c.ID(), c.Name(), c.Description(), c.IsActive(), c.CreatedAt())
}

func (r *stubCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.items[category.ID()] = cloneCategory(category)
	r.order = append(r.order, category.ID())
	return nil
}

func (r *stubCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.items[category.ID()]; !ok {
		return e.ErrCategoryNotFound
	}
	r.updates++
	r.items[category.ID()] = cloneCategory(category)
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return e.ErrCategoryNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *stubCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	return cloneCategory(c), nil
}

func (r *stubCategoryRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return r.GetByID(ctx, id)
}

func (r *stubCategoryRepo) List(_ context.Context, req *ListCategoriesReq) ([]*domain.Category, int64, error) {
	r.lastList = req
	if r.listErr != nil {
		return nil, 0, r.listErr
	}

	from := (req.Page - 1) * req.PerPage
	if from > len(r.order) {
		from = len(r.order)
	}
	to := from + req.PerPage
	if to > len(r.order) {
		to = len(r.order)
	}

	res := make([]*domain.Category, 0, to-from)
	for _, id := range r.order[from:to] {
		res = append(res, cloneCategory(r.items[id]))
	}
	return res, int64(len(r.order)), nil
}

type stubOutboxRepo struct {
	events []*OutboxEvent
}

func (r *stubOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return event, nil
}

func (r *stubOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *stubOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r *stubOutboxRepo) MarkAsFailed(context.Context, int64) error { return nil }

func (r *stubOutboxRepo) ReturnToPending(context.Context, int64) error { return nil }

func (r *stubOutboxRepo) MarkAsDead(context.Context, int64) error { return nil }

type stubCacheRepo struct {
	items   map[uuid.UUID]*domain.Category
	deleted []uuid.UUID
	getErr  error
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{items: map[uuid.UUID]*domain.Category{}}
}

func (r *stubCacheRepo) GetCategory(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.items[id], nil
}

func (r *stubCacheRepo) SetCategory(_ context.Context, category *domain.Category) error {
	r.items[category.ID()] = cloneCategory(category)
	return nil
}

func (r *stubCacheRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubExportStorage struct {
	name        string
	data        []byte
	contentType string
}

func (s *stubExportStorage) Upload(_ context.Context, name string, data []byte, contentType string) (string, error) {
	s.name = name
	s.data = data
	s.contentType = contentType
	return "categories/" + name, nil
}

type passthroughTxManager struct {
	calls int
}

func (m *passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type categoryUCFixture struct {
	uc      *CategoryUseCase
	repo    *stubCategoryRepo
	outbox  *stubOutboxRepo
	cache   *stubCacheRepo
	storage *stubExportStorage
	tx      *passthroughTxManager
}

func newCategoryUCFixture() *categoryUCFixture {
	f := &categoryUCFixture{
		repo:    newStubCategoryRepo(),
		outbox:  &stubOutboxRepo{},
		cache:   newStubCacheRepo(),
		storage: &stubExportStorage{},
		tx:      &passthroughTxManager{},
	}
	f.uc = NewCategoryUC(f.repo, f.outbox, f.cache, f.storage, f.tx, logger.NewNop())
	return f
}

func (f *categoryUCFixture) seed(t *testing.T, name string, isActive bool) *domain.Category {
	t.Helper()

	desc := "description of " + name
	category, err := domain.NewCategory(name, &desc, domain.WithIsActive(isActive))
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), category))
	return category
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func decodePayload(t *testing.T, event *OutboxEvent) CategoryEventPayload {
	t.Helper()

	var payload CategoryEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	return payload
}

func TestCategoryUseCase_CreateCategory(t *testing.T) {
	f := newCategoryUCFixture()

	out, err := f.uc.CreateCategory(context.Background(), NewCreateCategoryReq("Movie", strPtr("Films"), nil))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, out.ID)
	assert.Equal(t, "Movie", out.Name)
	assert.Equal(t, "Films", out.Description)
	assert.True(t, out.IsActive)
	assert.Contains(t, f.repo.items, out.ID)
	assert.Equal(t, 1, f.tx.calls)

	require.Len(t, f.outbox.events, 1)
	event := f.outbox.events[0]
	assert.Equal(t, CategoryCreated, event.EventType)
	assert.Equal(t, out.ID, event.AggregateID)
	assert.Equal(t, Pending, event.Status)

	payload := decodePayload(t, event)
	assert.Equal(t, event.EventID, payload.EventID)
	assert.Equal(t, CategoryCreated, payload.EventType)
	assert.Equal(t, out.ID, payload.Category.ID)
	assert.Equal(t, "Movie", payload.Category.Name)
	assert.True(t, payload.Category.IsActive)
}

func TestCategoryUseCase_CreateCategory_Inactive(t *testing.T) {
	f := newCategoryUCFixture()

	out, err := f.uc.CreateCategory(context.Background(), NewCreateCategoryReq("Movie", strPtr(""), boolPtr(false)))
	require.NoError(t, err)

	assert.False(t, out.IsActive)
	assert.False(t, f.repo.items[out.ID].IsActive())
}

func TestCategoryUseCase_CreateCategory_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateCategoryReq
		message string
	}{
		{"empty name", NewCreateCategoryReq("", strPtr("d"), nil), domain.MsgNameRequired},
		{"short name", NewCreateCategoryReq("ab", strPtr("d"), nil), domain.MsgNameTooShort},
		{"nil description", NewCreateCategoryReq("Movie", nil, nil), domain.MsgDescriptionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryUCFixture()

			out, err := f.uc.CreateCategory(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, out)

			var vErr *domain.EntityValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.message, vErr.Message)
			assert.ErrorIs(t, err, e.ErrEntityValidation)

			assert.Empty(t, f.repo.items)
			assert.Empty(t, f.outbox.events)
			assert.Zero(t, f.tx.calls)
		})
	}
}

func TestCategoryUseCase_GetCategory_CacheHit(t *testing.T) {
	f := newCategoryUCFixture()
	cached := domain.RestoreCategory(uuid.New(), "Cached", "from cache", true, time.Now())
	f.cache.items[cached.ID()] = cached

	out, err := f.uc.GetCategory(context.Background(), cached.ID())
	require.NoError(t, err)

	assert.Equal(t, "Cached", out.Name)
	assert.Equal(t, "from cache", out.Description)
}

func TestCategoryUseCase_GetCategory_CacheMissWarmsCache(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Series", true)

	out, err := f.uc.GetCategory(context.Background(), category.ID())
	require.NoError(t, err)

	assert.Equal(t, category.ID(), out.ID)
	assert.Equal(t, "Series", out.Name)
	require.Contains(t, f.cache.items, category.ID())
	assert.Equal(t, "Series", f.cache.items[category.ID()].Name())
}

func TestCategoryUseCase_GetCategory_CacheErrorFallsBack(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Series", true)
	f.cache.getErr = errors.New("redis down")

	out, err := f.uc.GetCategory(context.Background(), category.ID())
	require.NoError(t, err)
	assert.Equal(t, category.ID(), out.ID)
}

func TestCategoryUseCase_GetCategory_NotFound(t *testing.T) {
	f := newCategoryUCFixture()

	out, err := f.uc.GetCategory(context.Background(), uuid.New())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestCategoryUseCase_ListCategories(t *testing.T) {
	f := newCategoryUCFixture()
	f.seed(t, "Alpha", true)
	f.seed(t, "Beta", false)

	res, err := f.uc.ListCategories(context.Background(), &ListCategoriesReq{Search: "  al  "})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, DefaultPage, res.Page)
	assert.Equal(t, DefaultPerPage, res.PerPage)
	assert.Len(t, res.Items, 2)

	require.NotNil(t, f.repo.lastList)
	assert.Equal(t, SortByName, f.repo.lastList.Sort)
	assert.Equal(t, SortAsc, f.repo.lastList.Dir)
	assert.Equal(t, "al", f.repo.lastList.Search)
}

func TestCategoryUseCase_ListCategories_SortNormalization(t *testing.T) {
	f := newCategoryUCFixture()

	_, err := f.uc.ListCategories(context.Background(), NewListCategoriesReq(2, 100, "", "CREATED_AT", "DESC"))
	require.NoError(t, err)

	assert.Equal(t, 2, f.repo.lastList.Page)
	assert.Equal(t, MaxPerPage, f.repo.lastList.PerPage)
	assert.Equal(t, SortByCreatedAt, f.repo.lastList.Sort)
	assert.Equal(t, SortDesc, f.repo.lastList.Dir)
}

func TestCategoryUseCase_ListCategories_InvalidParams(t *testing.T) {
	tests := []struct {
		name string
		req  *ListCategoriesReq
	}{
		{"negative page", NewListCategoriesReq(-1, 10, "", "", "")},
		{"negative per page", NewListCategoriesReq(1, -5, "", "", "")},
		{"per page over limit", NewListCategoriesReq(1, MaxPerPage+1, "", "", "")},
		{"page over int32", NewListCategoriesReq(MaxPage+1, 10, "", "", "")},
		{"page at int max", NewListCategoriesReq(math.MaxInt, MaxPerPage, "", "", "")},
		{"unknown sort", NewListCategoriesReq(1, 10, "", "description", "")},
		{"unknown dir", NewListCategoriesReq(1, 10, "", "", "sideways")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryUCFixture()

			res, err := f.uc.ListCategories(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, e.ErrInvalidPagination)
			assert.Nil(t, f.repo.lastList)
		})
	}
}

func TestCategoryUseCase_ListCategories_LastPage(t *testing.T) {
	f := newCategoryUCFixture()

	_, err := f.uc.ListCategories(context.Background(), NewListCategoriesReq(MaxPage, MaxPerPage, "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, MaxPage, f.repo.lastList.Page)
}

func TestCategoryUseCase_UpdateCategory(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Movie", true)

	out, err := f.uc.UpdateCategory(context.Background(),
		NewUpdateCategoryReq(category.ID(), "Movies", strPtr("All movies"), nil))
	require.NoError(t, err)

	assert.Equal(t, "Movies", out.Name)
	assert.Equal(t, "All movies", out.Description)
	assert.True(t, out.IsActive)
	assert.Equal(t, "Movies", f.repo.items[category.ID()].Name())

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, CategoryUpdated, f.outbox.events[0].EventType)
	assert.Equal(t, []uuid.UUID{category.ID()}, f.cache.deleted)
}

func TestCategoryUseCase_UpdateCategory_KeepsDescriptionWhenNil(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Movie", true)

	out, err := f.uc.UpdateCategory(context.Background(),
		NewUpdateCategoryReq(category.ID(), "Movies", nil, boolPtr(false)))
	require.NoError(t, err)

	assert.Equal(t, "Movies", out.Name)
	assert.Equal(t, category.Description(), out.Description)
	assert.False(t, out.IsActive)
}

func TestCategoryUseCase_UpdateCategory_ValidationErrorLeavesStoredState(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Movie", true)

	out, err := f.uc.UpdateCategory(context.Background(),
		NewUpdateCategoryReq(category.ID(), "ab", strPtr("changed"), nil))
	require.Error(t, err)
	assert.Nil(t, out)

	var vErr *domain.EntityValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, domain.MsgNameTooShort, vErr.Message)

	stored := f.repo.items[category.ID()]
	assert.Equal(t, "Movie", stored.Name())
	assert.Equal(t, category.Description(), stored.Description())
	assert.Zero(t, f.repo.updates)
	assert.Empty(t, f.outbox.events)
	assert.Empty(t, f.cache.deleted)
}

func TestCategoryUseCase_UpdateCategory_NotFound(t *testing.T) {
	f := newCategoryUCFixture()

	_, err := f.uc.UpdateCategory(context.Background(),
		NewUpdateCategoryReq(uuid.New(), "Movies", nil, nil))
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
}

func TestCategoryUseCase_UpdateCategory_RepoError(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Movie", true)
	f.repo.updateErr = errors.New("connection reset")

	_, err := f.uc.UpdateCategory(context.Background(),
		NewUpdateCategoryReq(category.ID(), "Movies", nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, f.outbox.events)
}

func TestCategoryUseCase_ActivateDeactivate(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Movie", false)
	ctx := context.Background()

	out, err := f.uc.ActivateCategory(ctx, category.ID())
	require.NoError(t, err)
	assert.True(t, out.IsActive)
	assert.True(t, f.repo.items[category.ID()].IsActive())

	out, err = f.uc.DeactivateCategory(ctx, category.ID())
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	assert.False(t, f.repo.items[category.ID()].IsActive())

	require.Len(t, f.outbox.events, 2)
	assert.Equal(t, CategoryActivated, f.outbox.events[0].EventType)
	assert.Equal(t, CategoryDeactivated, f.outbox.events[1].EventType)
	assert.False(t, decodePayload(t, f.outbox.events[1]).Category.IsActive)
	assert.Len(t, f.cache.deleted, 2)
}

func TestCategoryUseCase_ActivateCategory_NotFound(t *testing.T) {
	f := newCategoryUCFixture()

	_, err := f.uc.ActivateCategory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
	assert.Empty(t, f.outbox.events)
}

func TestCategoryUseCase_DeleteCategory(t *testing.T) {
	f := newCategoryUCFixture()
	category := f.seed(t, "Movie", true)
	f.cache.items[category.ID()] = cloneCategory(category)

	require.NoError(t, f.uc.DeleteCategory(context.Background(), category.ID()))

	assert.NotContains(t, f.repo.items, category.ID())
	assert.NotContains(t, f.cache.items, category.ID())
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, CategoryDeleted, f.outbox.events[0].EventType)
	assert.Equal(t, "Movie", decodePayload(t, f.outbox.events[0]).Category.Name)
}

func TestCategoryUseCase_DeleteCategory_NotFound(t *testing.T) {
	f := newCategoryUCFixture()

	err := f.uc.DeleteCategory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrCategoryNotFound)
	assert.Empty(t, f.outbox.events)
	assert.Empty(t, f.cache.deleted)
}

func TestCategoryUseCase_ExportCategories(t *testing.T) {
	f := newCategoryUCFixture()
	f.uc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC) }
	f.seed(t, "Movie", true)
	f.seed(t, "Series", false)

	res, err := f.uc.ExportCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "categories/snapshot-20240305T102030Z.json", res.Key)
	assert.Equal(t, "application/json", f.storage.contentType)
	assert.Equal(t, SortByCreatedAt, f.repo.lastList.Sort)

	var export CategoryExport
	require.NoError(t, json.Unmarshal(f.storage.data, &export))
	assert.Equal(t, 2, export.Count)
	require.Len(t, export.Categories, 2)
	assert.Equal(t, "Movie", export.Categories[0].Name)
	assert.False(t, export.Categories[1].IsActive)
}

func TestCategoryUseCase_ExportCategories_MultiplePages(t *testing.T) {
	f := newCategoryUCFixture()
	for i := 0; i < MaxPerPage+5; i++ {
		f.seed(t, fmt.Sprintf("Category %03d", i), true)
	}

	res, err := f.uc.ExportCategories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, MaxPerPage+5, res.Count)
	assert.Equal(t, 2, f.repo.lastList.Page)
	assert.True(t, strings.HasPrefix(f.storage.name, "snapshot-"))
}

func TestCategoryUseCase_ExportCategories_Empty(t *testing.T) {
	f := newCategoryUCFixture()

	res, err := f.uc.ExportCategories(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Count)

	var export CategoryExport
	require.NoError(t, json.Unmarshal(f.storage.data, &export))
	assert.NotNil(t, export.Categories)
	assert.Empty(t, export.Categories)
}

func TestCategoryUseCase_ExportCategories_ListError(t *testing.T) {
	f := newCategoryUCFixture()
	f.repo.listErr = errors.New("db down")

	res, err := f.uc.ExportCategories(context.Background())
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Nil(t, f.storage.data)
}
