package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/repository"
	"github.com/forumdesk/admin-api/internal/thread"
)

// ThreadUsecase owns one thread.Store per open thread root. A store is
// created on the first top-level load, survives across requests while the
// moderator keeps the detail view open, and is torn down on CloseThread so
// late fetch results have nowhere to land.
type ThreadUsecase struct {
	CommentRepository *repository.CommentRepository
	Log               *zap.Logger
	Config            *koanf.Koanf

	mu     sync.Mutex
	stores map[string]*thread.Store
}

func NewThreadUsecase(commentRepository *repository.CommentRepository, zap *zap.Logger, koanf *koanf.Koanf) *ThreadUsecase {
	return &ThreadUsecase{
		CommentRepository: commentRepository,
		Log:               zap,
		Config:            koanf,
		stores:            map[string]*thread.Store{},
	}
}

func parseRoot(rootKindParam string, rootIdParam string) (thread.Root, error) {
	kind := thread.RootKind(rootKindParam)
	if kind != thread.RootPost && kind != thread.RootAnswer {
		return thread.Root{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Thread root must be a post or an answer",
			Param:   "rootKind",
		}
	}

	id, err := uuid.Parse(rootIdParam)
	if err != nil {
		return thread.Root{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid id",
			Param:   "rootId",
		}
	}

	return thread.Root{Kind: kind, Id: id}, nil
}

func rootKey(root thread.Root) string {
	return string(root.Kind) + ":" + root.Id.String()
}

// storeFor returns the live store of the root, creating it on first use.
func (usecase *ThreadUsecase) storeFor(root thread.Root) *thread.Store {
	usecase.mu.Lock()
	defer usecase.mu.Unlock()

	key := rootKey(root)
	store, ok := usecase.stores[key]
	if !ok {
		store = thread.NewStore(root, usecase.CommentRepository, usecase.Log,
			constant.REPLY_PAGE_SIZE, 0)
		usecase.stores[key] = store
	}
	return store
}

// lookup returns the store only if the thread is already open.
func (usecase *ThreadUsecase) lookup(root thread.Root) (*thread.Store, error) {
	usecase.mu.Lock()
	defer usecase.mu.Unlock()

	store, ok := usecase.stores[rootKey(root)]
	if !ok {
		return nil, &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Thread is not open, load it first",
		}
	}
	return store, nil
}

func (usecase *ThreadUsecase) LoadTopLevel(ctx context.Context, rootKindParam string, rootIdParam string, limit int) (model.ThreadView, error) {
	root, err := parseRoot(rootKindParam, rootIdParam)
	if err != nil {
		return model.ThreadView{}, err
	}

	if limit < 1 {
		limit = constant.DEFAULT_PAGE_SIZE
	}
	if limit > constant.MAX_THREAD_LIMIT {
		return model.ThreadView{}, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Thread page limit is exceeded max limit",
			Param:   "limit",
		}
	}

	store := usecase.storeFor(root)
	err = store.LoadTopLevel(ctx, limit)
	if err != nil {
		return model.ThreadView{}, err
	}

	return store.Snapshot(), nil
}

func (usecase *ThreadUsecase) Expand(ctx context.Context, rootKindParam string, rootIdParam string, commentIdParam string) (model.ThreadView, error) {
	return usecase.nodeOp(rootKindParam, rootIdParam, commentIdParam, func(store *thread.Store, id uuid.UUID) error {
		return store.Expand(ctx, id)
	})
}

func (usecase *ThreadUsecase) Collapse(rootKindParam string, rootIdParam string, commentIdParam string) (model.ThreadView, error) {
	return usecase.nodeOp(rootKindParam, rootIdParam, commentIdParam, func(store *thread.Store, id uuid.UUID) error {
		return store.Collapse(id)
	})
}

func (usecase *ThreadUsecase) Retry(ctx context.Context, rootKindParam string, rootIdParam string, commentIdParam string) (model.ThreadView, error) {
	return usecase.nodeOp(rootKindParam, rootIdParam, commentIdParam, func(store *thread.Store, id uuid.UUID) error {
		return store.Retry(ctx, id)
	})
}

func (usecase *ThreadUsecase) nodeOp(rootKindParam string, rootIdParam string, commentIdParam string, op func(store *thread.Store, id uuid.UUID) error) (model.ThreadView, error) {
	root, err := parseRoot(rootKindParam, rootIdParam)
	if err != nil {
		return model.ThreadView{}, err
	}

	commentId, err := parseId(commentIdParam, "commentId")
	if err != nil {
		return model.ThreadView{}, err
	}

	store, err := usecase.lookup(root)
	if err != nil {
		return model.ThreadView{}, err
	}

	err = op(store, commentId)
	if err != nil {
		// An error node still renders; return the snapshot alongside nothing
		// only for errors that invalidate the whole view.
		var notFoundError *model.NotFoundError
		var validationError *model.ValidationError
		if errors.As(err, &notFoundError) || errors.As(err, &validationError) || errors.Is(err, thread.ErrStoreClosed) {
			return model.ThreadView{}, err
		}
		return store.Snapshot(), nil
	}

	return store.Snapshot(), nil
}

// RemoveComment reflects a committed delete into the open thread store, if
// the thread is open at all. A closed or never-opened thread needs nothing.
func (usecase *ThreadUsecase) RemoveComment(rootKindParam string, rootIdParam string, commentId uuid.UUID) {
	root, err := parseRoot(rootKindParam, rootIdParam)
	if err != nil {
		return
	}

	usecase.mu.Lock()
	store, ok := usecase.stores[rootKey(root)]
	usecase.mu.Unlock()
	if !ok {
		return
	}

	store.Remove(commentId)
}

// CloseThread tears the store down. Fetches still in flight resolve against a
// closed store and are discarded.
func (usecase *ThreadUsecase) CloseThread(rootKindParam string, rootIdParam string) error {
	root, err := parseRoot(rootKindParam, rootIdParam)
	if err != nil {
		return err
	}

	usecase.mu.Lock()
	defer usecase.mu.Unlock()

	key := rootKey(root)
	store, ok := usecase.stores[key]
	if !ok {
		return nil
	}
	store.Close()
	delete(usecase.stores, key)

	return nil
}
