package thread

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/forumdesk/admin-api/internal/model"
)

type fakeFetcher struct {
	mu         sync.Mutex
	topCalls   int
	replyCalls map[uuid.UUID]int

	top         []model.Comment
	replies     map[uuid.UUID][]model.Comment
	failReplies map[uuid.UUID]error

	started    chan struct{} // signalled when a reply fetch begins
	startedTop chan struct{} // signalled when a top-level fetch begins
	gate       chan struct{} // fetches block here when non-nil
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		replyCalls:  map[uuid.UUID]int{},
		replies:     map[uuid.UUID][]model.Comment{},
		failReplies: map[uuid.UUID]error{},
	}
}

func (f *fakeFetcher) TopLevel(ctx context.Context, root Root, offset int, limit int) ([]model.Comment, int, error) {
	if f.startedTop != nil {
		f.startedTop <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.topCalls++
	f.mu.Unlock()

	end := offset + limit
	if end > len(f.top) {
		end = len(f.top)
	}
	if offset > len(f.top) {
		offset = len(f.top)
	}
	return append([]model.Comment{}, f.top[offset:end]...), len(f.top), nil
}

func (f *fakeFetcher) Replies(ctx context.Context, parentId uuid.UUID, limit int) ([]model.Comment, int, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.replyCalls[parentId]++
	err := f.failReplies[parentId]
	f.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}

	rs := f.replies[parentId]
	end := limit
	if end > len(rs) {
		end = len(rs)
	}
	return append([]model.Comment{}, rs[:end]...), len(rs), nil
}

func (f *fakeFetcher) totalTopCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topCalls
}

func (f *fakeFetcher) totalReplyCalls(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replyCalls[id]
}

func makeComment(hasReplies bool) model.Comment {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	return model.Comment{
		Id:             uuid.New(),
		Body:           "comment body",
		Status:         model.CommentStatusApproved,
		HasReplies:     hasReplies,
		CreateDatetime: now,
		UpdateDatetime: now,
	}
}

func makeReply(parent model.Comment) model.Comment {
	c := makeComment(false)
	parentId := parent.Id
	c.ParentId = &parentId
	return c
}

func testRoot() Root {
	return Root{Kind: RootPost, Id: uuid.New()}
}

func TestLoadTopLevelPaginatesCumulatively(t *testing.T) {
	fetcher := newFakeFetcher()
	for i := 0; i < 7; i++ {
		fetcher.top = append(fetcher.top, makeComment(false))
	}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)

	require.NoError(t, store.LoadTopLevel(context.Background(), 5))
	view := store.Snapshot()
	assert.Equal(t, 5, view.LoadedCount)
	assert.Equal(t, 7, view.TotalCount)
	assert.Len(t, view.Comments, 5)

	require.NoError(t, store.LoadTopLevel(context.Background(), 5))
	view = store.Snapshot()
	assert.Equal(t, 7, view.LoadedCount)
	assert.Equal(t, 7, view.TotalCount)

	// Window exhausted: no further fetch happens.
	require.NoError(t, store.LoadTopLevel(context.Background(), 5))
	assert.Equal(t, 2, fetcher.totalTopCalls())
}

func TestConcurrentLoadSameWindowFetchesOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	for i := 0; i < 5; i++ {
		fetcher.top = append(fetcher.top, makeComment(false))
	}
	fetcher.startedTop = make(chan struct{}, 1)
	fetcher.gate = make(chan struct{})
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = store.LoadTopLevel(context.Background(), 5)
	}()

	// First caller is inside the fetch and blocked; the second joins the
	// in-flight call instead of issuing its own.
	<-fetcher.startedTop
	go func() {
		defer wg.Done()
		errs[1] = store.LoadTopLevel(context.Background(), 5)
	}()
	time.Sleep(20 * time.Millisecond)

	close(fetcher.gate)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, fetcher.totalTopCalls())

	view := store.Snapshot()
	assert.Equal(t, 5, view.LoadedCount, "shared fetch must not double-append")
}

func TestExpandFetchesOnceAndCollapseKeepsCache(t *testing.T) {
	fetcher := newFakeFetcher()
	parent := makeComment(true)
	fetcher.top = []model.Comment{parent}
	fetcher.replies[parent.Id] = []model.Comment{makeReply(parent), makeReply(parent), makeReply(parent)}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))

	require.NoError(t, store.Expand(context.Background(), parent.Id))
	view := store.Snapshot()
	require.Len(t, view.Comments, 1)
	node := view.Comments[0]
	assert.Equal(t, StateLoaded, node.State)
	assert.True(t, node.Expanded)
	assert.Len(t, node.Replies, 3)
	assert.Equal(t, 3, node.LoadedReplies)
	assert.Equal(t, 3, node.TotalReplies)
	assert.Equal(t, 1, fetcher.totalReplyCalls(parent.Id))

	require.NoError(t, store.Collapse(parent.Id))
	view = store.Snapshot()
	node = view.Comments[0]
	assert.Equal(t, StateCollapsed, node.State)
	assert.False(t, node.Expanded)
	assert.Empty(t, node.Replies)
	// Reply counts survive the collapse.
	assert.Equal(t, 3, node.LoadedReplies)

	// Re-expanding costs no fetch.
	require.NoError(t, store.Expand(context.Background(), parent.Id))
	view = store.Snapshot()
	assert.Len(t, view.Comments[0].Replies, 3)
	assert.Equal(t, 1, fetcher.totalReplyCalls(parent.Id))
}

func TestExpandWithoutRepliesSkipsFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	leaf := makeComment(false)
	fetcher.top = []model.Comment{leaf}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))

	require.NoError(t, store.Expand(context.Background(), leaf.Id))
	view := store.Snapshot()
	node := view.Comments[0]
	assert.Equal(t, StateLoaded, node.State)
	assert.False(t, node.ShowEmptyNotice)
	assert.Equal(t, 0, fetcher.totalReplyCalls(leaf.Id))
}

func TestEmptyNoticeWhenServerPromisedReplies(t *testing.T) {
	fetcher := newFakeFetcher()
	parent := makeComment(true)
	fetcher.top = []model.Comment{parent}
	// hasReplies said true but the window comes back empty.
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))

	require.NoError(t, store.Expand(context.Background(), parent.Id))
	view := store.Snapshot()
	node := view.Comments[0]
	assert.Equal(t, StateLoaded, node.State)
	assert.True(t, node.ShowEmptyNotice)
	assert.Empty(t, node.Replies)
}

func TestReplyErrorThenRetry(t *testing.T) {
	fetcher := newFakeFetcher()
	parent := makeComment(true)
	fetcher.top = []model.Comment{parent}
	fetcher.replies[parent.Id] = []model.Comment{makeReply(parent)}
	fetcher.failReplies[parent.Id] = errors.New("backend unavailable")
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))

	err := store.Expand(context.Background(), parent.Id)
	require.Error(t, err)

	view := store.Snapshot()
	node := view.Comments[0]
	assert.Equal(t, StateError, node.State)
	assert.NotEmpty(t, node.Error)
	assert.Empty(t, node.Replies)

	// Retry from a non-error state is a no-op.
	fetcher.mu.Lock()
	delete(fetcher.failReplies, parent.Id)
	fetcher.mu.Unlock()

	require.NoError(t, store.Retry(context.Background(), parent.Id))
	view = store.Snapshot()
	node = view.Comments[0]
	assert.Equal(t, StateLoaded, node.State)
	assert.Empty(t, node.Error)
	assert.Len(t, node.Replies, 1)

	require.NoError(t, store.Retry(context.Background(), parent.Id))
	assert.Equal(t, 2, fetcher.totalReplyCalls(parent.Id))
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	fetcher := newFakeFetcher()
	parent := makeComment(true)
	fetcher.top = []model.Comment{parent}
	fetcher.replies[parent.Id] = []model.Comment{makeReply(parent)}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))

	fetcher.started = make(chan struct{}, 1)
	fetcher.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- store.Expand(context.Background(), parent.Id)
	}()

	<-fetcher.started
	store.Close()
	close(fetcher.gate)

	err := <-done
	assert.ErrorIs(t, err, ErrStoreClosed)

	view := store.Snapshot()
	assert.Equal(t, 0, view.Comments[0].LoadedReplies, "late result must not be applied")

	assert.ErrorIs(t, store.LoadTopLevel(context.Background(), 10), ErrStoreClosed)
	assert.ErrorIs(t, store.Collapse(parent.Id), ErrStoreClosed)
}

func TestExpandUnknownComment(t *testing.T) {
	fetcher := newFakeFetcher()
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)

	var notFoundErr *model.NotFoundError
	err := store.Expand(context.Background(), uuid.New())
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestNestedExpandDepths(t *testing.T) {
	fetcher := newFakeFetcher()
	top := makeComment(true)
	mid := makeReply(top)
	mid.HasReplies = true
	leaf := makeReply(mid)
	fetcher.top = []model.Comment{top}
	fetcher.replies[top.Id] = []model.Comment{mid}
	fetcher.replies[mid.Id] = []model.Comment{leaf}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))

	require.NoError(t, store.Expand(context.Background(), top.Id))
	require.NoError(t, store.Expand(context.Background(), mid.Id))

	view := store.Snapshot()
	require.Len(t, view.Comments, 1)
	assert.Equal(t, 0, view.Comments[0].Depth)
	require.Len(t, view.Comments[0].Replies, 1)
	assert.Equal(t, 1, view.Comments[0].Replies[0].Depth)
	require.Len(t, view.Comments[0].Replies[0].Replies, 1)
	assert.Equal(t, 2, view.Comments[0].Replies[0].Replies[0].Depth)
}

func TestDepthBoundStopsExpansion(t *testing.T) {
	fetcher := newFakeFetcher()
	top := makeComment(true)
	reply := makeReply(top)
	reply.HasReplies = true
	fetcher.top = []model.Comment{top}
	fetcher.replies[top.Id] = []model.Comment{reply}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 1)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))
	require.NoError(t, store.Expand(context.Background(), top.Id))

	var validationErr *model.ValidationError
	err := store.Expand(context.Background(), reply.Id)
	assert.ErrorAs(t, err, &validationErr)
}

func TestRemoveUpdatesParentAndTopCounts(t *testing.T) {
	fetcher := newFakeFetcher()
	parent := makeComment(true)
	other := makeComment(false)
	r1 := makeReply(parent)
	r2 := makeReply(parent)
	fetcher.top = []model.Comment{parent, other}
	fetcher.replies[parent.Id] = []model.Comment{r1, r2}
	store := NewStore(testRoot(), fetcher, zap.NewNop(), 5, 0)
	require.NoError(t, store.LoadTopLevel(context.Background(), 10))
	require.NoError(t, store.Expand(context.Background(), parent.Id))

	store.Remove(r1.Id)
	view := store.Snapshot()
	node := view.Comments[0]
	assert.Equal(t, 1, node.LoadedReplies)
	assert.Equal(t, 1, node.TotalReplies)
	assert.Len(t, node.Replies, 1)

	// Removing a top-level comment drops its loaded subtree too.
	store.Remove(parent.Id)
	view = store.Snapshot()
	assert.Equal(t, 1, view.LoadedCount)
	assert.Equal(t, 1, view.TotalCount)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, other.Id, view.Comments[0].Comment.Id)
}
