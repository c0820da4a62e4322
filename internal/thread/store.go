// Package thread maintains, per thread root (a post or an answer), a forest
// of comment nodes with independently paginated, lazily fetched reply
// windows. Nodes are addressed by id in an arena rather than nested literals,
// so traversal is iterative and depth-bounded.
package thread

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/moderation"
)

type RootKind string

const (
	RootPost   RootKind = "post"
	RootAnswer RootKind = "answer"
)

type Root struct {
	Kind RootKind
	Id   uuid.UUID
}

// Fetcher loads comment windows from the backing store. TopLevel returns the
// window starting at offset plus the total number of top-level comments;
// Replies returns at most limit replies of one comment plus that comment's
// total reply count.
type Fetcher interface {
	TopLevel(ctx context.Context, root Root, offset int, limit int) ([]model.Comment, int, error)
	Replies(ctx context.Context, parentId uuid.UUID, limit int) ([]model.Comment, int, error)
}

// Node display states. A node whose replies were fetched and whose expansion
// was toggled off again reads as collapsed but keeps its cache; re-expanding
// it costs no network call.
const (
	StateCollapsed = "collapsed"
	StateLoading   = "loading"
	StateLoaded    = "loaded"
	StateError     = "error"
)

var ErrStoreClosed = errors.New("thread store is closed")

type node struct {
	comment       model.Comment
	depth         int
	expanded      bool
	state         string
	fetched       bool
	children      []uuid.UUID
	loadedReplies int
	totalReplies  int
	lastErr       error
}

// Store is safe for concurrent use. Duplicate fetches for the same window are
// collapsed through singleflight, and results resolving after Close are
// discarded instead of being applied to a dead store.
type Store struct {
	mu      sync.Mutex
	group   singleflight.Group
	root    Root
	fetcher Fetcher
	log     *zap.Logger

	replyPageSize int
	maxDepth      int

	closed   bool
	topItems []uuid.UUID
	topTotal int
	topKnown bool
	nodes    map[uuid.UUID]*node
}

func NewStore(root Root, fetcher Fetcher, zap *zap.Logger, replyPageSize int, maxDepth int) *Store {
	if replyPageSize < 1 {
		replyPageSize = constant.REPLY_PAGE_SIZE
	}
	if maxDepth < 1 {
		maxDepth = 64
	}
	return &Store{
		root:          root,
		fetcher:       fetcher,
		log:           zap,
		replyPageSize: replyPageSize,
		maxDepth:      maxDepth,
		nodes:         map[uuid.UUID]*node{},
	}
}

func (s *Store) Root() Root {
	return s.root
}

// Close marks the store dead. In-flight fetch results observed afterwards are
// dropped; the owning detail view has unmounted and there is nothing left to
// apply them to.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

type topResult struct {
	items []model.Comment
	total int
}

// LoadTopLevel appends the next limit top-level comments beyond the ones
// already loaded. The loaded count grows monotonically and never exceeds the
// total. Concurrent calls for the same window share one network request and
// append once.
func (s *Store) LoadTopLevel(ctx context.Context, limit int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	offset := len(s.topItems)
	if s.topKnown && offset >= s.topTotal {
		// Window exhausted, nothing to fetch.
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	key := fmt.Sprintf("top:%d:%d", offset, limit)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		items, total, err := s.fetcher.TopLevel(ctx, s.root, offset, limit)
		if err != nil {
			return nil, err
		}
		return topResult{items: items, total: total}, nil
	})
	if err != nil {
		return fmt.Errorf("load top-level comments: %w", err)
	}
	res := v.(topResult)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if len(s.topItems) != offset {
		// Another caller of the same window already applied this result.
		return nil
	}

	for _, c := range res.items {
		if _, dup := s.nodes[c.Id]; dup {
			continue
		}
		s.nodes[c.Id] = &node{comment: c, depth: 0, state: StateCollapsed}
		s.topItems = append(s.topItems, c.Id)
	}
	s.topTotal = res.total
	s.topKnown = true
	if len(s.topItems) > s.topTotal {
		s.topTotal = len(s.topItems)
	}

	return nil
}

// Expand marks a node expanded and fetches its first reply window if it was
// never fetched. Expanding a cached node is free; expanding while a fetch is
// in flight reuses that fetch.
func (s *Store) Expand(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Comment is not part of this thread",
		}
	}
	if n.depth >= s.maxDepth {
		// Defensive bound against pathological nesting, not a semantic
		// truncation of the tree.
		s.mu.Unlock()
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Thread nesting is too deep to expand further",
			Param:   "commentId",
		}
	}

	n.expanded = true

	if n.fetched {
		n.state = StateLoaded
		s.mu.Unlock()
		return nil
	}
	if !n.comment.HasReplies {
		// Nothing to fetch; the server says there are no replies.
		n.fetched = true
		n.state = StateLoaded
		s.mu.Unlock()
		return nil
	}

	n.state = StateLoading
	s.mu.Unlock()

	return s.loadReplies(ctx, id)
}

// Collapse hides a node's replies without discarding them.
func (s *Store) Collapse(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	n, ok := s.nodes[id]
	if !ok {
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Comment is not part of this thread",
		}
	}
	n.expanded = false
	return nil
}

// Retry re-runs the reply fetch of a node stuck in the error state.
func (s *Store) Retry(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	n, ok := s.nodes[id]
	if !ok {
		s.mu.Unlock()
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Comment is not part of this thread",
		}
	}
	if n.state != StateError {
		s.mu.Unlock()
		return nil
	}
	n.state = StateLoading
	n.lastErr = nil
	s.mu.Unlock()

	return s.loadReplies(ctx, id)
}

type replyResult struct {
	items []model.Comment
	total int
}

func (s *Store) loadReplies(ctx context.Context, id uuid.UUID) error {
	key := "replies:" + id.String()
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		items, total, err := s.fetcher.Replies(ctx, id, s.replyPageSize)
		if err != nil {
			return nil, err
		}
		return replyResult{items: items, total: total}, nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}

	if err != nil {
		n.state = StateError
		n.lastErr = err
		s.log.Warn("reply fetch failed",
			zap.String("commentId", id.String()),
			zap.Error(err))
		return fmt.Errorf("load replies: %w", err)
	}
	if n.fetched {
		// A concurrent expand already applied the shared result.
		return nil
	}

	res := v.(replyResult)
	for _, c := range res.items {
		if _, dup := s.nodes[c.Id]; dup {
			continue
		}
		s.nodes[c.Id] = &node{comment: c, depth: n.depth + 1, state: StateCollapsed}
		n.children = append(n.children, c.Id)
	}
	n.loadedReplies = len(n.children)
	n.totalReplies = res.total
	if n.loadedReplies > n.totalReplies {
		n.totalReplies = n.loadedReplies
	}
	n.fetched = true
	n.state = StateLoaded
	n.lastErr = nil

	return nil
}

// Remove drops a comment and its loaded descendants from the store after a
// successful delete, so the next snapshot reflects the server.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return
	}

	// Iterative teardown of the loaded subtree.
	stack := []uuid.UUID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cn, ok := s.nodes[cur]; ok {
			stack = append(stack, cn.children...)
			delete(s.nodes, cur)
		}
	}

	if n.depth == 0 {
		for i, tid := range s.topItems {
			if tid == id {
				s.topItems = append(s.topItems[:i], s.topItems[i+1:]...)
				break
			}
		}
		if s.topTotal > 0 {
			s.topTotal--
		}
	} else if n.comment.ParentId != nil {
		if p, ok := s.nodes[*n.comment.ParentId]; ok {
			for i, cid := range p.children {
				if cid == id {
					p.children = append(p.children[:i], p.children[i+1:]...)
					break
				}
			}
			p.loadedReplies = len(p.children)
			if p.totalReplies > 0 {
				p.totalReplies--
			}
		}
	}
}

// Snapshot renders the current forest as a view-model tree. Traversal is
// level-order over the arena with the depth bound applied, never recursive.
func (s *Store) Snapshot() model.ThreadView {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := [][]uuid.UUID{}
	current := append([]uuid.UUID{}, s.topItems...)
	for depth := 0; len(current) > 0 && depth <= s.maxDepth; depth++ {
		levels = append(levels, current)
		var next []uuid.UUID
		for _, id := range current {
			n := s.nodes[id]
			if n != nil && n.expanded && n.fetched {
				next = append(next, n.children...)
			}
		}
		current = next
	}

	// Build deepest-first so every child view exists before its parent.
	built := map[uuid.UUID]model.ThreadNodeView{}
	for i := len(levels) - 1; i >= 0; i-- {
		for _, id := range levels[i] {
			n := s.nodes[id]
			if n == nil {
				continue
			}
			v := s.nodeView(n)
			if n.expanded && n.fetched {
				for _, cid := range n.children {
					if cv, ok := built[cid]; ok {
						v.Replies = append(v.Replies, cv)
					}
				}
			}
			built[id] = v
		}
	}

	comments := make([]model.ThreadNodeView, 0, len(s.topItems))
	for _, id := range s.topItems {
		if v, ok := built[id]; ok {
			comments = append(comments, v)
		}
	}

	return model.ThreadView{
		RootKind:    string(s.root.Kind),
		RootId:      s.root.Id,
		Comments:    comments,
		LoadedCount: len(s.topItems),
		TotalCount:  s.topTotal,
	}
}

func (s *Store) nodeView(n *node) model.ThreadNodeView {
	state := n.state
	if state != StateLoading && state != StateError && !n.expanded {
		state = StateCollapsed
	}

	v := model.ThreadNodeView{
		Comment:       commentResponse(n.comment),
		State:         state,
		Expanded:      n.expanded,
		Depth:         n.depth,
		LoadedReplies: n.loadedReplies,
		TotalReplies:  n.totalReplies,
		// The server promised replies but the fetch came back empty: render
		// an explicit empty notice rather than silently showing nothing.
		ShowEmptyNotice: n.fetched && n.comment.HasReplies && n.totalReplies == 0,
	}
	if n.lastErr != nil {
		v.Error = n.lastErr.Error()
	}
	return v
}

func commentResponse(c model.Comment) model.CommentResponse {
	actions := moderation.AllowedActions(moderation.KindComment, c.Status, moderation.Flags{})
	return model.CommentResponse{
		Id:             c.Id,
		PostId:         c.PostId,
		AnswerId:       c.AnswerId,
		ParentId:       c.ParentId,
		Body:           c.Body,
		Status:         c.Status,
		HasReplies:     c.HasReplies,
		Author:         c.Author,
		CreateDatetime: c.CreateDatetime,
		UpdateDatetime: c.UpdateDatetime,
		AllowedActions: moderation.ActionNames(actions),
	}
}
