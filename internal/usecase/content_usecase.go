package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/moderation"
	"github.com/forumdesk/admin-api/internal/repository"
	"github.com/forumdesk/admin-api/internal/table"
	"github.com/forumdesk/admin-api/internal/thread"
)

// ContentUsecase orchestrates every admin list view: clamp the page, fetch
// the filtered window, sort the returned page in-process, decorate each row
// with its allowed actions. Mutations validate against the same moderation
// tables that produced the row decorations, then invalidate the list cache
// only after the write committed.
type ContentUsecase struct {
	ContentRepository *repository.ContentRepository
	CommentRepository *repository.CommentRepository
	DB                *pgxpool.Pool
	Log               *zap.Logger
	Config            *koanf.Koanf

	postColumns     *table.Registry[model.Post]
	questionColumns *table.Registry[model.Question]
	answerColumns   *table.Registry[model.Answer]
	commentColumns  *table.Registry[model.Comment]
	reportColumns   *table.Registry[model.Report]
}

func NewContentUsecase(contentRepository *repository.ContentRepository, commentRepository *repository.CommentRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *ContentUsecase {
	usecase := &ContentUsecase{
		ContentRepository: contentRepository,
		CommentRepository: commentRepository,
		DB:                db,
		Log:               zap,
		Config:            koanf,
	}
	usecase.registerColumns()
	return usecase
}

func (usecase *ContentUsecase) registerColumns() {
	posts := table.NewRegistry[model.Post]()
	posts.Register("title", func(p model.Post) any { return p.Title }, nil)
	posts.Register("status", func(p model.Post) any { return p.Status }, nil)
	posts.Register("author", func(p model.Post) any { return p.Author.Username }, nil)
	posts.Register("createdAt", func(p model.Post) any { return p.CreateDatetime }, nil)
	posts.Register("updatedAt", func(p model.Post) any { return p.UpdateDatetime }, nil)
	usecase.postColumns = posts

	questions := table.NewRegistry[model.Question]()
	questions.Register("title", func(q model.Question) any { return q.Title }, nil)
	questions.Register("status", func(q model.Question) any { return q.Status }, nil)
	questions.Register("author", func(q model.Question) any { return q.Author.Username }, nil)
	questions.Register("createdAt", func(q model.Question) any { return q.CreateDatetime }, nil)
	questions.Register("updatedAt", func(q model.Question) any { return q.UpdateDatetime }, nil)
	usecase.questionColumns = questions

	answers := table.NewRegistry[model.Answer]()
	answers.Register("status", func(a model.Answer) any { return a.Status }, nil)
	answers.Register("author", func(a model.Answer) any { return a.Author.Username }, nil)
	answers.Register("createdAt", func(a model.Answer) any { return a.CreateDatetime }, nil)
	answers.Register("updatedAt", func(a model.Answer) any { return a.UpdateDatetime }, nil)
	usecase.answerColumns = answers

	comments := table.NewRegistry[model.Comment]()
	comments.Register("status", func(c model.Comment) any { return c.Status }, nil)
	comments.Register("author", func(c model.Comment) any { return c.Author.Username }, nil)
	comments.Register("createdAt", func(c model.Comment) any { return c.CreateDatetime }, nil)
	comments.Register("updatedAt", func(c model.Comment) any { return c.UpdateDatetime }, nil)
	usecase.commentColumns = comments

	reports := table.NewRegistry[model.Report]()
	reports.Register("status", func(r model.Report) any { return r.Status }, nil)
	reports.Register("subjectKind", func(r model.Report) any { return r.SubjectKind }, nil)
	reports.Register("author", func(r model.Report) any { return r.Author.Username }, nil)
	reports.Register("createdAt", func(r model.Report) any { return r.CreateDatetime }, nil)
	usecase.reportColumns = reports
}

func normalizeQuery(kind moderation.Kind, q *model.ListQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = constant.DEFAULT_PAGE_SIZE
	}
	if q.PageSize < 1 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Page size must be greater than 0",
			Param:   "pageSize",
		}
	}
	if q.PageSize > constant.MAX_PAGE_SIZE {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Page size is exceeded max limit: %d", constant.MAX_PAGE_SIZE),
			Param:   "pageSize",
		}
	}
	if q.Status != "" && !moderation.ValidStatus(kind, q.Status) {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Unknown status filter for this content kind",
			Param:   "status",
		}
	}
	if q.SortDir != "" && q.SortDir != table.DirectionAscending && q.SortDir != table.DirectionDescending {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Sort direction must be ascending or descending",
			Param:   "sortDir",
		}
	}
	return nil
}

func queryCacheKey(q model.ListQuery) string {
	b, err := sonic.Marshal(q)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func pageInfo(pages *table.Pages) model.PageInfo {
	return model.PageInfo{
		Page:       pages.Page(),
		PageSize:   pages.PageSize(),
		TotalItems: pages.TotalItems(),
		TotalPages: pages.TotalPages(),
	}
}

// fetchPage runs the clamp-refetch loop shared by every list: the first fetch
// uses the requested page at face value; once the filtered total is known the
// page clamps into range, and if that moved the window the clamped page is
// fetched once more.
func fetchPage[T any](pages *table.Pages, requestedPage int, fetch func(offset, limit int) ([]T, int, error)) ([]T, error) {
	offset := (requestedPage - 1) * pages.PageSize()
	if offset < 0 {
		offset = 0
	}

	items, total, err := fetch(offset, pages.PageSize())
	if err != nil {
		return nil, err
	}
	pages.SetTotal(total)
	pages.SetPage(requestedPage)

	if pages.Offset() != offset {
		items, total, err = fetch(pages.Offset(), pages.PageSize())
		if err != nil {
			return nil, err
		}
		pages.SetTotal(total)
	}

	return items, nil
}

func (usecase *ContentUsecase) ListPosts(ctx context.Context, q model.ListQuery) (model.PostListResponse, error) {
	response := model.PostListResponse{Data: []model.PostResponse{}}

	err := normalizeQuery(moderation.KindPost, &q)
	if err != nil {
		return response, err
	}

	cacheKey := queryCacheKey(q)
	if payload, ok := usecase.ContentRepository.ListCacheGet(ctx, moderation.KindPost, cacheKey); ok {
		if sonic.Unmarshal(payload, &response) == nil {
			return response, nil
		}
	}

	pages := table.NewPages(q.PageSize)

	posts, err := fetchPage(pages, q.Page, func(offset, limit int) ([]model.Post, int, error) {
		return usecase.ContentRepository.ListPosts(ctx, q, offset, limit)
	})
	if err != nil {
		return response, err
	}

	posts = usecase.postColumns.Sort(posts, table.SortState{ColumnKey: q.SortBy, Direction: q.SortDir})

	for _, post := range posts {
		actions := moderation.AllowedActions(moderation.KindPost, post.Status, moderation.Flags{})
		response.Data = append(response.Data, model.PostResponse{
			Id:             post.Id,
			Title:          post.Title,
			Status:         post.Status,
			Author:         post.Author,
			CreateDatetime: post.CreateDatetime,
			UpdateDatetime: post.UpdateDatetime,
			AllowedActions: moderation.ActionNames(actions),
		})
	}
	response.Page = pageInfo(pages)

	if payload, err := sonic.Marshal(response); err == nil {
		usecase.ContentRepository.ListCacheSet(ctx, moderation.KindPost, cacheKey, payload)
	}

	return response, nil
}

func (usecase *ContentUsecase) ListQuestions(ctx context.Context, q model.ListQuery) (model.QuestionListResponse, error) {
	response := model.QuestionListResponse{Data: []model.QuestionResponse{}}

	err := normalizeQuery(moderation.KindQuestion, &q)
	if err != nil {
		return response, err
	}

	cacheKey := queryCacheKey(q)
	if payload, ok := usecase.ContentRepository.ListCacheGet(ctx, moderation.KindQuestion, cacheKey); ok {
		if sonic.Unmarshal(payload, &response) == nil {
			return response, nil
		}
	}

	pages := table.NewPages(q.PageSize)

	questions, err := fetchPage(pages, q.Page, func(offset, limit int) ([]model.Question, int, error) {
		return usecase.ContentRepository.ListQuestions(ctx, q, offset, limit)
	})
	if err != nil {
		return response, err
	}

	questions = usecase.questionColumns.Sort(questions, table.SortState{ColumnKey: q.SortBy, Direction: q.SortDir})

	for _, question := range questions {
		actions := moderation.AllowedActions(moderation.KindQuestion, question.Status, questionFlags(question))
		response.Data = append(response.Data, model.QuestionResponse{
			Id:               question.Id,
			Title:            question.Title,
			Status:           question.Status,
			IsFeatured:       question.IsFeatured,
			AcceptedAnswerId: question.AcceptedAnswerId,
			Author:           question.Author,
			CreateDatetime:   question.CreateDatetime,
			UpdateDatetime:   question.UpdateDatetime,
			AllowedActions:   moderation.ActionNames(actions),
		})
	}
	response.Page = pageInfo(pages)

	if payload, err := sonic.Marshal(response); err == nil {
		usecase.ContentRepository.ListCacheSet(ctx, moderation.KindQuestion, cacheKey, payload)
	}

	return response, nil
}

func (usecase *ContentUsecase) ListAnswers(ctx context.Context, q model.ListQuery) (model.AnswerListResponse, error) {
	response := model.AnswerListResponse{Data: []model.AnswerResponse{}}

	err := normalizeQuery(moderation.KindAnswer, &q)
	if err != nil {
		return response, err
	}

	cacheKey := queryCacheKey(q)
	if payload, ok := usecase.ContentRepository.ListCacheGet(ctx, moderation.KindAnswer, cacheKey); ok {
		if sonic.Unmarshal(payload, &response) == nil {
			return response, nil
		}
	}

	pages := table.NewPages(q.PageSize)

	answers, err := fetchPage(pages, q.Page, func(offset, limit int) ([]model.Answer, int, error) {
		return usecase.ContentRepository.ListAnswers(ctx, q, offset, limit)
	})
	if err != nil {
		return response, err
	}

	answers = usecase.answerColumns.Sort(answers, table.SortState{ColumnKey: q.SortBy, Direction: q.SortDir})

	for _, answer := range answers {
		actions := moderation.AllowedActions(moderation.KindAnswer, answer.Status, answerFlags(answer))
		response.Data = append(response.Data, model.AnswerResponse{
			Id:             answer.Id,
			QuestionId:     answer.QuestionId,
			Status:         answer.Status,
			IsAccepted:     answer.IsAccepted,
			Author:         answer.Author,
			CreateDatetime: answer.CreateDatetime,
			UpdateDatetime: answer.UpdateDatetime,
			AllowedActions: moderation.ActionNames(actions),
		})
	}
	response.Page = pageInfo(pages)

	if payload, err := sonic.Marshal(response); err == nil {
		usecase.ContentRepository.ListCacheSet(ctx, moderation.KindAnswer, cacheKey, payload)
	}

	return response, nil
}

func (usecase *ContentUsecase) ListComments(ctx context.Context, q model.ListQuery) (model.CommentListResponse, error) {
	response := model.CommentListResponse{Data: []model.CommentResponse{}}

	err := normalizeQuery(moderation.KindComment, &q)
	if err != nil {
		return response, err
	}

	cacheKey := queryCacheKey(q)
	if payload, ok := usecase.ContentRepository.ListCacheGet(ctx, moderation.KindComment, cacheKey); ok {
		if sonic.Unmarshal(payload, &response) == nil {
			return response, nil
		}
	}

	pages := table.NewPages(q.PageSize)

	comments, err := fetchPage(pages, q.Page, func(offset, limit int) ([]model.Comment, int, error) {
		return usecase.ContentRepository.ListComments(ctx, q, offset, limit)
	})
	if err != nil {
		return response, err
	}

	comments = usecase.commentColumns.Sort(comments, table.SortState{ColumnKey: q.SortBy, Direction: q.SortDir})

	for _, comment := range comments {
		actions := moderation.AllowedActions(moderation.KindComment, comment.Status, moderation.Flags{})
		response.Data = append(response.Data, model.CommentResponse{
			Id:             comment.Id,
			PostId:         comment.PostId,
			AnswerId:       comment.AnswerId,
			ParentId:       comment.ParentId,
			Body:           comment.Body,
			Status:         comment.Status,
			HasReplies:     comment.HasReplies,
			Author:         comment.Author,
			CreateDatetime: comment.CreateDatetime,
			UpdateDatetime: comment.UpdateDatetime,
			AllowedActions: moderation.ActionNames(actions),
		})
	}
	response.Page = pageInfo(pages)

	if payload, err := sonic.Marshal(response); err == nil {
		usecase.ContentRepository.ListCacheSet(ctx, moderation.KindComment, cacheKey, payload)
	}

	return response, nil
}

func (usecase *ContentUsecase) ListReports(ctx context.Context, q model.ListQuery) (model.ReportListResponse, error) {
	response := model.ReportListResponse{Data: []model.ReportResponse{}}

	err := normalizeQuery(moderation.KindReport, &q)
	if err != nil {
		return response, err
	}

	cacheKey := queryCacheKey(q)
	if payload, ok := usecase.ContentRepository.ListCacheGet(ctx, moderation.KindReport, cacheKey); ok {
		if sonic.Unmarshal(payload, &response) == nil {
			return response, nil
		}
	}

	pages := table.NewPages(q.PageSize)

	reports, err := fetchPage(pages, q.Page, func(offset, limit int) ([]model.Report, int, error) {
		return usecase.ContentRepository.ListReports(ctx, q, offset, limit)
	})
	if err != nil {
		return response, err
	}

	reports = usecase.reportColumns.Sort(reports, table.SortState{ColumnKey: q.SortBy, Direction: q.SortDir})

	for _, report := range reports {
		actions := moderation.AllowedActions(moderation.KindReport, report.Status, moderation.Flags{})
		response.Data = append(response.Data, model.ReportResponse{
			Id:             report.Id,
			SubjectKind:    report.SubjectKind,
			SubjectId:      report.SubjectId,
			Reason:         report.Reason,
			Status:         report.Status,
			Author:         report.Author,
			CreateDatetime: report.CreateDatetime,
			UpdateDatetime: report.UpdateDatetime,
			AllowedActions: moderation.ActionNames(actions),
		})
	}
	response.Page = pageInfo(pages)

	if payload, err := sonic.Marshal(response); err == nil {
		usecase.ContentRepository.ListCacheSet(ctx, moderation.KindReport, cacheKey, payload)
	}

	return response, nil
}

func questionFlags(q model.Question) moderation.Flags {
	flags := moderation.Flags{IsFeatured: q.IsFeatured}
	if q.AcceptedAnswerId != nil {
		flags.AcceptedAnswerId = q.AcceptedAnswerId.String()
	}
	return flags
}

func answerFlags(a model.Answer) moderation.Flags {
	flags := moderation.Flags{IsAccepted: a.IsAccepted}
	if a.QuestionAcceptedAnswerId != nil {
		flags.AcceptedAnswerId = a.QuestionAcceptedAnswerId.String()
	}
	return flags
}

func (usecase *ContentUsecase) GetPost(ctx context.Context, idParam string) (model.PostResponse, error) {
	id, err := parseId(idParam, "id")
	if err != nil {
		return model.PostResponse{}, err
	}

	post, err := usecase.ContentRepository.GetPost(ctx, id)
	if err != nil {
		return model.PostResponse{}, err
	}

	actions := moderation.AllowedActions(moderation.KindPost, post.Status, moderation.Flags{})
	return model.PostResponse{
		Id:             post.Id,
		Title:          post.Title,
		Status:         post.Status,
		Author:         post.Author,
		CreateDatetime: post.CreateDatetime,
		UpdateDatetime: post.UpdateDatetime,
		AllowedActions: moderation.ActionNames(actions),
	}, nil
}

func (usecase *ContentUsecase) GetQuestion(ctx context.Context, idParam string) (model.QuestionResponse, error) {
	id, err := parseId(idParam, "id")
	if err != nil {
		return model.QuestionResponse{}, err
	}

	question, err := usecase.ContentRepository.GetQuestion(ctx, id)
	if err != nil {
		return model.QuestionResponse{}, err
	}

	actions := moderation.AllowedActions(moderation.KindQuestion, question.Status, questionFlags(question))
	return model.QuestionResponse{
		Id:               question.Id,
		Title:            question.Title,
		Status:           question.Status,
		IsFeatured:       question.IsFeatured,
		AcceptedAnswerId: question.AcceptedAnswerId,
		Author:           question.Author,
		CreateDatetime:   question.CreateDatetime,
		UpdateDatetime:   question.UpdateDatetime,
		AllowedActions:   moderation.ActionNames(actions),
	}, nil
}

func (usecase *ContentUsecase) GetAnswer(ctx context.Context, idParam string) (model.AnswerResponse, error) {
	id, err := parseId(idParam, "id")
	if err != nil {
		return model.AnswerResponse{}, err
	}

	answer, err := usecase.ContentRepository.GetAnswer(ctx, id)
	if err != nil {
		return model.AnswerResponse{}, err
	}

	actions := moderation.AllowedActions(moderation.KindAnswer, answer.Status, answerFlags(answer))
	return model.AnswerResponse{
		Id:             answer.Id,
		QuestionId:     answer.QuestionId,
		Status:         answer.Status,
		IsAccepted:     answer.IsAccepted,
		Author:         answer.Author,
		CreateDatetime: answer.CreateDatetime,
		UpdateDatetime: answer.UpdateDatetime,
		AllowedActions: moderation.ActionNames(actions),
	}, nil
}

func (usecase *ContentUsecase) GetComment(ctx context.Context, idParam string) (model.CommentResponse, error) {
	id, err := parseId(idParam, "id")
	if err != nil {
		return model.CommentResponse{}, err
	}

	comment, err := usecase.ContentRepository.GetComment(ctx, id)
	if err != nil {
		return model.CommentResponse{}, err
	}

	actions := moderation.AllowedActions(moderation.KindComment, comment.Status, moderation.Flags{})
	return model.CommentResponse{
		Id:             comment.Id,
		PostId:         comment.PostId,
		AnswerId:       comment.AnswerId,
		ParentId:       comment.ParentId,
		Body:           comment.Body,
		Status:         comment.Status,
		HasReplies:     comment.HasReplies,
		Author:         comment.Author,
		CreateDatetime: comment.CreateDatetime,
		UpdateDatetime: comment.UpdateDatetime,
		AllowedActions: moderation.ActionNames(actions),
	}, nil
}

func (usecase *ContentUsecase) GetReport(ctx context.Context, idParam string) (model.ReportResponse, error) {
	id, err := parseId(idParam, "id")
	if err != nil {
		return model.ReportResponse{}, err
	}

	report, err := usecase.ContentRepository.GetReport(ctx, id)
	if err != nil {
		return model.ReportResponse{}, err
	}

	actions := moderation.AllowedActions(moderation.KindReport, report.Status, moderation.Flags{})
	return model.ReportResponse{
		Id:             report.Id,
		SubjectKind:    report.SubjectKind,
		SubjectId:      report.SubjectId,
		Reason:         report.Reason,
		Status:         report.Status,
		Author:         report.Author,
		CreateDatetime: report.CreateDatetime,
		UpdateDatetime: report.UpdateDatetime,
		AllowedActions: moderation.ActionNames(actions),
	}, nil
}

func parseId(idParam string, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid id",
			Param:   param,
		}
	}
	return id, nil
}

// currentStatus loads the item's status and flags for transition validation.
func (usecase *ContentUsecase) currentStatus(ctx context.Context, kind moderation.Kind, id uuid.UUID) (string, moderation.Flags, error) {
	switch kind {
	case moderation.KindPost:
		post, err := usecase.ContentRepository.GetPost(ctx, id)
		return post.Status, moderation.Flags{}, err
	case moderation.KindQuestion:
		question, err := usecase.ContentRepository.GetQuestion(ctx, id)
		return question.Status, questionFlags(question), err
	case moderation.KindAnswer:
		answer, err := usecase.ContentRepository.GetAnswer(ctx, id)
		return answer.Status, answerFlags(answer), err
	case moderation.KindComment:
		comment, err := usecase.ContentRepository.GetComment(ctx, id)
		return comment.Status, moderation.Flags{}, err
	case moderation.KindReport:
		report, err := usecase.ContentRepository.GetReport(ctx, id)
		return report.Status, moderation.Flags{}, err
	}
	return "", moderation.Flags{}, fmt.Errorf("unknown content kind: %s", kind)
}

// Transition applies one (id, toStatus) request. Requesting the status the
// item already has is an idempotent no-op. The allowed set consulted here is
// the same table the list decoration used, so the submit path can never
// accept what the menu did not offer.
func (usecase *ContentUsecase) Transition(ctx context.Context, kind moderation.Kind, idParam string, payload model.StatusTransitionRequest) error {
	id, err := parseId(idParam, "id")
	if err != nil {
		return err
	}

	if payload.ToStatus == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Target status is required",
			Param:   "toStatus",
		}
	}
	if !moderation.ValidStatus(kind, payload.ToStatus) {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Unknown status for this content kind",
			Param:   "toStatus",
		}
	}

	// A comment reaching deleted must pass the cascade guard and delete its
	// whole subtree; the generic endpoint delegates so both entry points
	// share one rule.
	if kind == moderation.KindComment && payload.ToStatus == model.CommentStatusDeleted {
		return usecase.DeleteComment(ctx, idParam, payload.Confirmed)
	}

	from, _, err := usecase.currentStatus(ctx, kind, id)
	if err != nil {
		return err
	}

	if from == payload.ToStatus {
		return nil
	}

	if !moderation.CanTransition(kind, from, payload.ToStatus) {
		return &model.TransitionError{
			Code:    constant.ERR_TRANSITION_REJECTED_CODE,
			Message: fmt.Sprintf("Cannot move %s from %s to %s", kind, from, payload.ToStatus),
			From:    from,
			To:      payload.ToStatus,
		}
	}

	now := time.Now().UTC()
	moved, err := usecase.ContentRepository.UpdateStatus(ctx, kind, id, from, payload.ToStatus, now)
	if err != nil {
		return err
	}
	if !moved {
		// The row moved out of the from-state between read and write.
		return &model.TransitionError{
			Code:    constant.ERR_TRANSITION_REJECTED_CODE,
			Message: "Item status changed concurrently, refresh and retry",
			From:    from,
			To:      payload.ToStatus,
		}
	}

	usecase.ContentRepository.InvalidateLists(ctx, kind)

	return nil
}

// FeatureQuestion toggles the orthogonal featured tag; status is untouched.
func (usecase *ContentUsecase) FeatureQuestion(ctx context.Context, idParam string, payload model.QuestionFeatureRequest) error {
	id, err := parseId(idParam, "id")
	if err != nil {
		return err
	}

	question, err := usecase.ContentRepository.GetQuestion(ctx, id)
	if err != nil {
		return err
	}

	if question.IsFeatured == payload.Featured {
		return nil
	}

	action := moderation.ActionFeature
	if !payload.Featured {
		action = moderation.ActionUnfeature
	}
	if !moderation.Allows(moderation.KindQuestion, question.Status, questionFlags(question), action) {
		return &model.TransitionError{
			Code:    constant.ERR_TRANSITION_REJECTED_CODE,
			Message: "Feature toggle is not available for this question",
			From:    question.Status,
			To:      question.Status,
		}
	}

	now := time.Now().UTC()
	updated, err := usecase.ContentRepository.SetQuestionFeatured(ctx, id, payload.Featured, now)
	if err != nil {
		return err
	}
	if !updated {
		// The question vanished between read and write.
		return &model.NotFoundError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Question not found",
		}
	}

	usecase.ContentRepository.InvalidateLists(ctx, moderation.KindQuestion)

	return nil
}

// AcceptAnswer marks one approved answer as the question's accepted answer.
// Exclusivity is enforced by the database (accepted_answer_id IS NULL guard);
// this method only mirrors it through the moderation table and reports a
// conflict when the first-writer already won.
func (usecase *ContentUsecase) AcceptAnswer(ctx context.Context, idParam string) error {
	id, err := parseId(idParam, "id")
	if err != nil {
		return err
	}

	answer, err := usecase.ContentRepository.GetAnswer(ctx, id)
	if err != nil {
		return err
	}

	if answer.IsAccepted {
		return nil
	}

	if !moderation.Allows(moderation.KindAnswer, answer.Status, answerFlags(answer), moderation.ActionAccept) {
		return &model.TransitionError{
			Code:    constant.ERR_TRANSITION_REJECTED_CODE,
			Message: "Answer cannot be accepted: it must be approved and the question must have no accepted answer",
			From:    answer.Status,
			To:      answer.Status,
		}
	}

	commited := false
	tx, err := usecase.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if !commited {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now().UTC()
	accepted, err := usecase.ContentRepository.AcceptAnswer(ctx, tx, answer.QuestionId, id, now)
	if err != nil {
		return err
	}
	if !accepted {
		return &model.TransitionError{
			Code:    constant.ERR_TRANSITION_REJECTED_CODE,
			Message: "Another answer was accepted first",
			From:    answer.Status,
			To:      answer.Status,
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	commited = true

	usecase.ContentRepository.InvalidateLists(ctx, moderation.KindAnswer, moderation.KindQuestion)

	return nil
}

// DeleteComment soft-deletes a comment and, when it has replies, its whole
// subtree. The cascade guard is not skippable: a comment with replies deletes
// only after the confirmation flag was acknowledged, a comment without
// replies deletes immediately.
func (usecase *ContentUsecase) DeleteComment(ctx context.Context, idParam string, confirmed bool) error {
	id, err := parseId(idParam, "id")
	if err != nil {
		return err
	}

	comment, err := usecase.ContentRepository.GetComment(ctx, id)
	if err != nil {
		return err
	}

	if comment.Status == model.CommentStatusDeleted {
		return nil
	}

	if !moderation.Allows(moderation.KindComment, comment.Status, moderation.Flags{}, moderation.ActionDelete) {
		return &model.TransitionError{
			Code:    constant.ERR_TRANSITION_REJECTED_CODE,
			Message: "Comment cannot be deleted from its current status",
			From:    comment.Status,
			To:      model.CommentStatusDeleted,
		}
	}

	if thread.RequiresConfirmation(comment) && !confirmed {
		return &model.ConfirmationRequiredError{
			Code:    constant.ERR_CONFIRMATION_REQUIRED_CODE,
			Message: "Deleting this comment will also delete all of its replies. Confirm to proceed",
		}
	}

	now := time.Now().UTC()
	deleted, err := usecase.CommentRepository.SoftDeleteCascade(ctx, id, now)
	if err != nil {
		return err
	}

	usecase.Log.Info("comment subtree soft-deleted",
		zap.String("commentId", id.String()),
		zap.Int64("rows", deleted))

	usecase.ContentRepository.InvalidateLists(ctx, moderation.KindComment)

	return nil
}
