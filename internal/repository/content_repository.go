package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/moderation"
)

type ContentRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewContentRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *ContentRepository {
	return &ContentRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

var statusTables = map[moderation.Kind]string{
	moderation.KindPost:     "posts",
	moderation.KindQuestion: "questions",
	moderation.KindAnswer:   "answers",
	moderation.KindComment:  "comments",
	moderation.KindReport:   "reports",
}

// UpdateStatus moves one row from→to. The from-state guard makes the write
// conditional: zero affected rows means the row vanished or somebody moved it
// first, and the caller reports a rejected transition instead of clobbering.
func (repository *ContentRepository) UpdateStatus(ctx context.Context, kind moderation.Kind, id uuid.UUID, from string, to string, updateDatetime time.Time) (bool, error) {
	table, ok := statusTables[kind]
	if !ok {
		return false, fmt.Errorf("unknown content kind: %s", kind)
	}

	query := fmt.Sprintf("UPDATE %s SET status = $1, update_datetime = $2 WHERE id = $3 AND status = $4", table)

	tag, err := repository.DB.Exec(ctx, query, to, updateDatetime, id, from)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (repository *ContentRepository) SetQuestionFeatured(ctx context.Context, id uuid.UUID, featured bool, updateDatetime time.Time) (bool, error) {
	query := "UPDATE questions SET is_featured = $1, update_datetime = $2 WHERE id = $3"

	tag, err := repository.DB.Exec(ctx, query, featured, updateDatetime, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// AcceptAnswer sets the question's accepted answer and flags the answer, both
// inside the caller's transaction. The accepted_answer_id IS NULL guard is
// the server-side exclusivity rule: only the first acceptance wins.
func (repository *ContentRepository) AcceptAnswer(ctx context.Context, tx pgx.Tx, questionId uuid.UUID, answerId uuid.UUID, updateDatetime time.Time) (bool, error) {
	questionQuery := "UPDATE questions SET accepted_answer_id = $1, update_datetime = $2 WHERE id = $3 AND accepted_answer_id IS NULL"

	tag, err := tx.Exec(ctx, questionQuery, answerId, updateDatetime, questionId)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	answerQuery := "UPDATE answers SET is_accepted = TRUE, update_datetime = $1 WHERE id = $2 AND status = $3"

	tag, err = tx.Exec(ctx, answerQuery, updateDatetime, answerId, model.AnswerStatusApproved)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (repository *ContentRepository) GetPost(ctx context.Context, id uuid.UUID) (model.Post, error) {
	query := `
		SELECT p.id, p.title, p.body, p.status, p.create_datetime, p.update_datetime,
		       u.id, u.username, u.display_name
		FROM posts p
		INNER JOIN users u ON p.author_id = u.id
		WHERE p.id = $1
	`

	var post model.Post
	err := repository.DB.QueryRow(ctx, query, id).Scan(
		&post.Id, &post.Title, &post.Body, &post.Status, &post.CreateDatetime, &post.UpdateDatetime,
		&post.Author.Id, &post.Author.Username, &post.Author.DisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post, notFound("Post not found")
		}
		return post, err
	}

	return post, nil
}

func (repository *ContentRepository) GetQuestion(ctx context.Context, id uuid.UUID) (model.Question, error) {
	query := `
		SELECT q.id, q.title, q.body, q.status, q.is_featured, q.accepted_answer_id,
		       q.create_datetime, q.update_datetime,
		       u.id, u.username, u.display_name
		FROM questions q
		INNER JOIN users u ON q.author_id = u.id
		WHERE q.id = $1
	`

	var question model.Question
	err := repository.DB.QueryRow(ctx, query, id).Scan(
		&question.Id, &question.Title, &question.Body, &question.Status, &question.IsFeatured,
		&question.AcceptedAnswerId, &question.CreateDatetime, &question.UpdateDatetime,
		&question.Author.Id, &question.Author.Username, &question.Author.DisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question, notFound("Question not found")
		}
		return question, err
	}

	return question, nil
}

func (repository *ContentRepository) GetAnswer(ctx context.Context, id uuid.UUID) (model.Answer, error) {
	query := `
		SELECT a.id, a.question_id, a.body, a.status, a.is_accepted,
		       a.create_datetime, a.update_datetime,
		       u.id, u.username, u.display_name,
		       q.accepted_answer_id
		FROM answers a
		INNER JOIN users u ON a.author_id = u.id
		INNER JOIN questions q ON a.question_id = q.id
		WHERE a.id = $1
	`

	var answer model.Answer
	err := repository.DB.QueryRow(ctx, query, id).Scan(
		&answer.Id, &answer.QuestionId, &answer.Body, &answer.Status, &answer.IsAccepted,
		&answer.CreateDatetime, &answer.UpdateDatetime,
		&answer.Author.Id, &answer.Author.Username, &answer.Author.DisplayName,
		&answer.QuestionAcceptedAnswerId,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return answer, notFound("Answer not found")
		}
		return answer, err
	}

	return answer, nil
}

func (repository *ContentRepository) GetComment(ctx context.Context, id uuid.UUID) (model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.answer_id, c.parent_id, c.body, c.status,
		       EXISTS (
		           SELECT 1 FROM comments r
		           WHERE r.parent_id = c.id AND r.status <> $2
		       ) AS has_replies,
		       c.create_datetime, c.update_datetime,
		       u.id, u.username, u.display_name
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.id = $1
	`

	var comment model.Comment
	err := repository.DB.QueryRow(ctx, query, id, model.CommentStatusDeleted).Scan(
		&comment.Id, &comment.PostId, &comment.AnswerId, &comment.ParentId, &comment.Body, &comment.Status,
		&comment.HasReplies, &comment.CreateDatetime, &comment.UpdateDatetime,
		&comment.Author.Id, &comment.Author.Username, &comment.Author.DisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment, notFound("Comment not found")
		}
		return comment, err
	}

	return comment, nil
}

func (repository *ContentRepository) GetReport(ctx context.Context, id uuid.UUID) (model.Report, error) {
	query := `
		SELECT r.id, r.subject_kind, r.subject_id, r.reason, r.status,
		       r.create_datetime, r.update_datetime,
		       u.id, u.username, u.display_name
		FROM reports r
		INNER JOIN users u ON r.reporter_id = u.id
		WHERE r.id = $1
	`

	var report model.Report
	err := repository.DB.QueryRow(ctx, query, id).Scan(
		&report.Id, &report.SubjectKind, &report.SubjectId, &report.Reason, &report.Status,
		&report.CreateDatetime, &report.UpdateDatetime,
		&report.Author.Id, &report.Author.Username, &report.Author.DisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report, notFound("Report not found")
		}
		return report, err
	}

	return report, nil
}

func notFound(message string) error {
	return &model.NotFoundError{
		Code:    constant.ERR_NOT_FOUND_ERROR,
		Message: message,
	}
}

// Cache keys embed a per-kind version counter. Bumping the counter on every
// mutation makes all cached pages of that kind unreachable at once, without
// scanning for keys; stale entries simply expire.
func (repository *ContentRepository) listVersion(ctx context.Context, kind moderation.Kind) int64 {
	v, err := repository.DBCache.Get(ctx, "listver:"+string(kind)).Result()
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (repository *ContentRepository) listCacheKey(ctx context.Context, kind moderation.Kind, queryKey string) string {
	return fmt.Sprintf("list:%s:v%d:%s", kind, repository.listVersion(ctx, kind), queryKey)
}

func (repository *ContentRepository) ListCacheGet(ctx context.Context, kind moderation.Kind, queryKey string) ([]byte, bool) {
	payload, err := repository.DBCache.Get(ctx, repository.listCacheKey(ctx, kind, queryKey)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			repository.Log.Warn("list cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (repository *ContentRepository) ListCacheSet(ctx context.Context, kind moderation.Kind, queryKey string, payload []byte) {
	key := repository.listCacheKey(ctx, kind, queryKey)
	err := repository.DBCache.Set(ctx, key, payload, constant.LIST_CACHE_TTL_SECONDS*time.Second).Err()
	if err != nil {
		repository.Log.Warn("list cache write failed", zap.Error(err))
	}
}

// InvalidateLists is called after a successful mutation, never before: the
// refetch must observe the committed state, not race the mutation.
func (repository *ContentRepository) InvalidateLists(ctx context.Context, kinds ...moderation.Kind) {
	for _, kind := range kinds {
		err := repository.DBCache.Incr(ctx, "listver:"+string(kind)).Err()
		if err != nil {
			repository.Log.Warn("list cache invalidation failed",
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
	}
}
