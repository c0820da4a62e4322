package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/thread"
)

// CommentRepository backs the thread stores. It implements thread.Fetcher:
// top-level windows are offset-paginated in chronological order, reply
// windows are a single capped fetch per comment. Deleted comments never show
// up in thread views and never count toward hasReplies.
type CommentRepository struct {
	Log *zap.Logger
	DB  *pgxpool.Pool
}

func NewCommentRepository(zap *zap.Logger, db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{
		Log: zap,
		DB:  db,
	}
}

const commentColumns = `
	c.id, c.post_id, c.answer_id, c.parent_id, c.body, c.status,
	EXISTS (
	    SELECT 1 FROM comments r
	    WHERE r.parent_id = c.id AND r.status <> 'deleted'
	) AS has_replies,
	c.create_datetime, c.update_datetime,
	u.id, u.username, u.display_name
`

func (repository *CommentRepository) TopLevel(ctx context.Context, root thread.Root, offset int, limit int) ([]model.Comment, int, error) {
	var rootColumn string
	switch root.Kind {
	case thread.RootPost:
		rootColumn = "post_id"
	case thread.RootAnswer:
		rootColumn = "answer_id"
	default:
		return nil, 0, fmt.Errorf("unknown thread root kind: %s", root.Kind)
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM comments c
		WHERE c.%s = $1 AND c.parent_id IS NULL AND c.status <> $2
	`, rootColumn)

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, root.Id, model.CommentStatusDeleted).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.%s = $1 AND c.parent_id IS NULL AND c.status <> $2
		ORDER BY c.create_datetime ASC, c.id ASC
		LIMIT $3 OFFSET $4
	`, commentColumns, rootColumn)

	rows, err := repository.DB.Query(ctx, query, root.Id, model.CommentStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (repository *CommentRepository) Replies(ctx context.Context, parentId uuid.UUID, limit int) ([]model.Comment, int, error) {
	countQuery := `
		SELECT COUNT(*) FROM comments c
		WHERE c.parent_id = $1 AND c.status <> $2
	`

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, parentId, model.CommentStatusDeleted).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id
		WHERE c.parent_id = $1 AND c.status <> $2
		ORDER BY c.create_datetime ASC, c.id ASC
		LIMIT $3
	`, commentColumns)

	rows, err := repository.DB.Query(ctx, query, parentId, model.CommentStatusDeleted, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// SoftDeleteCascade marks the comment and every descendant deleted. Rows are
// kept, not removed; the tree structure stays intact for audit queries.
func (repository *CommentRepository) SoftDeleteCascade(ctx context.Context, id uuid.UUID, updateDatetime time.Time) (int64, error) {
	query := `
		WITH RECURSIVE subtree AS (
		    SELECT id FROM comments WHERE id = $1
		    UNION ALL
		    SELECT c.id FROM comments c
		    INNER JOIN subtree s ON c.parent_id = s.id
		)
		UPDATE comments
		SET status = $2, update_datetime = $3
		WHERE id IN (SELECT id FROM subtree) AND status <> $2
	`

	tag, err := repository.DB.Exec(ctx, query, id, model.CommentStatusDeleted, updateDatetime)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

type commentRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanComments(rows commentRows) ([]model.Comment, error) {
	comments := []model.Comment{}
	for rows.Next() {
		var comment model.Comment
		err := rows.Scan(
			&comment.Id, &comment.PostId, &comment.AnswerId, &comment.ParentId, &comment.Body, &comment.Status,
			&comment.HasReplies, &comment.CreateDatetime, &comment.UpdateDatetime,
			&comment.Author.Id, &comment.Author.Username, &comment.Author.DisplayName,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
