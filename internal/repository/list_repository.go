package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
)

// List queries apply search and status filters server-side and return one
// page plus the filtered total. Ordering is the stable server default
// (newest first, id as tiebreaker); column sorting happens in-process on the
// returned page and never reaches SQL.

type listFilter struct {
	conds []string
	args  []interface{}
}

func (f *listFilter) add(cond string, arg interface{}) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

func (f *listFilter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

func (f *listFilter) page(offset int, limit int) (string, []interface{}) {
	args := append([]interface{}{}, f.args...)
	args = append(args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func (repository *ContentRepository) ListPosts(ctx context.Context, q model.ListQuery, offset int, limit int) ([]model.Post, int, error) {
	filter := &listFilter{}
	if q.Status != "" {
		filter.add("p.status = $%d", q.Status)
	}
	if q.Search != "" {
		filter.add("p.title ILIKE $%d", "%"+q.Search+"%")
	}

	countQuery := "SELECT COUNT(*) FROM posts p" + filter.where()

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, filter.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageClause, args := filter.page(offset, limit)
	query := `
		SELECT p.id, p.title, p.body, p.status, p.create_datetime, p.update_datetime,
		       u.id, u.username, u.display_name
		FROM posts p
		INNER JOIN users u ON p.author_id = u.id` +
		filter.where() + `
		ORDER BY p.create_datetime DESC, p.id DESC` + pageClause

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var post model.Post
		err := rows.Scan(
			&post.Id, &post.Title, &post.Body, &post.Status, &post.CreateDatetime, &post.UpdateDatetime,
			&post.Author.Id, &post.Author.Username, &post.Author.DisplayName,
		)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}

	return posts, total, rows.Err()
}

func (repository *ContentRepository) ListQuestions(ctx context.Context, q model.ListQuery, offset int, limit int) ([]model.Question, int, error) {
	filter := &listFilter{}
	if q.Status != "" {
		filter.add("q.status = $%d", q.Status)
	}
	if q.Search != "" {
		filter.add("q.title ILIKE $%d", "%"+q.Search+"%")
	}
	if q.Featured != nil {
		filter.add("q.is_featured = $%d", *q.Featured)
	}

	countQuery := "SELECT COUNT(*) FROM questions q" + filter.where()

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, filter.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageClause, args := filter.page(offset, limit)
	query := `
		SELECT q.id, q.title, q.body, q.status, q.is_featured, q.accepted_answer_id,
		       q.create_datetime, q.update_datetime,
		       u.id, u.username, u.display_name
		FROM questions q
		INNER JOIN users u ON q.author_id = u.id` +
		filter.where() + `
		ORDER BY q.create_datetime DESC, q.id DESC` + pageClause

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var question model.Question
		err := rows.Scan(
			&question.Id, &question.Title, &question.Body, &question.Status, &question.IsFeatured,
			&question.AcceptedAnswerId, &question.CreateDatetime, &question.UpdateDatetime,
			&question.Author.Id, &question.Author.Username, &question.Author.DisplayName,
		)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, question)
	}

	return questions, total, rows.Err()
}

func (repository *ContentRepository) ListAnswers(ctx context.Context, q model.ListQuery, offset int, limit int) ([]model.Answer, int, error) {
	filter := &listFilter{}
	if q.Status != "" {
		filter.add("a.status = $%d", q.Status)
	}
	if q.Search != "" {
		filter.add("a.body ILIKE $%d", "%"+q.Search+"%")
	}
	if q.QuestionId != "" {
		questionId, err := uuid.Parse(q.QuestionId)
		if err != nil {
			return nil, 0, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Invalid question id filter",
				Param:   "questionId",
			}
		}
		filter.add("a.question_id = $%d", questionId)
	}

	countQuery := "SELECT COUNT(*) FROM answers a" + filter.where()

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, filter.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageClause, args := filter.page(offset, limit)
	query := `
		SELECT a.id, a.question_id, a.body, a.status, a.is_accepted,
		       a.create_datetime, a.update_datetime,
		       u.id, u.username, u.display_name,
		       q.accepted_answer_id
		FROM answers a
		INNER JOIN users u ON a.author_id = u.id
		INNER JOIN questions q ON a.question_id = q.id` +
		filter.where() + `
		ORDER BY a.create_datetime DESC, a.id DESC` + pageClause

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		var answer model.Answer
		err := rows.Scan(
			&answer.Id, &answer.QuestionId, &answer.Body, &answer.Status, &answer.IsAccepted,
			&answer.CreateDatetime, &answer.UpdateDatetime,
			&answer.Author.Id, &answer.Author.Username, &answer.Author.DisplayName,
			&answer.QuestionAcceptedAnswerId,
		)
		if err != nil {
			return nil, 0, err
		}
		answers = append(answers, answer)
	}

	return answers, total, rows.Err()
}

func (repository *ContentRepository) ListComments(ctx context.Context, q model.ListQuery, offset int, limit int) ([]model.Comment, int, error) {
	filter := &listFilter{}
	if q.Status != "" {
		filter.add("c.status = $%d", q.Status)
	}
	if q.Search != "" {
		filter.add("c.body ILIKE $%d", "%"+q.Search+"%")
	}

	countQuery := "SELECT COUNT(*) FROM comments c" + filter.where()

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, filter.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageClause, args := filter.page(offset, limit)
	query := `
		SELECT c.id, c.post_id, c.answer_id, c.parent_id, c.body, c.status,
		       EXISTS (
		           SELECT 1 FROM comments r
		           WHERE r.parent_id = c.id AND r.status <> '` + model.CommentStatusDeleted + `'
		       ) AS has_replies,
		       c.create_datetime, c.update_datetime,
		       u.id, u.username, u.display_name
		FROM comments c
		INNER JOIN users u ON c.author_id = u.id` +
		filter.where() + `
		ORDER BY c.create_datetime DESC, c.id DESC` + pageClause

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var comment model.Comment
		err := rows.Scan(
			&comment.Id, &comment.PostId, &comment.AnswerId, &comment.ParentId, &comment.Body, &comment.Status,
			&comment.HasReplies, &comment.CreateDatetime, &comment.UpdateDatetime,
			&comment.Author.Id, &comment.Author.Username, &comment.Author.DisplayName,
		)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, comment)
	}

	return comments, total, rows.Err()
}

func (repository *ContentRepository) ListReports(ctx context.Context, q model.ListQuery, offset int, limit int) ([]model.Report, int, error) {
	filter := &listFilter{}
	if q.Status != "" {
		filter.add("r.status = $%d", q.Status)
	}
	if q.Search != "" {
		filter.add("r.reason ILIKE $%d", "%"+q.Search+"%")
	}

	countQuery := "SELECT COUNT(*) FROM reports r" + filter.where()

	var total int
	err := repository.DB.QueryRow(ctx, countQuery, filter.args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageClause, args := filter.page(offset, limit)
	query := `
		SELECT r.id, r.subject_kind, r.subject_id, r.reason, r.status,
		       r.create_datetime, r.update_datetime,
		       u.id, u.username, u.display_name
		FROM reports r
		INNER JOIN users u ON r.reporter_id = u.id` +
		filter.where() + `
		ORDER BY r.create_datetime DESC, r.id DESC` + pageClause

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var report model.Report
		err := rows.Scan(
			&report.Id, &report.SubjectKind, &report.SubjectId, &report.Reason, &report.Status,
			&report.CreateDatetime, &report.UpdateDatetime,
			&report.Author.Id, &report.Author.Username, &report.Author.DisplayName,
		)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, report)
	}

	return reports, total, rows.Err()
}
