package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/forumdesk/admin-api/internal/util"
)

// TruncateAllTables truncates all tables in correct order (children first, then parents)
func TruncateAllTables(t *testing.T, db *pgxpool.Pool, ctx context.Context) {
	t.Log("Truncating all database tables...")

	tables := []string{
		"reports",
		"comments",
		"answers",
		"questions",
		"posts",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}

	t.Log("All database tables truncated successfully")
}

// ModeratorToken issues a signed moderator token for authenticated requests.
func ModeratorToken(t *testing.T) string {
	token, err := util.GenerateAccessToken(uuid.New(), "moderator", TestJWTSecret)
	require.NoError(t, err, "failed to generate moderator token")
	return token
}

// CreateJSONRequest creates a test request with JSON body
func CreateJSONRequest(method, url string, jsonBody []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthRequest creates a test request with JSON body and Authorization header
func CreateAuthRequest(method, url string, jsonBody []byte, token string) *http.Request {
	req := CreateJSONRequest(method, url, jsonBody)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

// ParseJSONResponse helper to parse JSON response body
func ParseJSONResponse(t *testing.T, resp *http.Response) map[string]interface{} {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NotEmpty(t, body, "response body should not be empty")

	var result map[string]interface{}
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "failed to parse JSON response")

	return result
}

// ParseErrorDetail extracts code, message and param from an error response
func ParseErrorDetail(t *testing.T, result map[string]interface{}) (code string, message string, param string) {
	require.Contains(t, result, "error", "response should contain error field")

	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "error field should be an object")

	code, _ = errObj["code"].(string)
	message, _ = errObj["message"].(string)
	param, _ = errObj["param"].(string)
	return code, message, param
}

// Seed helpers insert rows directly; the admin API itself never creates
// content, it only moderates what the forum wrote.

func SeedUser(t *testing.T, db *pgxpool.Pool, ctx context.Context, username string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, username, display_name)
		VALUES ($1, $2, $3)
	`, id, username, username)
	require.NoError(t, err, "failed to seed user")
	return id
}

func SeedPost(t *testing.T, db *pgxpool.Pool, ctx context.Context, authorId uuid.UUID, title string, status string, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO posts (id, author_id, title, body, status, create_datetime, update_datetime)
		VALUES ($1, $2, $3, 'body', $4, $5, $5)
	`, id, authorId, title, status, createdAt)
	require.NoError(t, err, "failed to seed post")
	return id
}

func SeedQuestion(t *testing.T, db *pgxpool.Pool, ctx context.Context, authorId uuid.UUID, title string, status string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO questions (id, author_id, title, body, status)
		VALUES ($1, $2, $3, 'body', $4)
	`, id, authorId, title, status)
	require.NoError(t, err, "failed to seed question")
	return id
}

func SeedAnswer(t *testing.T, db *pgxpool.Pool, ctx context.Context, questionId uuid.UUID, authorId uuid.UUID, status string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO answers (id, question_id, author_id, body, status)
		VALUES ($1, $2, $3, 'body', $4)
	`, id, questionId, authorId, status)
	require.NoError(t, err, "failed to seed answer")
	return id
}

func SeedTopLevelComment(t *testing.T, db *pgxpool.Pool, ctx context.Context, postId uuid.UUID, authorId uuid.UUID, status string, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, body, status, create_datetime, update_datetime)
		VALUES ($1, $2, $3, 'body', $4, $5, $5)
	`, id, postId, authorId, status, createdAt)
	require.NoError(t, err, "failed to seed comment")
	return id
}

func SeedReply(t *testing.T, db *pgxpool.Pool, ctx context.Context, parentId uuid.UUID, authorId uuid.UUID, status string, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO comments (id, parent_id, author_id, body, status, create_datetime, update_datetime)
		VALUES ($1, $2, $3, 'body', $4, $5, $5)
	`, id, parentId, authorId, status, createdAt)
	require.NoError(t, err, "failed to seed reply")
	return id
}

func SeedReport(t *testing.T, db *pgxpool.Pool, ctx context.Context, reporterId uuid.UUID, subjectKind string, subjectId uuid.UUID, status string) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, subject_kind, subject_id, reason, status)
		VALUES ($1, $2, $3, $4, 'reason', $5)
	`, id, reporterId, subjectKind, subjectId, status)
	require.NoError(t, err, "failed to seed report")
	return id
}

// CommentStatus reads a comment's status straight from the database.
func CommentStatus(t *testing.T, db *pgxpool.Pool, ctx context.Context, id uuid.UUID) string {
	var status string
	err := db.QueryRow(ctx, "SELECT status FROM comments WHERE id = $1", id).Scan(&status)
	require.NoError(t, err, "failed to read comment status")
	return status
}
