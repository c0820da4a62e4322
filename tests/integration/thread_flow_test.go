package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/forumdesk/admin-api/tests/integration/setup"
)

// TestThreadLifecycle tests the GET /api/admin/threads/:rootKind/:rootId view
// and the expand/collapse affordances
func TestThreadLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	defer infra.Terminate(ctx, t)

	t.Log("=== Running Database Migrations ===")
	setup.RunMigration(infra.PgURL, t)

	t.Log("=== Setting Up Test Application ===")
	app, db, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL)
	defer db.Close()

	accessToken := setup.ModeratorToken(t)

	t.Log("=== Setup: Seeding Comment Thread ===")
	authorId := setup.SeedUser(t, db, ctx, "erin")
	postId := setup.SeedPost(t, db, ctx, authorId, "Thread post", "published", time.Now().UTC())

	base := time.Now().UTC().Add(-time.Hour)
	firstId := setup.SeedTopLevelComment(t, db, ctx, postId, authorId, "approved", base)
	setup.SeedReply(t, db, ctx, firstId, authorId, "approved", base.Add(time.Minute))
	setup.SeedReply(t, db, ctx, firstId, authorId, "pending", base.Add(2*time.Minute))
	secondId := setup.SeedTopLevelComment(t, db, ctx, postId, authorId, "approved", base.Add(3*time.Minute))
	setup.SeedTopLevelComment(t, db, ctx, postId, authorId, "pending", base.Add(4*time.Minute))

	t.Log("✓ Seeded 3 top-level comments, first one with 2 replies")

	// Test 1: Load the first top-level window
	t.Log("=== Test 1: Load First Window ===")
	threadURL := fmt.Sprintf("/api/admin/threads/post/%s", postId)
	req := setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=2", nil, accessToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "thread load should complete")
	require.Equal(t, 200, resp.StatusCode, "thread load should return 200")

	result := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "post", result["rootKind"], "rootKind should be post")
	require.Equal(t, postId.String(), result["rootId"], "rootId should match")
	require.Equal(t, float64(2), result["loadedCount"], "first window loads 2 comments")
	require.Equal(t, float64(3), result["totalCount"], "total should count all top-level comments")

	comments := result["comments"].([]interface{})
	require.Len(t, comments, 2, "snapshot should hold the loaded window")

	firstNode := comments[0].(map[string]interface{})
	firstComment := firstNode["comment"].(map[string]interface{})
	require.Equal(t, firstId.String(), firstComment["id"], "comments should come back oldest first")
	require.Equal(t, true, firstComment["hasReplies"], "first comment should advertise replies")
	require.Equal(t, "collapsed", firstNode["state"], "unexpanded node should read collapsed")
	require.Nil(t, firstNode["replies"], "collapsed node should carry no replies")

	t.Log("✓ First window loaded with collapsed nodes")

	// Test 2: Loading again grows the window cumulatively
	t.Log("=== Test 2: Load Next Window ===")
	req = setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=2", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "second load should complete")
	require.Equal(t, 200, resp.StatusCode, "second load should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(3), result["loadedCount"], "window should grow to all 3 comments")
	require.Equal(t, float64(3), result["totalCount"], "total should be unchanged")

	// A further load past the end changes nothing
	req = setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=2", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "exhausted load should complete")
	require.Equal(t, 200, resp.StatusCode, "exhausted load should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(3), result["loadedCount"], "loaded count should stay at the total")

	t.Log("✓ Window grows cumulatively and stops at the total")

	// Test 3: Expand the comment with replies
	t.Log("=== Test 3: Expand Comment With Replies ===")
	url := fmt.Sprintf("%s/comments/%s/expand", threadURL, firstId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "expand should complete")
	require.Equal(t, 200, resp.StatusCode, "expand should return 200")

	result = setup.ParseJSONResponse(t, resp)
	comments = result["comments"].([]interface{})
	firstNode = comments[0].(map[string]interface{})
	require.Equal(t, true, firstNode["expanded"], "node should be expanded")
	require.Equal(t, "loaded", firstNode["state"], "node should be loaded")
	require.Equal(t, float64(2), firstNode["loadedReplies"], "both replies should be loaded")
	require.Equal(t, float64(2), firstNode["totalReplies"], "total replies should be 2")
	require.Equal(t, false, firstNode["showEmptyNotice"], "loaded replies need no empty notice")

	replies := firstNode["replies"].([]interface{})
	require.Len(t, replies, 2, "replies should be present in the snapshot")
	reply := replies[0].(map[string]interface{})
	require.Equal(t, float64(1), reply["depth"], "replies sit one level below their parent")

	t.Log("✓ Replies fetched and rendered under the parent")

	// Test 4: Collapse keeps the cache, re-expand costs nothing
	t.Log("=== Test 4: Collapse And Re-Expand ===")
	url = fmt.Sprintf("%s/comments/%s/collapse", threadURL, firstId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "collapse should complete")
	require.Equal(t, 200, resp.StatusCode, "collapse should return 200")

	result = setup.ParseJSONResponse(t, resp)
	comments = result["comments"].([]interface{})
	firstNode = comments[0].(map[string]interface{})
	require.Equal(t, false, firstNode["expanded"], "node should be collapsed")
	require.Equal(t, "collapsed", firstNode["state"], "state should read collapsed")
	require.Nil(t, firstNode["replies"], "collapsed node should hide its replies")
	require.Equal(t, float64(2), firstNode["loadedReplies"], "reply cache should survive the collapse")

	url = fmt.Sprintf("%s/comments/%s/expand", threadURL, firstId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "re-expand should complete")
	require.Equal(t, 200, resp.StatusCode, "re-expand should return 200")

	result = setup.ParseJSONResponse(t, resp)
	comments = result["comments"].([]interface{})
	firstNode = comments[0].(map[string]interface{})
	replies = firstNode["replies"].([]interface{})
	require.Len(t, replies, 2, "cached replies should come back without a refetch")

	t.Log("✓ Collapse hides replies, re-expand restores them from cache")

	// Test 5: Expand a comment without replies
	t.Log("=== Test 5: Expand Comment Without Replies ===")
	url = fmt.Sprintf("%s/comments/%s/expand", threadURL, secondId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "expand should complete")
	require.Equal(t, 200, resp.StatusCode, "expand should return 200")

	result = setup.ParseJSONResponse(t, resp)
	comments = result["comments"].([]interface{})
	secondNode := comments[1].(map[string]interface{})
	require.Equal(t, "loaded", secondNode["state"], "leaf expands without a fetch")
	require.Equal(t, float64(0), secondNode["totalReplies"], "leaf has no replies")
	require.Equal(t, false, secondNode["showEmptyNotice"], "no notice when the server promised nothing")

	t.Log("✓ Leaf expanded without a network call")

	// Test 6: Expand a comment that is not part of the thread
	t.Log("=== Test 6: Expand Unknown Comment ===")
	url = fmt.Sprintf("%s/comments/%s/expand", threadURL, "00000000-0000-0000-0000-000000000000")
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "unknown comment should return 404")

	result = setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "NOT_FOUND_ERROR", code, "error code should be NOT_FOUND_ERROR")

	t.Log("✓ Unknown comment rejected")

	// Test 7: Operating on a thread that was never opened
	t.Log("=== Test 7: Thread Not Open ===")
	url = fmt.Sprintf("/api/admin/threads/answer/%s/comments/%s/expand", postId, firstId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "unopened thread should return 404")

	result = setup.ParseJSONResponse(t, resp)
	code, message, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "NOT_FOUND_ERROR", code, "error code should be NOT_FOUND_ERROR")

	t.Logf("✓ Unopened thread rejected: %s", message)

	// Test 8: Invalid root kind and oversized limit
	t.Log("=== Test 8: Invalid Root Kind And Limit ===")
	url = fmt.Sprintf("/api/admin/threads/report/%s", postId)
	req = setup.CreateAuthRequest(http.MethodGet, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "invalid root kind should return 400")

	result = setup.ParseJSONResponse(t, resp)
	code, _, param := setup.ParseErrorDetail(t, result)
	require.Equal(t, "VALIDATION_ERROR", code, "error code should be VALIDATION_ERROR")
	require.Equal(t, "rootKind", param, "error param should be 'rootKind'")

	req = setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=1000", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 400, resp.StatusCode, "oversized limit should return 400")

	result = setup.ParseJSONResponse(t, resp)
	_, _, param = setup.ParseErrorDetail(t, result)
	require.Equal(t, "limit", param, "error param should be 'limit'")

	t.Log("✓ Invalid root kind and oversized limit rejected")

	t.Log("=== All Thread Lifecycle Tests Passed ===")
}

// TestThreadDeleteAndClose tests deleting comments through the thread view
// and tearing the thread down
func TestThreadDeleteAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err, "infrastructure should start successfully")
	defer infra.Terminate(ctx, t)

	t.Log("=== Running Database Migrations ===")
	setup.RunMigration(infra.PgURL, t)

	t.Log("=== Setting Up Test Application ===")
	app, db, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL)
	defer db.Close()

	accessToken := setup.ModeratorToken(t)

	t.Log("=== Setup: Seeding Thread ===")
	authorId := setup.SeedUser(t, db, ctx, "frank")
	postId := setup.SeedPost(t, db, ctx, authorId, "Cleanup post", "published", time.Now().UTC())

	base := time.Now().UTC().Add(-time.Hour)
	parentId := setup.SeedTopLevelComment(t, db, ctx, postId, authorId, "approved", base)
	replyId := setup.SeedReply(t, db, ctx, parentId, authorId, "approved", base.Add(time.Minute))
	leafId := setup.SeedTopLevelComment(t, db, ctx, postId, authorId, "approved", base.Add(2*time.Minute))

	threadURL := fmt.Sprintf("/api/admin/threads/post/%s", postId)

	// Open the thread and expand the parent
	req := setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=10", nil, accessToken)
	resp, err := app.Test(req)
	require.NoError(t, err, "thread load should complete")
	require.Equal(t, 200, resp.StatusCode, "thread load should return 200")

	url := fmt.Sprintf("%s/comments/%s/expand", threadURL, parentId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "expand should complete")
	require.Equal(t, 200, resp.StatusCode, "expand should return 200")

	t.Log("✓ Thread open with parent expanded")

	// Test 1: Unconfirmed delete of a comment with replies holds the guard
	t.Log("=== Test 1: Unconfirmed Delete In Thread ===")
	url = fmt.Sprintf("%s/comments/%s", threadURL, parentId)
	req = setup.CreateAuthRequest(http.MethodDelete, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 409, resp.StatusCode, "unconfirmed cascade should return 409")

	result := setup.ParseJSONResponse(t, resp)
	code, _, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "CONFIRMATION_REQUIRED", code, "error code should be CONFIRMATION_REQUIRED")

	// The thread still shows the comment
	req = setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=10", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "thread reload should complete")
	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(2), result["loadedCount"], "nothing should be removed")

	t.Log("✓ Guard held, thread unchanged")

	// Test 2: Confirmed delete removes the subtree from the snapshot
	t.Log("=== Test 2: Confirmed Delete In Thread ===")
	url = fmt.Sprintf("%s/comments/%s?confirmed=true", threadURL, parentId)
	req = setup.CreateAuthRequest(http.MethodDelete, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "confirmed delete should complete")
	require.Equal(t, 200, resp.StatusCode, "confirmed delete should return 200")

	require.Equal(t, "deleted", setup.CommentStatus(t, db, ctx, parentId), "parent should be deleted")
	require.Equal(t, "deleted", setup.CommentStatus(t, db, ctx, replyId), "reply should be deleted")

	req = setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=10", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "thread reload should complete")
	require.Equal(t, 200, resp.StatusCode, "thread reload should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(1), result["loadedCount"], "only the leaf remains")
	comments := result["comments"].([]interface{})
	require.Len(t, comments, 1, "snapshot should hold one comment")
	remaining := comments[0].(map[string]interface{})["comment"].(map[string]interface{})
	require.Equal(t, leafId.String(), remaining["id"], "the leaf should be the one remaining")

	t.Log("✓ Subtree removed from the open thread")

	// Test 3: Close the thread
	t.Log("=== Test 3: Close Thread ===")
	req = setup.CreateAuthRequest(http.MethodDelete, threadURL, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "close should complete")
	require.Equal(t, 200, resp.StatusCode, "close should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, "OK", result["status"], "close should acknowledge")

	// Node operations now miss
	url = fmt.Sprintf("%s/comments/%s/expand", threadURL, leafId)
	req = setup.CreateAuthRequest(http.MethodPost, url, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "request should complete")
	require.Equal(t, 404, resp.StatusCode, "closed thread should return 404")

	result = setup.ParseJSONResponse(t, resp)
	code, message, _ := setup.ParseErrorDetail(t, result)
	require.Equal(t, "NOT_FOUND_ERROR", code, "error code should be NOT_FOUND_ERROR")

	t.Logf("✓ Closed thread rejected: %s", message)

	// Test 4: Closing again is a no-op, reloading opens a fresh store
	t.Log("=== Test 4: Re-Close And Reopen ===")
	req = setup.CreateAuthRequest(http.MethodDelete, threadURL, nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "second close should complete")
	require.Equal(t, 200, resp.StatusCode, "second close should return 200")

	req = setup.CreateAuthRequest(http.MethodGet, threadURL+"?limit=10", nil, accessToken)
	resp, err = app.Test(req)
	require.NoError(t, err, "reopen should complete")
	require.Equal(t, 200, resp.StatusCode, "reopen should return 200")

	result = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(1), result["loadedCount"], "fresh store loads the remaining comment")

	t.Log("✓ Thread reopened from scratch")

	t.Log("=== All Thread Delete And Close Tests Passed ===")
}
