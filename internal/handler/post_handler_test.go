package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/qboard/internal/db"
	"github.com/qboard/internal/permission"
	"github.com/qboard/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAlice = "user:default/alice"
	testBob   = "user:default/bob"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	return newTestAPIWithPolicy(t, permission.DefaultPolicy(nil))
}

func newTestAPIWithPolicy(t *testing.T, policy *permission.Policy) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:qboard-handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewAPI(gdb, policy, nil, nil)
}

// testEngine wires the session middleware so handlers that touch the viewer
// session can run end to end.
func testEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("qboard_test", cookie.NewStore([]byte("test-secret"))))
	r.GET("/api/posts/:id", api.GetPost)
	r.POST("/api/posts", api.CreatePost)
	r.PUT("/api/posts/:id", api.UpdatePost)
	r.POST("/api/posts/:id/votes", api.VotePost)
	r.POST("/api/posts/:id/favorite", api.FavoritePost)
	r.POST("/api/posts/:id/answers/:answerId/correct", api.MarkAnswerCorrect)
	r.DELETE("/api/posts/:id/answers/:answerId/correct", api.MarkAnswerIncorrect)
	r.POST("/api/answers/:answerId/votes", api.VoteAnswer)
	return r
}

func jsonRequest(method, target, userRef string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userRef != "" {
		req.Header.Set(userRefHeader, userRef)
	}
	return req
}

func seedPost(t *testing.T, api *API, author string) *db.Post {
	t.Helper()
	post, err := api.posts.Create(service.PostInput{
		Author:  author,
		Type:    db.PostTypeQuestion,
		Title:   "seeded question",
		Content: "seeded content",
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestCreatePostEndpoint(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/posts", testAlice, map[string]any{
		"title":   "how do I test gin?",
		"content": "details inside",
		"tags":    []string{"go", "gin"},
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var post db.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if post.Author != testAlice || len(post.Tags) != 2 {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestCreatePostValidationError(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/posts", testAlice, map[string]any{
		"title": "no content",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestGetPostRecordsView(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, target, testBob, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got db.Post
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Views != 1 {
		t.Fatalf("views = %d, want 1", got.Views)
	}
}

func TestGetPostNotFound(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, "/api/posts/999", testBob, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUpdatePostForbiddenForStranger(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, target, testBob, map[string]any{
		"title":   "hijacked",
		"content": "hijacked",
	}))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdatePostAnonymousDenied(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, target, "", map[string]any{
		"title":   "x",
		"content": "x",
	}))

	// The policy denies outright before the store is consulted.
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}

func TestVotePostEndpoint(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID)) + "/votes"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, testBob, map[string]any{"value": 1}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Score != 1 {
		t.Fatalf("score = %d, want 1", resp.Score)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, testBob, map[string]any{"value": 7}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid value, got %d", w.Code)
	}
}

func TestVoteRequiresIdentity(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID)) + "/votes"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, "", map[string]any{"value": 1}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous post vote: expected 401, got %d", w.Code)
	}

	answer, err := api.answers.Create(testBob, post.ID, "an answer", false)
	if err != nil {
		t.Fatalf("seed answer: %v", err)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, fmt.Sprintf("/api/answers/%d/votes", answer.ID), "", map[string]any{"value": 1}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous answer vote: expected 401, got %d", w.Code)
	}

	var count int64
	if err := api.db.Model(&db.Vote{}).Count(&count).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != 0 {
		t.Fatalf("anonymous vote stored: %d rows", count)
	}
}

func TestFavoriteRequiresIdentity(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID)) + "/favorite"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, "", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous favorite: expected 401, got %d", w.Code)
	}

	var count int64
	if err := api.db.Model(&db.PostFavorite{}).Count(&count).Error; err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	if count != 0 {
		t.Fatalf("anonymous favorite stored: %d rows", count)
	}
}

func TestHiddenPostViewNotCounted(t *testing.T) {
	api := newTestAPIWithPolicy(t, permission.RestrictToOwnPosts(nil))
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	target := "/api/posts/" + strconv.Itoa(int(post.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, target, testBob, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("hidden post: expected 404, got %d", w.Code)
	}

	var views int
	if err := api.db.Model(&db.Post{}).Select("views").Where("id = ?", post.ID).Scan(&views).Error; err != nil {
		t.Fatalf("read views: %v", err)
	}
	if views != 0 {
		t.Fatalf("hidden post view counted: %d", views)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodGet, target, testAlice, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("owner read: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got db.Post
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Views != 1 {
		t.Fatalf("owner view not counted: views = %d, want 1", got.Views)
	}
}

func TestMarkCorrectOnlyQuestionAuthor(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)
	post := seedPost(t, api, testAlice)

	answer, err := api.answers.Create(testBob, post.ID, "an answer", false)
	if err != nil {
		t.Fatalf("seed answer: %v", err)
	}

	target := fmt.Sprintf("/api/posts/%d/answers/%d/correct", post.ID, answer.ID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, testBob, nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("answer author accepting own answer: expected 403, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, testAlice, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("question author: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMarkCorrectOnAnonymousQuestion(t *testing.T) {
	api := newTestAPI(t)
	r := testEngine(api)

	post, err := api.posts.Create(service.PostInput{
		Author:    testAlice,
		Type:      db.PostTypeQuestion,
		Title:     "asked quietly",
		Content:   "the author is hidden on reads",
		Anonymous: true,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	answer, err := api.answers.Create(testBob, post.ID, "an answer", false)
	if err != nil {
		t.Fatalf("seed answer: %v", err)
	}

	target := fmt.Sprintf("/api/posts/%d/answers/%d/correct", post.ID, answer.ID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, testBob, nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger accepting: expected 403, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, target, testAlice, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous question author accepting: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodDelete, target, testAlice, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous question author retracting: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
