package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumabot/lumabot-backend/internal/data/repos"
	"github.com/lumabot/lumabot-backend/internal/data/repos/testutil"
	"github.com/lumabot/lumabot-backend/internal/domain"
	"github.com/lumabot/lumabot-backend/internal/services"
)

type stubCompletion struct {
	reply string
}

func (s *stubCompletion) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	return s.reply, nil
}

func newWebhookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)

	identity := services.NewIdentityService(log, repos.NewUserRepo(db, log))
	conversations := services.NewConversationService(log, repos.NewConversationRepo(db, log))
	relay := services.NewRelayService(log, identity, conversations,
		repos.NewMessageRepo(db, log), &stubCompletion{reply: "Hi!"}, time.Second)

	router := gin.New()
	router.POST("/webhook", NewWebhookHandler(log, relay, nil).Handle)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookJSONHappyPath(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(t, router, `{"message":"Hello","userId":"+15551234567","username":"alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message        string `json:"message"`
		UserID         int64  `json:"userId"`
		ConversationID int64  `json:"conversationId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Hi!" || resp.UserID <= 0 || resp.ConversationID <= 0 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestWebhookNumericUserID(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(t, router, `{"message":"Hello","userId":12345}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	// A stale explicit id heals into a newly created user.
	var resp struct {
		UserID int64 `json:"userId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID <= 0 {
		t.Fatalf("userId = %d, want positive", resp.UserID)
	}
}

func TestWebhookInvalidConversationID(t *testing.T) {
	router := newWebhookRouter(t)

	for _, payload := range []string{
		`{"message":"Hello","userId":"+1555","conversationId":"abc"}`,
		`{"message":"Hello","userId":"+1555","conversationId":0}`,
		`{"message":"Hello","userId":"+1555","conversationId":-3}`,
	} {
		w := postJSON(t, router, payload)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: status = %d, want 400", payload, w.Code)
		}
	}
}

func TestWebhookUnknownConversationID(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(t, router, `{"message":"Hello","userId":"+1555","conversationId":424242}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}
}

func TestWebhookResetFlow(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(t, router, `{"message":"Hello","userId":"+15551112222"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("seed status = %d", w.Code)
	}
	var seeded struct {
		ConversationID int64 `json:"conversationId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &seeded); err != nil {
		t.Fatalf("decode seed response: %v", err)
	}

	w = postJSON(t, router, `{"message":"reset conversation","userId":"+15551112222","conversationId":`+
		strings.TrimSpace(jsonInt(seeded.ConversationID))+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "Conversation has been reset." {
		t.Fatalf("reset body = %q", got)
	}

	// Reset against a nonexistent conversation is a client error.
	w = postJSON(t, router, `{"message":"reset conversation","userId":"+15551112222","conversationId":999999}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("reset missing status = %d, want 404", w.Code)
	}
}

func TestWebhookTwilioForm(t *testing.T) {
	router := newWebhookRouter(t)

	form := url.Values{}
	form.Set("Body", "Hello")
	form.Set("From", "whatsapp:+15557778888")
	form.Set("ProfileName", "Bob")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
		UserID  int64  `json:"userId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Hi!" || resp.UserID <= 0 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestWebhookEmptyMessage(t *testing.T) {
	router := newWebhookRouter(t)

	w := postJSON(t, router, `{"message":"","userId":"+1555"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
