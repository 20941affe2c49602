package twilio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumabot/lumabot-backend/internal/pkg/logger"
)

func testClient(t *testing.T, serverURL string) Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	c, err := New(log, Config{
		AccountSID:  "AC123",
		AuthToken:   "secret",
		BaseURL:     serverURL,
		DefaultFrom: "+15550009999",
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSendWhatsAppPrefixesAddresses(t *testing.T) {
	var gotTo, gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("basic auth = %q/%q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		_ = json.NewEncoder(w).Encode(Message{SID: "SM1", Status: "queued"})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	msg, err := c.SendWhatsApp(context.Background(), "+15551234567", "Hello")
	if err != nil {
		t.Fatalf("SendWhatsApp: %v", err)
	}
	if msg.SID != "SM1" {
		t.Fatalf("message = %+v", msg)
	}
	if gotTo != "whatsapp:+15551234567" {
		t.Fatalf("To = %q", gotTo)
	}
	if gotFrom != "whatsapp:+15550009999" {
		t.Fatalf("From = %q", gotFrom)
	}
}

func TestSendSMSValidation(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0")

	if _, err := c.SendSMS(context.Background(), "", "Hello"); err == nil {
		t.Fatalf("SendSMS accepted empty To")
	}
	if _, err := c.SendSMS(context.Background(), "+15551234567", "  "); err == nil {
		t.Fatalf("SendSMS accepted empty Body")
	}
}
