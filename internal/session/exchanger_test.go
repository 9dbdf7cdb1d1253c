package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger("test").SetOutputs(io.Discard)
}

func testVendor(server *httptest.Server) config.Vendor {
	vendor := config.DefaultVendor()
	vendor.BaseURL = server.URL
	vendor.LoginURL = server.URL + "/pass/serviceLogin"
	return vendor
}

func TestExchangeHarvestsSessionCookies(t *testing.T) {
	var gotCookie, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pass/serviceLogin":
			gotCookie = r.Header.Get("Cookie")
			gotUA = r.Header.Get("User-Agent")
			http.SetCookie(w, &http.Cookie{Name: "cUserId", Value: "cu-123", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: "serviceToken", Value: "st-456", Path: "/"})
			http.Redirect(w, r, "/mp/activity", http.StatusFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	exchanger := NewExchanger(testVendor(server), testLogger())
	sess, err := exchanger.Exchange(context.Background(), credstore.Account{
		Alias:     "alice",
		UserID:    "100",
		PassToken: "ptok",
	})
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if sess == nil {
		t.Fatal("expected a session")
	}
	if sess.CUserID != "cu-123" || sess.ServiceToken != "st-456" {
		t.Errorf("session = %+v", sess)
	}

	if gotCookie != "passToken=ptok; userId=100;" {
		t.Errorf("login cookie = %q", gotCookie)
	}
	if gotUA == "" {
		t.Error("expected a User-Agent header on the handshake")
	}

	want := "cUserId=cu-123; jrairstar_serviceToken=st-456"
	if got := sess.CookieHeader(); got != want {
		t.Errorf("CookieHeader() = %q, want %q", got, want)
	}
}

func TestExchangeExpiredCredentialReturnsNilSession(t *testing.T) {
	// The identity provider answers but never sets the session cookies, which
	// is how an expired passToken manifests.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exchanger := NewExchanger(testVendor(server), testLogger())
	sess, err := exchanger.Exchange(context.Background(), credstore.Account{
		Alias:     "bob",
		UserID:    "200",
		PassToken: "stale",
	})
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session for expired credential, got %+v", sess)
	}
}

func TestExchangeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	exchanger := NewExchanger(testVendor(server), testLogger())
	if _, err := exchanger.Exchange(context.Background(), credstore.Account{Alias: "x"}); err == nil {
		t.Fatal("expected error when the identity provider is unreachable")
	}
}
