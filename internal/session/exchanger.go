package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"walletbot/internal/config"
	"walletbot/internal/credstore"
	"walletbot/internal/logging"
)

// Session is the short-lived cookie pair required by the task endpoints. It
// lives for one account run and is never persisted.
type Session struct {
	CUserID      string
	ServiceToken string
}

// CookieHeader renders the session as the Cookie header value the activity
// endpoints expect.
func (s *Session) CookieHeader() string {
	return fmt.Sprintf("cUserId=%s; jrairstar_serviceToken=%s", s.CUserID, s.ServiceToken)
}

// Exchanger mints short-lived sessions from long-lived credentials
type Exchanger struct {
	vendor config.Vendor
	log    *logging.Logger
}

// NewExchanger creates an exchanger against the given vendor endpoints
func NewExchanger(vendor config.Vendor, log *logging.Logger) *Exchanger {
	return &Exchanger{vendor: vendor, log: log}
}

// Exchange performs the identity-provider redirect handshake and harvests the
// session cookie pair. A nil session with nil error means the credential is
// expired or otherwise rejected; that is an expected outcome, not a failure.
// The credential record itself is never touched.
func (e *Exchanger) Exchange(ctx context.Context, cred credstore.Account) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.vendor.LoginURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("User-Agent", e.vendor.DesktopUA)
	req.Header.Set("Cookie", fmt.Sprintf("passToken=%s; userId=%s;", cred.PassToken, cred.UserID))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login handshake failed: %w", err)
	}
	resp.Body.Close()

	cUserID, serviceToken := harvest(jar, resp.Request.URL, e.vendor.BaseURL)
	if cUserID == "" || serviceToken == "" {
		e.log.Warnf("incomplete session cookies for account %s, passToken likely expired", cred.Alias)
		return nil, nil
	}

	return &Session{CUserID: cUserID, ServiceToken: serviceToken}, nil
}

// harvest scans the jar for the two session cookies. The handshake sets them
// along a redirect chain, so both the final URL and the activity host are
// checked.
func harvest(jar http.CookieJar, finalURL *url.URL, baseURL string) (string, string) {
	candidates := []*url.URL{}
	if finalURL != nil {
		candidates = append(candidates, finalURL)
	}
	if u, err := url.Parse(baseURL); err == nil {
		candidates = append(candidates, u)
	}

	var cUserID, serviceToken string
	for _, u := range candidates {
		for _, c := range jar.Cookies(u) {
			switch c.Name {
			case "cUserId":
				if cUserID == "" {
					cUserID = c.Value
				}
			case "serviceToken":
				if serviceToken == "" {
					serviceToken = c.Value
				}
			}
		}
	}
	return cUserID, serviceToken
}
