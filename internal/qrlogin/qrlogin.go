package qrlogin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mdp/qrterminal/v3"

	"walletbot/internal/config"
	"walletbot/internal/logging"
)

// guardPrefix wraps JSON answers of the identity provider
const guardPrefix = "&&&START&&&"

// Credentials is the long-lived credential set obtained by a confirmed scan
type Credentials struct {
	UserID        string
	PassToken     string
	SecurityToken string
}

// Ticket is one issued login QR code: the URL to render as a QR image and
// the long-polling URL reporting its scan status.
type Ticket struct {
	QRURL   string
	PollURL string
	Timeout time.Duration
}

// Client drives the scan-to-login flow of the identity provider
type Client struct {
	startURL string
	hc       *http.Client
	pollHC   *http.Client
	log      *logging.Logger
	now      func() time.Time

	// retryPause spaces out retries after poll transport errors
	retryPause func(ctx context.Context) error
}

// NewClient creates a QR login client
func NewClient(vendor config.Vendor, log *logging.Logger) *Client {
	return &Client{
		startURL: vendor.QRLoginURL,
		hc:       &http.Client{Timeout: 10 * time.Second},
		// The status endpoint long-polls; it holds the connection until
		// the scan state changes or roughly a minute passes.
		pollHC: &http.Client{Timeout: 60 * time.Second},
		log:    log,
		now:    time.Now,
		retryPause: func(ctx context.Context) error {
			timer := time.NewTimer(3 * time.Second)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

func stripGuard(body []byte) []byte {
	s := string(body)
	if idx := strings.Index(s, guardPrefix); idx >= 0 {
		s = strings.TrimSpace(s[idx+len(guardPrefix):])
	}
	return []byte(s)
}

// Start requests a fresh login QR code
func (c *Client) Start(ctx context.Context) (*Ticket, error) {
	params := url.Values{}
	params.Set("_group", "DEFAULT")
	params.Set("_qrsize", "240")
	params.Set("qs", "?callback=https%3A%2F%2Faccount.xiaomi.com%2Fsts%3Fsign%3DZvAtJIzsDsFe60LdaPa76nNNP58%253D%26followup%3Dhttps%253A%252F%252Faccount.xiaomi.com%252Fpass%252Fauth%252Fsecurity%252Fhome%26sid%3Dpassport&sid=passport&_group=DEFAULT")
	params.Set("bizDeviceType", "")
	params.Set("callback", "https://account.xiaomi.com/sts?sign=ZvAtJIzsDsFe60LdaPa76nNNP58=&followup=https://account.xiaomi.com/pass/auth/security/home&sid=passport")
	params.Set("_hasLogo", "false")
	params.Set("theme", "")
	params.Set("sid", "passport")
	params.Set("needTheme", "false")
	params.Set("showActiveX", "false")
	params.Set("serviceParam", `{"checkSafePhone":false,"checkSafeAddress":false,"lsrp_score":0.0}`)
	params.Set("_locale", "zh_CN")
	params.Set("_sign", "2&V1_passport&BUcblfwZ4tX84axhVUaw8t6yi2E=")
	params.Set("_dc", fmt.Sprintf("%d", c.now().UnixMilli()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.startURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build QR request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("QR request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR response: %w", err)
	}

	var answer struct {
		Code    int    `json:"code"`
		QR      string `json:"qr"`
		LP      string `json:"lp"`
		Timeout int    `json:"timeout"`
	}
	if err := json.Unmarshal(stripGuard(body), &answer); err != nil {
		return nil, fmt.Errorf("failed to parse QR response: %w", err)
	}
	if answer.Code != 0 {
		return nil, fmt.Errorf("QR endpoint returned code %d", answer.Code)
	}
	if answer.QR == "" || answer.LP == "" {
		return nil, fmt.Errorf("QR response is missing the qr or lp URL")
	}

	timeout := time.Duration(answer.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Ticket{QRURL: answer.QR, PollURL: answer.LP, Timeout: timeout}, nil
}

// RenderQR draws the QR code as terminal block characters
func RenderQR(w io.Writer, qrURL string) {
	qrterminal.GenerateWithConfig(qrURL, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    w,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
}

// Scan status codes of the long-polling endpoint.
const (
	statusWaiting   = 700
	statusScanned   = 701
	statusExpired   = 702
	statusConfirmed = 0
)

// Poll waits for the QR code to be scanned and confirmed. Long-poll timeouts
// are normal and retried silently; other transport errors pause briefly
// before retrying. Returns an error when the code expires or the ticket's
// validity window runs out.
func (c *Client) Poll(ctx context.Context, ticket *Ticket) (*Credentials, error) {
	deadline := c.now().Add(ticket.Timeout)
	lastStatus := -1

	for c.now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ticket.PollURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build poll request: %w", err)
		}

		resp, err := c.pollHC.Do(req)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warnf("检查扫码状态失败，稍后重试：%v", err)
			if err := c.retryPause(ctx); err != nil {
				return nil, err
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}

		var answer struct {
			Code      int    `json:"code"`
			UserID    FlexID `json:"userId"`
			PassToken string `json:"passToken"`
			SSecurity string `json:"ssecurity"`
		}
		if err := json.Unmarshal(stripGuard(body), &answer); err != nil {
			c.log.Warnf("解析扫码状态失败：%s", string(body))
			continue
		}

		if answer.Code != lastStatus {
			lastStatus = answer.Code
			c.log.Info(statusText(answer.Code))
		}

		switch answer.Code {
		case statusConfirmed:
			return &Credentials{
				UserID:        answer.UserID.String(),
				PassToken:     answer.PassToken,
				SecurityToken: answer.SSecurity,
			}, nil
		case statusExpired:
			return nil, fmt.Errorf("二维码已过期，请重新获取")
		}
	}

	return nil, fmt.Errorf("二维码已过期，登录超时")
}

func statusText(code int) string {
	switch code {
	case statusWaiting:
		return "等待扫码"
	case statusScanned:
		return "已扫码，请在手机上确认"
	case statusExpired:
		return "二维码已过期"
	case statusConfirmed:
		return "登录成功"
	default:
		return fmt.Sprintf("未知状态: %d", code)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FlexID tolerates the provider sending the user id as a number or string
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexID(num.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	*f = ""
	return nil
}

func (f FlexID) String() string { return string(f) }
