package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ErrDelivery marks a message Telegram did not accept.
var ErrDelivery = errors.New("telegram delivery")

// Outcome classifies a delivery attempt.
type Outcome int

const (
	Delivered Outcome = iota
	// Rejected means Telegram answered with ok=false.
	Rejected
	// TransportFailed means no usable answer came back.
	TransportFailed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Rejected:
		return "rejected"
	default:
		return "transport_failed"
	}
}

// Result reports how a send went. Sends are never retried.
type Result struct {
	Outcome     Outcome
	StatusCode  int
	Description string
	Err         error
}

// OK reports whether the message was delivered.
func (r Result) OK() bool { return r.Outcome == Delivered }

// Error converts a failed result into an error wrapping ErrDelivery.
func (r Result) Error() error {
	switch r.Outcome {
	case Delivered:
		return nil
	case Rejected:
		return fmt.Errorf("%w: rejected (status %d): %s", ErrDelivery, r.StatusCode, r.Description)
	default:
		if r.Err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, r.Err)
		}
		return fmt.Errorf("%w: unexpected response (status %d)", ErrDelivery, r.StatusCode)
	}
}

// TelegramNotifier sends messages and photos via the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// An empty baseURL uses DefaultBaseURL.
func NewTelegramNotifier(botToken, chatID, baseURL, proxyURL string) *TelegramNotifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(30 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &TelegramNotifier{botToken: botToken, chatID: chatID, client: client}
}

// SendMessage posts an HTML message to the configured chat.
func (t *TelegramNotifier) SendMessage(ctx context.Context, text string, preview bool) Result {
	req := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":                  t.chatID,
			"text":                     text,
			"parse_mode":               "HTML",
			"disable_web_page_preview": strconv.FormatBool(!preview),
		})
	return t.do(req, "sendMessage")
}

// SendPhoto uploads a JPEG with an HTML caption to the configured chat.
func (t *TelegramNotifier) SendPhoto(ctx context.Context, photo []byte, caption string) Result {
	req := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.chatID,
			"caption":    caption,
			"parse_mode": "HTML",
		}).
		SetFileReader("photo", "chart.jpg", bytes.NewReader(photo))
	return t.do(req, "sendPhoto")
}

func (t *TelegramNotifier) do(req *resty.Request, method string) Result {
	resp, err := req.Post("/bot" + t.botToken + "/" + method)
	if err != nil {
		return Result{Outcome: TransportFailed, Err: t.redact(err)}
	}

	body := resp.Body()
	ok := gjson.GetBytes(body, "ok")
	switch {
	case !ok.Exists():
		return Result{Outcome: TransportFailed, StatusCode: resp.StatusCode()}
	case ok.Bool() && resp.IsSuccess():
		return Result{Outcome: Delivered, StatusCode: resp.StatusCode()}
	default:
		return Result{
			Outcome:     Rejected,
			StatusCode:  resp.StatusCode(),
			Description: gjson.GetBytes(body, "description").String(),
		}
	}
}

// redact keeps the bot token out of logged transport errors.
func (t *TelegramNotifier) redact(err error) error {
	if t.botToken == "" || !strings.Contains(err.Error(), t.botToken) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), t.botToken, "<token>"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
