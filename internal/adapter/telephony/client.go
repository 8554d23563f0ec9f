// Package telephony places outbound voice calls through a
// Twilio-compatible REST API and renders call scripts into the
// provider's TwiML voice markup.
package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RejectionReason categorizes call placement failures for callers and
// metrics.
type RejectionReason string

const (
	ReasonInvalidNumber         RejectionReason = "invalid_number"
	ReasonUnverifiedDestination RejectionReason = "unverified_destination"
	ReasonAuthFailure           RejectionReason = "auth"
	ReasonRateLimited           RejectionReason = "rate_limited"
	ReasonProvider              RejectionReason = "provider"
)

// Provider error codes with dedicated remediation hints.
const (
	codeUnverifiedNumber = 21219
	codeInvalidNumber    = 21610
)

// CallError is a typed call placement rejection. Hint carries a
// human-readable remediation step suitable for the caller-facing API.
type CallError struct {
	Code   int
	Reason RejectionReason
	Hint   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call rejected (%s, code %d): %s", e.Reason, e.Code, e.Hint)
}

// Client places calls via the provider's REST API.
type Client struct {
	accountSID        string
	authToken         string
	fromNumber        string
	statusCallbackURL string
	baseURL           string
	httpClient        *http.Client
	logger            *slog.Logger
}

// NewClient creates a voice API client. A non-empty statusCallbackURL
// registers terminal call-status notifications per placed call.
func NewClient(accountSID, authToken, fromNumber, statusCallbackURL string, logger *slog.Logger) *Client {
	return &Client{
		accountSID:        accountSID,
		authToken:         authToken,
		fromNumber:        fromNumber,
		statusCallbackURL: statusCallbackURL,
		baseURL:           "https://api.twilio.com",
		httpClient:        &http.Client{Timeout: 15 * time.Second},
		logger:            logger,
	}
}

// PlaceCall starts an outbound call that speaks the given TwiML document
// and returns the provider call ID. Rejections come back as *CallError;
// no automatic retry is attempted.
func (c *Client) PlaceCall(ctx context.Context, twiml, targetNumber string) (string, error) {
	form := url.Values{
		"To":    {targetNumber},
		"From":  {c.fromNumber},
		"Twiml": {twiml},
	}
	// The "completed" event covers every terminal CallStatus (completed,
	// busy, failed, no-answer).
	if c.statusCallbackURL != "" {
		form.Set("StatusCallback", c.statusCallbackURL)
		form.Set("StatusCallbackMethod", http.MethodPost)
		form.Set("StatusCallbackEvent", "completed")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("place call: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", decodeCallError(resp.StatusCode, body)
	}

	var created struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode call response: %w", err)
	}
	if created.SID == "" {
		return "", errors.New("provider returned no call sid")
	}

	c.logger.Info("call placed", "call_id", created.SID, "to", targetNumber)
	return created.SID, nil
}

func decodeCallError(status int, body []byte) error {
	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiErr)

	switch {
	case apiErr.Code == codeUnverifiedNumber:
		return &CallError{
			Code:   apiErr.Code,
			Reason: ReasonUnverifiedDestination,
			Hint:   "the destination number is not verified for this account; verify it in the provider console or upgrade the account",
		}
	case apiErr.Code == codeInvalidNumber:
		return &CallError{
			Code:   apiErr.Code,
			Reason: ReasonInvalidNumber,
			Hint:   "the phone number format is invalid; use E.164 format, e.g. +13614259843",
		}
	case status == http.StatusUnauthorized:
		return &CallError{
			Code:   apiErr.Code,
			Reason: ReasonAuthFailure,
			Hint:   "provider authentication failed; check the account SID and auth token",
		}
	case status == http.StatusTooManyRequests:
		return &CallError{
			Code:   apiErr.Code,
			Reason: ReasonRateLimited,
			Hint:   "provider rate limit reached; retry later",
		}
	default:
		return &CallError{
			Code:   apiErr.Code,
			Reason: ReasonProvider,
			Hint:   fmt.Sprintf("provider rejected the call (status %d): %s", status, apiErr.Message),
		}
	}
}
