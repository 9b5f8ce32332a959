package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/rentnest/rentnest-server/internal/apperr"
)

// Methods accepted at checkout.
var Methods = map[string]bool{
	"visa":       true,
	"mastercard": true,
	"ecocash":    true,
	"innbucks":   true,
}

var ErrDeclined = errors.New("payment declined")

type ChargeRequest struct {
	UserID    string  `json:"user_id"`
	PlanID    string  `json:"plan_id"`
	Method    string  `json:"method"`
	AmountUSD float64 `json:"amount_usd"`
}

type ChargeResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Client talks to the external payment provider. Transient provider errors
// retry with exponential backoff; a tripped breaker fails fast instead of
// stacking requests onto a failing provider.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	retryMax time.Duration
}

func NewClient(baseURL string, timeout, retryMaxElapsed time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "payment-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		breaker:  cb,
		retryMax: retryMaxElapsed,
	}
}

func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var res *ChargeResult
		op := func() error {
			r, err := c.do(ctx, body)
			if err != nil {
				return err
			}
			res = r
			return nil
		}
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = c.retryMax
		if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.ErrUnavailable
		}
		return nil, err
	}
	return out.(*ChargeResult), nil
}

func (c *Client) do(ctx context.Context, body []byte) (*ChargeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var res ChargeResult
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, backoff.Permanent(err)
		}
		return &res, nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, backoff.Permanent(ErrDeclined)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("provider %d", resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("provider %d", resp.StatusCode))
	}
}
