package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentnest/rentnest-server/internal/apperr"
)

func chargeReq() ChargeRequest {
	return ChargeRequest{UserID: "u1", PlanID: "basic", Method: "visa", AmountUSD: 15}
}

func TestChargeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)
		var req ChargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "basic", req.PlanID)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ChargeResult{Reference: "ref-1", Status: "succeeded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 2*time.Second)
	res, err := c.Charge(context.Background(), chargeReq())
	require.NoError(t, err)
	assert.Equal(t, "ref-1", res.Reference)
}

func TestChargeRetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(ChargeResult{Reference: "ref-2", Status: "succeeded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 10*time.Second)
	res, err := c.Charge(context.Background(), chargeReq())
	require.NoError(t, err)
	assert.Equal(t, "ref-2", res.Reference)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestChargeDeclinedIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 10*time.Second)
	_, err := c.Charge(context.Background(), chargeReq())
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChargeBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 10*time.Millisecond)
	for i := 0; i < 5; i++ {
		_, err := c.Charge(context.Background(), chargeReq())
		require.Error(t, err)
	}

	_, err := c.Charge(context.Background(), chargeReq())
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestChargeRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, time.Second, 10*time.Second)
	_, err := c.Charge(ctx, chargeReq())
	assert.Error(t, err)
}
