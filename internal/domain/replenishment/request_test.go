package replenishment

import (
	"testing"
	"time"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T) *Request {
	t.Helper()
	req, err := NewRequest(
		"REQ-20260831-001", "PROD-001", "Espresso Beans 1kg", "Central Warehouse",
		decimal.NewFromInt(300), time.Now().Add(72*time.Hour),
		"WH-EAST", "East Regional", "Stock fell below warehouse threshold",
	)
	require.NoError(t, err)
	return req
}

func TestNewRequestID(t *testing.T) {
	ts := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "REQ-20260831-012", NewRequestID(ts, 12))
	assert.Equal(t, "REQ-20260831-003", NewRequestID(ts, 2003))
}

func TestNewRequest(t *testing.T) {
	t.Run("creates pending request with an initial progress step", func(t *testing.T) {
		req := newTestRequest(t)

		assert.Equal(t, RequestStatusPending, req.Status)
		require.Len(t, req.Progress, 1)
		assert.Equal(t, "Request created", req.Progress[0].Title)
		assert.Equal(t, ProgressStateCompleted, req.Progress[0].Status)

		events := req.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeRequestCreated, events[0].EventType())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewRequest("REQ-20260831-001", "PROD-001", "", "", decimal.Zero, time.Now(), "WH-EAST", "", "")

		assert.Equal(t, shared.ErrInvalidQuantity, err)
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		_, err := NewRequest("", "PROD-001", "", "", decimal.NewFromInt(10), time.Now(), "WH-EAST", "", "")
		assert.Error(t, err)

		_, err = NewRequest("REQ-20260831-001", "", "", "", decimal.NewFromInt(10), time.Now(), "WH-EAST", "", "")
		assert.Error(t, err)

		_, err = NewRequest("REQ-20260831-001", "PROD-001", "", "", decimal.NewFromInt(10), time.Now(), "", "", "")
		assert.Error(t, err)
	})
}

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{RequestStatusPending, RequestStatusProcessing, true},
		{RequestStatusPending, RequestStatusApproved, true},
		{RequestStatusPending, RequestStatusRejected, true},
		{RequestStatusPending, RequestStatusInTransit, false},
		{RequestStatusProcessing, RequestStatusApproved, true},
		{RequestStatusProcessing, RequestStatusRejected, true},
		{RequestStatusProcessing, RequestStatusPending, false},
		{RequestStatusApproved, RequestStatusInTransit, true},
		{RequestStatusApproved, RequestStatusRejected, false},
		{RequestStatusInTransit, RequestStatusArrived, true},
		{RequestStatusInTransit, RequestStatusCompleted, true},
		{RequestStatusArrived, RequestStatusCompleted, true},
		{RequestStatusArrived, RequestStatusInTransit, false},
		{RequestStatusRejected, RequestStatusPending, false},
		{RequestStatusCompleted, RequestStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestStatus_Classification(t *testing.T) {
	assert.True(t, RequestStatusRejected.IsTerminal())
	assert.True(t, RequestStatusCompleted.IsTerminal())
	assert.False(t, RequestStatusArrived.IsTerminal())

	assert.True(t, RequestStatusPending.IsOpen())
	assert.True(t, RequestStatusProcessing.IsOpen())
	assert.True(t, RequestStatusApproved.IsOpen())
	assert.False(t, RequestStatusInTransit.IsOpen())
	assert.False(t, RequestStatusRejected.IsOpen())

	assert.ElementsMatch(t, []RequestStatus{RequestStatusPending, RequestStatusProcessing, RequestStatusApproved}, OpenStatuses)
	assert.False(t, RequestStatus("ON_HOLD").IsValid())
}

func TestRequest_Lifecycle(t *testing.T) {
	t.Run("full happy path through arrival", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.MarkProcessing())
		require.NoError(t, req.Approve("Approved by east manager"))
		require.NoError(t, req.MarkInTransit("TRF-20260831-002"))
		require.NoError(t, req.MarkArrived())
		require.NoError(t, req.Complete("Goods received"))

		assert.Equal(t, RequestStatusCompleted, req.Status)
		require.Len(t, req.Progress, 6)
		assert.Equal(t, "In transit", req.Progress[3].Title)
		assert.Contains(t, req.Progress[3].Desc, "TRF-20260831-002")
	})

	t.Run("in-transit request can complete without an arrival step", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Approve(""))
		require.NoError(t, req.MarkInTransit("TRF-20260831-002"))

		assert.NoError(t, req.Complete("Goods received"))
	})

	t.Run("approve emits decision event", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.Approve("Looks fine"))

		events := req.GetDomainEvents()
		require.Len(t, events, 2)
		decided, ok := events[1].(*RequestDecidedEvent)
		require.True(t, ok)
		assert.Equal(t, RequestStatusApproved, decided.Status)
		assert.Equal(t, "Looks fine", decided.Remark)
	})

	t.Run("rejected request is terminal", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Reject("Quantity unjustified"))

		assert.Equal(t, shared.ErrInvalidState, req.Approve(""))
		assert.Equal(t, shared.ErrInvalidState, req.MarkProcessing())
		assert.Equal(t, shared.ErrInvalidState, req.Complete(""))
	})

	t.Run("guards reject out-of-order transitions", func(t *testing.T) {
		req := newTestRequest(t)

		assert.Equal(t, shared.ErrInvalidState, req.MarkInTransit("TRF-20260831-002"))
		assert.Equal(t, shared.ErrInvalidState, req.MarkArrived())
		assert.Equal(t, shared.ErrInvalidState, req.Complete(""))
	})
}
