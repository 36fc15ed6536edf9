package payment

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/backend/internal/domain/shared"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), "JOB20250101120000123", 100000, MethodVNPay, 100, nil)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name    string
		owner   uuid.UUID
		code    string
		amount  int64
		method  Method
		points  int64
		wantErr error
	}{
		{"valid", owner, "JOB1", 10000, MethodMoMo, 10, nil},
		{"missing owner", uuid.Nil, "JOB1", 10000, MethodMoMo, 10, ErrInvalidOwner},
		{"empty order code", owner, " ", 10000, MethodMoMo, 10, ErrInvalidOrderCode},
		{"zero amount", owner, "JOB1", 0, MethodMoMo, 10, ErrInvalidAmount},
		{"unknown method", owner, "JOB1", 10000, Method("paypal"), 10, ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayment(tt.owner, tt.code, tt.amount, tt.method, tt.points, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, p.Status)
			assert.Equal(t, 1, p.Version)
			assert.NotNil(t, p.Meta)
			assert.Nil(t, p.GatewayTranID)
		})
	}
}

func TestPayment_MarkSucceeded(t *testing.T) {
	p := newTestPayment(t)
	now := time.Now()

	require.NoError(t, p.MarkSucceeded("999", now))

	assert.Equal(t, StatusSuccess, p.Status)
	require.NotNil(t, p.GatewayTranID)
	assert.Equal(t, "999", *p.GatewayTranID)
	assert.Equal(t, int64(100), p.CreditDue())
	assert.Equal(t, 2, p.Version)

	events := p.PendingEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(*PaymentSucceededEvent)
	require.True(t, ok)
	assert.Equal(t, "999", evt.GatewayTranID)
	assert.Equal(t, int64(100), evt.Points)

	t.Run("second success is a no-op", func(t *testing.T) {
		err := p.MarkSucceeded("1000", now)
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
		assert.Equal(t, "999", *p.GatewayTranID)
		assert.Len(t, p.PendingEvents(), 1)
	})

	t.Run("failure never downgrades success", func(t *testing.T) {
		err := p.MarkFailed("provider", now)
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
		assert.Equal(t, StatusSuccess, p.Status)
	})
}

func TestPayment_MarkFailed(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.MarkFailed("customer cancelled", time.Now()))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Zero(t, p.CreditDue())

	err := p.MarkSucceeded("999", time.Now())
	assert.True(t, errors.Is(err, ErrAlreadyTerminal))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Zero(t, p.CreditDue())
}

func TestPayment_RecordCallback(t *testing.T) {
	p := newTestPayment(t)
	at := time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)

	k1 := p.RecordCallback(ChannelReturn, map[string]string{"vnp_ResponseCode": "00"}, at)
	k2 := p.RecordCallback(ChannelReturn, map[string]string{"vnp_ResponseCode": "24"}, at)
	k3 := p.RecordCallback(ChannelIPN, map[string]string{"vnp_ResponseCode": "00"}, at)

	assert.Equal(t, "vnpay_return_1", k1)
	assert.Equal(t, "vnpay_return_2", k2)
	assert.Equal(t, "vnpay_ipn_1", k3)
	assert.Len(t, p.Meta, 3)
	assert.Equal(t, "00", p.Meta[k1].Payload["vnp_ResponseCode"])
	assert.Equal(t, "24", p.Meta[k2].Payload["vnp_ResponseCode"])
}

func TestPayment_RecordUnverifiedCallback_Capped(t *testing.T) {
	p := newTestPayment(t)
	at := time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)
	forged := map[string]string{"vnp_ResponseCode": "00", "vnp_SecureHash": "bad"}

	for i := 0; i < MaxUnverifiedPerChannel; i++ {
		require.NotEmpty(t, p.RecordUnverifiedCallback(ChannelIPN, forged, at))
	}
	assert.Empty(t, p.RecordUnverifiedCallback(ChannelIPN, forged, at), "past the cap")
	assert.Len(t, p.Meta, MaxUnverifiedPerChannel)

	// the cap is per channel and never applies to signed payloads
	assert.Equal(t, "vnpay_return_1", p.RecordUnverifiedCallback(ChannelReturn, forged, at))
	key := p.RecordCallback(ChannelIPN, map[string]string{"vnp_ResponseCode": "00"}, at)
	assert.Equal(t, fmt.Sprintf("vnpay_ipn_%d", MaxUnverifiedPerChannel+1), key)
	assert.False(t, p.Meta[key].Unverified)
	assert.True(t, p.Meta["vnpay_ipn_1"].Unverified)
	assert.Len(t, p.Meta, MaxUnverifiedPerChannel+2)
}

func TestMeta_RoundTripAndMerge(t *testing.T) {
	m := Meta{}
	m.Append("momo_ipn", map[string]string{"resultCode": "0"}, time.Now())

	raw, err := m.MarshalString()
	require.NoError(t, err)

	parsed, err := ParseMeta(raw)
	require.NoError(t, err)
	assert.Equal(t, "0", parsed["momo_ipn_1"].Payload["resultCode"])

	other := Meta{"momo_ipn_1": MetaEntry{Payload: map[string]string{"resultCode": "1006"}}, "momo_return_1": MetaEntry{}}
	parsed.Merge(other)
	assert.Equal(t, "0", parsed["momo_ipn_1"].Payload["resultCode"], "existing entries are never replaced")
	assert.Contains(t, parsed, "momo_return_1")

	empty, err := ParseMeta("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseMeta("{not json")
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" VNPay ")
	require.NoError(t, err)
	assert.Equal(t, MethodVNPay, m)

	_, err = ParseMethod("zalopay")
	assert.ErrorIs(t, err, ErrInvalidMethod)
	assert.True(t, errors.Is(err, ErrInvalidMethod))
}

func TestDomainErrorsMapToSharedCodes(t *testing.T) {
	assert.ErrorIs(t, ErrPaymentNotFound, shared.ErrNotFound)
	assert.ErrorIs(t, ErrDuplicateOrderCode, shared.ErrAlreadyExists)
}
