package payment

import (
	"strconv"
	"strings"
)

// Outcome is the provider-independent result of a verified callback
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// Channel is the transport a callback arrived on
type Channel string

const (
	// ChannelReturn is the browser redirect back from the gateway
	ChannelReturn Channel = "return"
	// ChannelIPN is the server-to-server notification
	ChannelIPN Channel = "ipn"
)

// VNPayResponseCode is the vnp_ResponseCode value of a VNPay callback
type VNPayResponseCode string

const (
	VNPayResponseSuccess             VNPayResponseCode = "00"
	VNPayResponseSuspicious          VNPayResponseCode = "07"
	VNPayResponseNoInternetBanking   VNPayResponseCode = "09"
	VNPayResponseAuthFailed          VNPayResponseCode = "10"
	VNPayResponseExpired             VNPayResponseCode = "11"
	VNPayResponseCardLocked          VNPayResponseCode = "12"
	VNPayResponseWrongOTP            VNPayResponseCode = "13"
	VNPayResponseCustomerCancelled   VNPayResponseCode = "24"
	VNPayResponseInsufficientBalance VNPayResponseCode = "51"
	VNPayResponseLimitExceeded       VNPayResponseCode = "65"
	VNPayResponseBankMaintenance     VNPayResponseCode = "75"
	VNPayResponseWrongPassword       VNPayResponseCode = "79"
	VNPayResponseOther               VNPayResponseCode = "99"
)

var vnpayResponseDescriptions = map[VNPayResponseCode]string{
	VNPayResponseSuccess:             "transaction successful",
	VNPayResponseSuspicious:          "amount deducted, transaction flagged as suspicious",
	VNPayResponseNoInternetBanking:   "card not registered for internet banking",
	VNPayResponseAuthFailed:          "card authentication failed too many times",
	VNPayResponseExpired:             "payment window expired",
	VNPayResponseCardLocked:          "card or account locked",
	VNPayResponseWrongOTP:            "wrong OTP",
	VNPayResponseCustomerCancelled:   "customer cancelled",
	VNPayResponseInsufficientBalance: "insufficient balance",
	VNPayResponseLimitExceeded:       "daily limit exceeded",
	VNPayResponseBankMaintenance:     "bank under maintenance",
	VNPayResponseWrongPassword:       "wrong payment password too many times",
	VNPayResponseOther:               "other error",
}

// Outcome translates the response code; only "00" is a success
func (c VNPayResponseCode) Outcome() Outcome {
	if c == VNPayResponseSuccess {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// Description returns a human readable explanation of the code
func (c VNPayResponseCode) Description() string {
	if d, ok := vnpayResponseDescriptions[c]; ok {
		return d
	}
	return "unknown response code"
}

// String returns the raw code
func (c VNPayResponseCode) String() string {
	return string(c)
}

// MoMoResultCode is the resultCode value of a MoMo response or callback
type MoMoResultCode int

const (
	MoMoResultSuccess            MoMoResultCode = 0
	MoMoResultInitiated          MoMoResultCode = 1000
	MoMoResultInsufficientFunds  MoMoResultCode = 1001
	MoMoResultRejectedByIssuer   MoMoResultCode = 1002
	MoMoResultCancelled          MoMoResultCode = 1003
	MoMoResultLimitExceeded      MoMoResultCode = 1004
	MoMoResultExpired            MoMoResultCode = 1005
	MoMoResultUserDenied         MoMoResultCode = 1006
	MoMoResultAccountInactive    MoMoResultCode = 1007
	MoMoResultCancelledByPartner MoMoResultCode = 1017
	MoMoResultProcessing         MoMoResultCode = 7000
	MoMoResultPending            MoMoResultCode = 8000
	MoMoResultAuthorized         MoMoResultCode = 9000
	// MoMoResultUnparseable marks a resultCode that is not an integer
	MoMoResultUnparseable MoMoResultCode = -1
)

var momoResultDescriptions = map[MoMoResultCode]string{
	MoMoResultSuccess:            "successful",
	MoMoResultInitiated:          "transaction initiated, awaiting user confirmation",
	MoMoResultInsufficientFunds:  "insufficient funds",
	MoMoResultRejectedByIssuer:   "rejected by issuer",
	MoMoResultCancelled:          "transaction cancelled",
	MoMoResultLimitExceeded:      "amount exceeds limit",
	MoMoResultExpired:            "payment session expired",
	MoMoResultUserDenied:         "user denied the payment",
	MoMoResultAccountInactive:    "account inactive",
	MoMoResultCancelledByPartner: "cancelled by partner",
	MoMoResultProcessing:         "transaction processing",
	MoMoResultPending:            "transaction pending",
	MoMoResultAuthorized:         "authorized, not captured",
}

// ParseMoMoResultCode parses a resultCode as sent in a callback
func ParseMoMoResultCode(s string) MoMoResultCode {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return MoMoResultUnparseable
	}
	return MoMoResultCode(n)
}

// Outcome translates the result code; only 0 is a success
func (c MoMoResultCode) Outcome() Outcome {
	if c == MoMoResultSuccess {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// Description returns a human readable explanation of the code
func (c MoMoResultCode) Description() string {
	if d, ok := momoResultDescriptions[c]; ok {
		return d
	}
	return "unknown result code"
}

// String returns the code in decimal form
func (c MoMoResultCode) String() string {
	return strconv.Itoa(int(c))
}
