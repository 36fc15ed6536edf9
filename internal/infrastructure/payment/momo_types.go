package payment

// momoCreateRequest is the body of POST /v2/gateway/api/create
type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

// momoCreateResponse is MoMo's answer to a create request
type momoCreateResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
	Deeplink     string `json:"deeplink"`
	QrCodeURL    string `json:"qrCodeUrl"`
}

// momoCreateSignKeys is the field order of the create-payment raw string
var momoCreateSignKeys = []string{
	"accessKey", "amount", "extraData", "ipnUrl", "orderId", "orderInfo",
	"partnerCode", "redirectUrl", "requestId", "requestType",
}

// momoCallbackSignKeys is the field order of the return/IPN raw string.
// ipnUrl falls back to the configured IPN URL when the payload omits it.
var momoCallbackSignKeys = []string{
	"accessKey", "amount", "extraData", "ipnUrl", "message", "orderId", "orderInfo",
	"orderType", "partnerCode", "payType", "requestId", "responseTime",
	"resultCode", "transId",
}
