package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jobboard/backend/internal/domain/payment"
)

// DecodeMoMoNotification flattens a MoMo IPN JSON body into string fields.
// MoMo sends amount, resultCode, transId and responseTime as JSON numbers;
// they are rendered in plain decimal form, which is what the signature covers.
func DecodeMoMoNotification(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrMalformedCallback, err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = canonicalNumber(v)
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			// nested objects are not part of the signed string
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %v", payment.ErrMalformedCallback, key, err)
			}
			fields[key] = string(b)
		}
	}
	return fields, nil
}

// canonicalNumber renders integral numbers without exponent or fraction,
// e.g. 1.0e5 becomes "100000"
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}
