package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"net/url"
	"sort"
	"strings"
)

// hmacHex returns the lowercase hex HMAC of message under secret
func hmacHex(newHash func() hash.Hash, secret, message string) string {
	mac := hmac.New(newHash, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func hmacSHA512Hex(secret, message string) string {
	return hmacHex(sha512.New, secret, message)
}

func hmacSHA256Hex(secret, message string) string {
	return hmacHex(sha256.New, secret, message)
}

// signaturesEqual compares two hex signatures in constant time, ignoring case
func signaturesEqual(expected, provided string) bool {
	if provided == "" {
		return false
	}
	return hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(provided)))
}

// canonicalQuery sorts keys ascending and joins urlencoded key=value pairs with '&'
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(params[key]))
	}
	return strings.Join(parts, "&")
}

// rawSignString joins key=value pairs in the given key order without encoding
func rawSignString(keys []string, values map[string]string) string {
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(values[key])
	}
	return b.String()
}
