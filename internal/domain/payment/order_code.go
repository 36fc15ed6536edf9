package payment

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultOrderCodePrefix prefixes every generated order code
const DefaultOrderCodePrefix = "JOB"

const orderCodeTimeLayout = "20060102150405"

// OrderCodeGenerator produces prefix + YYYYMMDDhhmmss + 3 random digits.
// Uniqueness is enforced by storage; callers retry on ErrDuplicateOrderCode.
type OrderCodeGenerator struct {
	Prefix   string
	Location *time.Location
	Now      func() time.Time
	Random   func(n int) int
}

// NewOrderCodeGenerator creates a generator using the wall clock and math/rand
func NewOrderCodeGenerator(prefix string, loc *time.Location) *OrderCodeGenerator {
	if prefix == "" {
		prefix = DefaultOrderCodePrefix
	}
	if loc == nil {
		loc = time.UTC
	}
	return &OrderCodeGenerator{
		Prefix:   prefix,
		Location: loc,
		Now:      time.Now,
		Random:   rand.IntN,
	}
}

// Next returns a new order code
func (g *OrderCodeGenerator) Next() string {
	return fmt.Sprintf("%s%s%03d", g.Prefix, g.Now().In(g.Location).Format(orderCodeTimeLayout), g.Random(1000))
}
