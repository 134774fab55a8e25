package auth

import (
	"strconv"
	"strings"
	"time"
)

// NewReferralID derives a short shareable code from signup time
// (millisecond epoch in base36, uppercased).
func NewReferralID(at time.Time) string {
	return strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
}
