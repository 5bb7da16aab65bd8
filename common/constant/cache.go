package constant

import "time"

const (
	BookingOutcomeKey     = "booking:outcome:%s"
	BookingFingerprintKey = "booking:lock:%s"
	RateLimitKey          = "ratelimit:%s:%s"
)

const (
	BookingLockDefaultTTL    = 1 * time.Minute
	BookingOutcomeDefaultTTL = 24 * time.Hour
	BookingSettleDefault     = 10 * time.Second
	BookingLockMargin        = 5 * time.Second
	RequestDefaultTimeout    = 20 * time.Second
)
