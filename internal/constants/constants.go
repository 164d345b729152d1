package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixFragment = "frag:"
	DefaultFragmentTTL     = 15 * time.Minute
)

const (
	DefaultOutcomeTopic = "sms_outcomes"
	DefaultInboundTopic = "sms_inbound"
)

const (
	DefaultSweepInterval = 30 * time.Second
	DefaultSweepTTL      = 5 * time.Minute

	// MaxInflightSubscriptions is the health ceiling; beyond it the
	// transport is presumed to have stopped delivering completions.
	MaxInflightSubscriptions = 100000
)

const (
	ShutdownTimeout = 5 * time.Second
)
