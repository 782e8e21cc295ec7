// FILE: logfeeder/src/internal/core/const.go
package core

// Input descriptor defaults
const (
	DefaultCacheEnabled          = false
	DefaultCacheKeyField         = "log_message"
	DefaultCacheSize             = 100
	DefaultCacheLastDedupEnabled = false
	DefaultCacheDedupIntervalMS  = 1000
	DefaultTail                  = true
	DefaultChecksum              = true
	DefaultGenEventMD5           = true
	DefaultUseEventMD5AsID       = false
)

// Monitor defaults
const (
	DefaultCheckIntervalMS      = 1000
	DefaultStatIntervalMS       = 30000
	DefaultDrainTimeoutMS       = 5000
	DefaultCheckpointIntervalMS = 5000
	DefaultSinkBufferSize       = 1000
)

// Source defaults
const (
	DefaultPollIntervalMS = 250
	DefaultTCPHost        = "0.0.0.0"
	DefaultTCPBufferSize  = 1000
	MaxLineLength         = 1 * 1024 * 1024
	// Leading bytes of a file hashed to recognize it across restarts
	ChecksumBytes = 1024
)
