package api

import "time"

const (
	defaultMaxBodySize = 1 << 20 // 1MB
	// the server timeouts leave the request timeout middleware time to answer first
	serverTimeoutMargin = 5 * time.Second
)

type Configuration struct {
	Env        string
	AppName    string
	AppVersion string
	Port       string
	// frontend origin, allowed by CORS and used in the links of the emails
	AppUrl string

	RequestLoggingLevel string
	SegmentWriteKey     string
	DisableSegment      bool
	EnablePrometheus    bool

	DefaultTimeout time.Duration
	MaxBodySize    int64

	// login attempts allowed per client ip, refilled at LoginRateLimit per second
	LoginRateLimit float64
	LoginBurst     int
}

func (conf Configuration) isDevelopment() bool {
	return conf.Env == "development"
}

func (conf Configuration) maxBodySize() int64 {
	if conf.MaxBodySize <= 0 {
		return defaultMaxBodySize
	}
	return conf.MaxBodySize
}
