package constants

import "time"

const (
	UsernameMinLength    = 3
	UsernameMaxLength    = 32
	PasswordMinLength    = 8
	PasswordMaxLength    = 72
	SessionSecretMinLen  = 32
	SessionTokenSize     = 32
	MaxMessageLength     = 4000
	MaxThreadTitleLength = 80

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 60 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort        = "8080"
	DefaultRequestTimeout  = 5 * time.Second
	DefaultSubmitTimeout   = 60 * time.Second
	DefaultSessionTTL      = 7 * 24 * time.Hour
	DefaultMaxSessions     = 5
	SessionCleanupInterval = time.Hour

	SessionCookieName = "session"

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond    = 1
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitSubmitRequestsPerSecond   = 2
	RateLimitSubmitBurst               = 5
	RateLimitGeneralRequestsPerSecond  = 20
	RateLimitGeneralBurst              = 40

	WebSocketWriteWait    = 10 * time.Second
	WebSocketPongWait     = 60 * time.Second
	WebSocketPingPeriod   = 54 * time.Second
	WebSocketSendBufSize  = 32
	WebSocketReadBufSize  = 1024
	WebSocketWriteBufSize = 1024
	WebSocketMaxMsgSize   = 4096

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
