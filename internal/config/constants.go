package config

// Default collector settings
const (
	DefaultCollectorURL = "https://moadamda-analytics.co.kr/api/track"
	DefaultSiteID       = "moadamda"
)

// Default identity settings (Cafe24 Analytics standard lifetimes)
const (
	DefaultVisitorCookieName     = "_ma_id"
	DefaultSessionCookieName     = "_ma_ses"
	DefaultVisitorTTLDays        = 365
	DefaultSessionTimeoutMinutes = 120
)

// Default transport settings
const (
	DefaultRequestTimeoutSecs = 10
	// DefaultInAppPattern matches the embedding clients known to tear pages
	// down before an in-flight request completes.
	DefaultInAppPattern = `(?i)FBAN|FBAV|Instagram|Line|KAKAOTALK|NAVER|SamsungBrowser.*CrossApp`
)

// Default retry settings
const (
	DefaultRetryIntervalSecs  = 30
	DefaultRetryQueueCapacity = 10
)

// Default lifecycle settings
const (
	DefaultHeartbeatIntervalSecs = 30
	DefaultScrollThrottleMillis  = 100
)

// Default attribution settings
const (
	DefaultAttributionPrefix     = "utm_"
	DefaultAttributionIDKey      = "utm_id"
	DefaultAttributionContentKey = "utm_content"
	DefaultContentCacheCapacity  = 50
)

// Default commerce settings (Cafe24 storefront conventions)
const (
	DefaultCartDedupWindowMillis    = 2000
	DefaultCartSettleDelayMillis    = 200
	DefaultPurchasePollIntervalSecs = 1
	DefaultPurchasePollMaxAttempts  = 30
	DefaultOrderResultPathPattern   = "/order/order_result"
	DefaultOrderFormPathPattern     = "/order/orderform"
	DefaultCouponSelectPathPattern  = "/coupon/coupon_select"
	DefaultCartEndpointPattern      = "/exec/front/order/basket/"
)

// Default log settings
const (
	DefaultLogFile       = "logs/tracker.log"
	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultMaxLogBackups = 3
	DefaultMaxLogSizeMB  = 10
)

// Default storage settings
const (
	// DefaultStoragePath keeps the durable key space in memory; a file path
	// makes visitor identity survive agent restarts.
	DefaultStoragePath = ":memory:"
)
