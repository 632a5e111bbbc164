package config

import "time"

// TrackerConfig aggregates all configuration for the tracker agent
type TrackerConfig struct {
	SiteConfig        SiteConfig        `json:"site_config" yaml:"site_config"`
	SessionConfig     SessionConfig     `json:"session_config" yaml:"session_config"`
	TransportConfig   TransportConfig   `json:"transport_config" yaml:"transport_config"`
	RetryConfig       RetryConfig       `json:"retry_config" yaml:"retry_config"`
	LifecycleConfig   LifecycleConfig   `json:"lifecycle_config" yaml:"lifecycle_config"`
	AttributionConfig AttributionConfig `json:"attribution_config" yaml:"attribution_config"`
	CommerceConfig    CommerceConfig    `json:"commerce_config" yaml:"commerce_config"`
	StorageConfig     StorageConfig     `json:"storage_config" yaml:"storage_config"`
	LogConfig         LogConfig         `json:"log_config" yaml:"log_config"`
}

// NewDefaultTrackerConfig creates a TrackerConfig with default values
func NewDefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		SiteConfig:        NewDefaultSiteConfig(),
		SessionConfig:     NewDefaultSessionConfig(),
		TransportConfig:   NewDefaultTransportConfig(),
		RetryConfig:       NewDefaultRetryConfig(),
		LifecycleConfig:   NewDefaultLifecycleConfig(),
		AttributionConfig: NewDefaultAttributionConfig(),
		CommerceConfig:    NewDefaultCommerceConfig(),
		StorageConfig:     NewDefaultStorageConfig(),
		LogConfig:         NewDefaultLogConfig(),
	}
}

// SiteConfig identifies the collector endpoint and the tracked site
type SiteConfig struct {
	CollectorURL string `json:"collector_url" yaml:"collector_url" validate:"required,url"`
	SiteID       string `json:"site_id" yaml:"site_id" validate:"required"`
}

// NewDefaultSiteConfig creates default site configuration
func NewDefaultSiteConfig() SiteConfig {
	return SiteConfig{
		CollectorURL: DefaultCollectorURL,
		SiteID:       DefaultSiteID,
	}
}

// SessionConfig defines identity token names and lifetimes
type SessionConfig struct {
	VisitorKey            string `json:"visitor_key" yaml:"visitor_key" validate:"required"`
	SessionKey            string `json:"session_key" yaml:"session_key" validate:"required"`
	VisitorTTLDays        int    `json:"visitor_ttl_days" yaml:"visitor_ttl_days" validate:"gt=0"`
	SessionTimeoutMinutes int    `json:"session_timeout_minutes" yaml:"session_timeout_minutes" validate:"gt=0"`
}

// NewDefaultSessionConfig creates default session configuration
func NewDefaultSessionConfig() SessionConfig {
	return SessionConfig{
		VisitorKey:            DefaultVisitorCookieName,
		SessionKey:            DefaultSessionCookieName,
		VisitorTTLDays:        DefaultVisitorTTLDays,
		SessionTimeoutMinutes: DefaultSessionTimeoutMinutes,
	}
}

// VisitorTTL returns the visitor token lifetime
func (sc SessionConfig) VisitorTTL() time.Duration {
	return time.Duration(sc.VisitorTTLDays) * 24 * time.Hour
}

// SessionTTL returns the sliding session window
func (sc SessionConfig) SessionTTL() time.Duration {
	return time.Duration(sc.SessionTimeoutMinutes) * time.Minute
}

// TransportConfig defines transmission behavior
type TransportConfig struct {
	RequestTimeoutSecs int    `json:"request_timeout_secs" yaml:"request_timeout_secs" validate:"gt=0"`
	InAppPattern       string `json:"in_app_pattern" yaml:"in_app_pattern" validate:"omitempty,regexp"`
}

// NewDefaultTransportConfig creates default transport configuration
func NewDefaultTransportConfig() TransportConfig {
	return TransportConfig{
		RequestTimeoutSecs: DefaultRequestTimeoutSecs,
		InAppPattern:       DefaultInAppPattern,
	}
}

// RequestTimeout returns the confirmable request timeout
func (tc TransportConfig) RequestTimeout() time.Duration {
	return time.Duration(tc.RequestTimeoutSecs) * time.Second
}

// RetryConfig bounds the reliability queue
type RetryConfig struct {
	IntervalSecs  int `json:"interval_secs" yaml:"interval_secs" validate:"gt=0"`
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity" validate:"gt=0"`
}

// NewDefaultRetryConfig creates default retry configuration
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		IntervalSecs:  DefaultRetryIntervalSecs,
		QueueCapacity: DefaultRetryQueueCapacity,
	}
}

// Interval returns the periodic flush cadence
func (rc RetryConfig) Interval() time.Duration {
	return time.Duration(rc.IntervalSecs) * time.Second
}

// LifecycleConfig drives the heartbeat and scroll observers
type LifecycleConfig struct {
	HeartbeatIntervalSecs int `json:"heartbeat_interval_secs" yaml:"heartbeat_interval_secs" validate:"gt=0"`
	ScrollThrottleMillis  int `json:"scroll_throttle_millis" yaml:"scroll_throttle_millis" validate:"gt=0"`
}

// NewDefaultLifecycleConfig creates default lifecycle configuration
func NewDefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		HeartbeatIntervalSecs: DefaultHeartbeatIntervalSecs,
		ScrollThrottleMillis:  DefaultScrollThrottleMillis,
	}
}

// HeartbeatInterval returns the heartbeat cadence
func (lc LifecycleConfig) HeartbeatInterval() time.Duration {
	return time.Duration(lc.HeartbeatIntervalSecs) * time.Second
}

// ScrollThrottle returns the minimum spacing between scroll samples
func (lc LifecycleConfig) ScrollThrottle() time.Duration {
	return time.Duration(lc.ScrollThrottleMillis) * time.Millisecond
}

// AttributionConfig defines the campaign-parameter capture rules
type AttributionConfig struct {
	ParamPrefix          string `json:"param_prefix" yaml:"param_prefix" validate:"required"`
	IDKey                string `json:"id_key" yaml:"id_key" validate:"required"`
	ContentKey           string `json:"content_key" yaml:"content_key" validate:"required"`
	ContentCacheCapacity int    `json:"content_cache_capacity" yaml:"content_cache_capacity" validate:"gt=0"`
}

// NewDefaultAttributionConfig creates default attribution configuration
func NewDefaultAttributionConfig() AttributionConfig {
	return AttributionConfig{
		ParamPrefix:          DefaultAttributionPrefix,
		IDKey:                DefaultAttributionIDKey,
		ContentKey:           DefaultAttributionContentKey,
		ContentCacheCapacity: DefaultContentCacheCapacity,
	}
}

// CommerceConfig defines storefront-specific extraction rules
type CommerceConfig struct {
	CartDedupWindowMillis    int    `json:"cart_dedup_window_millis" yaml:"cart_dedup_window_millis" validate:"gt=0"`
	CartSettleDelayMillis    int    `json:"cart_settle_delay_millis" yaml:"cart_settle_delay_millis" validate:"gte=0"`
	PurchasePollIntervalSecs int    `json:"purchase_poll_interval_secs" yaml:"purchase_poll_interval_secs" validate:"gt=0"`
	PurchasePollMaxAttempts  int    `json:"purchase_poll_max_attempts" yaml:"purchase_poll_max_attempts" validate:"gt=0"`
	OrderResultPathPattern   string `json:"order_result_path_pattern" yaml:"order_result_path_pattern" validate:"required"`
	OrderFormPathPattern     string `json:"order_form_path_pattern" yaml:"order_form_path_pattern" validate:"required"`
	CouponSelectPathPattern  string `json:"coupon_select_path_pattern" yaml:"coupon_select_path_pattern" validate:"required"`
	CartEndpointPattern      string `json:"cart_endpoint_pattern" yaml:"cart_endpoint_pattern" validate:"required"`
}

// NewDefaultCommerceConfig creates default commerce configuration
func NewDefaultCommerceConfig() CommerceConfig {
	return CommerceConfig{
		CartDedupWindowMillis:    DefaultCartDedupWindowMillis,
		CartSettleDelayMillis:    DefaultCartSettleDelayMillis,
		PurchasePollIntervalSecs: DefaultPurchasePollIntervalSecs,
		PurchasePollMaxAttempts:  DefaultPurchasePollMaxAttempts,
		OrderResultPathPattern:   DefaultOrderResultPathPattern,
		OrderFormPathPattern:     DefaultOrderFormPathPattern,
		CouponSelectPathPattern:  DefaultCouponSelectPathPattern,
		CartEndpointPattern:      DefaultCartEndpointPattern,
	}
}

// CartDedupWindow returns the duplicate-suppression window for cart events
func (cc CommerceConfig) CartDedupWindow() time.Duration {
	return time.Duration(cc.CartDedupWindowMillis) * time.Millisecond
}

// CartSettleDelay returns the wait applied after a cart trigger before extraction
func (cc CommerceConfig) CartSettleDelay() time.Duration {
	return time.Duration(cc.CartSettleDelayMillis) * time.Millisecond
}

// PurchasePollInterval returns the cadence of the order-data poll
func (cc CommerceConfig) PurchasePollInterval() time.Duration {
	return time.Duration(cc.PurchasePollIntervalSecs) * time.Second
}

// StorageConfig locates the durable key space
type StorageConfig struct {
	Path string `json:"path" yaml:"path" validate:"required"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Path: DefaultStoragePath,
	}
}
