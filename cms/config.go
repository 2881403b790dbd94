package cms

// PortalConfig is the single configuration struct for the portal service.
// It is decoded from config.yaml merged with secrets.yaml.
type PortalConfig struct {
	Port  string `json:"port" yaml:"port"`
	Debug bool   `json:"debug" yaml:"debug"`

	// CMS (Strapi) GraphQL endpoint, e.g. https://cms.khobor.app/graphql
	CMSURL            string `json:"cms_url" yaml:"cms_url"`
	CMSTimeoutSeconds int    `json:"cms_timeout_seconds" yaml:"cms_timeout_seconds"`

	// Firebase: service-account file for ID token verification, web API key
	// for the email/password sign-in REST call.
	FirebaseCredentialsFile string `json:"firebase_credentials_file" yaml:"firebase_credentials_file"`
	FirebaseAPIKey          string `json:"firebase_api_key" yaml:"firebase_api_key"`

	JWTKey string `json:"jwt_key" yaml:"jwt_key"`

	AdminKey      string `json:"admin_key" yaml:"admin_key"`
	AdminUser     string `json:"admin_user" yaml:"admin_user"`
	AdminPassword string `json:"admin_password" yaml:"admin_password"`

	DatabasePath string `json:"database_path" yaml:"database_path"`

	RedisHost     string `json:"redis_host" yaml:"redis_host"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`

	// Content cache freshness window. Zero means the default.
	CacheTTLSeconds int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`

	CookieDomain string `json:"cookie_domain" yaml:"cookie_domain"`
	CookieSecure bool   `json:"cookie_secure" yaml:"cookie_secure"`

	Cors []string `json:"cors" yaml:"cors"`

	LogSamplingTickMs  int `json:"log_sampling_tick_ms" yaml:"log_sampling_tick_ms"`
	LogSamplingAfterMs int `json:"log_sampling_after_ms" yaml:"log_sampling_after_ms"`
}

// Defaults fills zero-value fields that have a sane fallback.
func (c *PortalConfig) Defaults() {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.CMSTimeoutSeconds == 0 {
		c.CMSTimeoutSeconds = 30
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "portal.db"
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 300
	}
}
