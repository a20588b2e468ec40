package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host       string     `mapstructure:"host" envconfig:"HOST"`
	Port       string     `mapstructure:"port" envconfig:"PORT"`
	Domain     string     `mapstructure:"domain" envconfig:"DOMAIN"`
	Prefix     string     `mapstructure:"prefix" envconfig:"PREFIX"`
	Mode       Mode       `mapstructure:"mode" envconfig:"MODE"`
	Mysql      Mysql      `mapstructure:"mysql"`
	Redis      Redis      `mapstructure:"redis"`
	JWT        JWT        `mapstructure:"jwt"`
	Log        Log        `mapstructure:"log"`
	Sentry     Sentry     `mapstructure:"sentry"`
	S3         S3         `mapstructure:"s3"`
	Vote       Vote       `mapstructure:"vote"`
	Submission Submission `mapstructure:"submission"`
	Notify     Notify     `mapstructure:"notify"`
	Cache      Cache      `mapstructure:"cache"`
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint" envconfig:"ENDPOINT"`
	BaseURL         string `mapstructure:"base_url" envconfig:"BASE_URL"` // 附件公开访问地址前缀，相对路径据此补全
	Bucket          string `mapstructure:"bucket" envconfig:"BUCKET"`
	Region          string `mapstructure:"region" envconfig:"REGION"`
	AccessKey       string `mapstructure:"access_key" envconfig:"ACCESS_KEY"`
	SecretAccessKey string `mapstructure:"secret_key" envconfig:"SECRET_KEY"`
	Prefix          string `mapstructure:"prefix" envconfig:"PREFIX"`
	UsePathStyle    bool   `mapstructure:"path_style" envconfig:"PATH_STYLE"`
}

type Mysql struct {
	Host     string `mapstructure:"host" envconfig:"HOST"`
	Port     string `mapstructure:"port" envconfig:"PORT"`
	Username string `mapstructure:"username" envconfig:"USERNAME"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DBName   string `mapstructure:"db_name" envconfig:"DB_NAME"`
}

type Redis struct {
	Host     string `mapstructure:"host" envconfig:"HOST"`
	Port     string `mapstructure:"port" envconfig:"PORT"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int    `mapstructure:"db" envconfig:"DB"`
}

type JWT struct {
	AccessSecret string `mapstructure:"access_secret" envconfig:"ACCESS_SECRET"`
	AccessExpire int64  `mapstructure:"access_expire" envconfig:"ACCESS_EXPIRE"` // 秒
}

type Log struct {
	FilePath   string `envconfig:"FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string        `mapstructure:"dsn" envconfig:"DSN"`
	Environment string        `mapstructure:"environment" envconfig:"ENVIRONMENT"`
	SampleRate  float64       `mapstructure:"sample_rate" envconfig:"SAMPLE_RATE"`
	Tracing     SentryTracing `mapstructure:"tracing"`
}

type SentryTracing struct {
	DBSlowThresholdMs    int  `mapstructure:"db_slow_threshold_ms" envconfig:"DB_SLOW_THRESHOLD_MS"`
	RedisSlowThresholdMs int  `mapstructure:"redis_slow_threshold_ms" envconfig:"REDIS_SLOW_THRESHOLD_MS"`
	TraceHTTPCalls       bool `mapstructure:"trace_http_calls" envconfig:"TRACE_HTTP_CALLS"`
}

type Vote struct {
	Quota int `mapstructure:"quota" envconfig:"QUOTA"` // 每个用户在单个活动内可投票数
}

type Submission struct {
	MaxTeamMembers     int   `mapstructure:"max_team_members" envconfig:"MAX_TEAM_MEMBERS"`         // 不含队长
	MaxAttachmentBytes int64 `mapstructure:"max_attachment_bytes" envconfig:"MAX_ATTACHMENT_BYTES"` // 单个附件大小上限
}

type Notify struct {
	WebhookURL string `mapstructure:"webhook_url" envconfig:"WEBHOOK_URL"` // 为空则不推送
	TimeoutMs  int    `mapstructure:"timeout_ms" envconfig:"TIMEOUT_MS"`
}

type Cache struct {
	FormTTLSeconds int `mapstructure:"form_ttl_seconds" envconfig:"FORM_TTL_SECONDS"`
}
