package config

import (
	"log"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const envPrefix = "APP"

var (
	cfg  *Config
	lock sync.RWMutex
)

// Init 读取 config.yaml 并用 APP_ 前缀的环境变量覆盖
func Init() {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/event-submission")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("未读取到配置文件，使用默认值: %v", err)
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}
	if err := envconfig.Process(envPrefix, c); err != nil {
		log.Fatalf("读取环境变量失败: %v", err)
	}
	c.Prefix = strings.Trim(c.Prefix, "/")

	Set(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("prefix", "api")
	v.SetDefault("mode", string(ModeDebug))

	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.db_name", "event_submission")

	v.SetDefault("redis.port", "6379")

	v.SetDefault("jwt.access_expire", 7*24*3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("sentry.tracing.db_slow_threshold_ms", 100)
	v.SetDefault("sentry.tracing.redis_slow_threshold_ms", 20)

	v.SetDefault("vote.quota", 3)
	v.SetDefault("submission.max_team_members", 10)
	v.SetDefault("submission.max_attachment_bytes", 200*1024*1024)
	v.SetDefault("notify.timeout_ms", 3000)
	v.SetDefault("cache.form_ttl_seconds", 300)
}

// Get 返回当前配置，未初始化时返回默认配置
func Get() *Config {
	lock.RLock()
	c := cfg
	lock.RUnlock()
	if c != nil {
		return c
	}
	lock.Lock()
	defer lock.Unlock()
	if cfg == nil {
		cfg = Default()
	}
	return cfg
}

// Set 替换当前配置，测试中也用它注入配置
func Set(c *Config) {
	lock.Lock()
	cfg = c
	lock.Unlock()
}

// Default 不读文件和环境变量的默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	c := &Config{}
	_ = v.Unmarshal(c)
	return c
}
