package server

import (
	"fmt"
	"log/slog"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/httpclient"
	"event-submission-system/internal/global/logger"
	"event-submission-system/internal/global/middleware"
	"event-submission-system/internal/global/redis"
	"event-submission-system/internal/global/sentry"
	"event-submission-system/internal/module"
	"event-submission-system/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")

	// Sentry 需在数据库、Redis、HTTP 客户端之前初始化，它们会挂载追踪插件
	if err := sentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	}

	database.Init()
	redis.Init()
	httpclient.Init()

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	defer sentry.Flush(2 * time.Second)

	gin.SetMode(string(config.Get().Mode))
	r := gin.New()

	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}
	err := r.Run(config.Get().Host + ":" + config.Get().Port)
	tools.PanicOnErr(err)
}
