package database

import (
	"fmt"

	"event-submission-system/config"
	"event-submission-system/internal/global/sentry/tracing"
	"event-submission-system/internal/model"
	"event-submission-system/tools"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// autoMigrateModels 按外键依赖顺序排列
var autoMigrateModels = []any{
	&model.User{},
	&model.Organization{},
	&model.OrganizationMember{},
	&model.Event{},
	&model.EventRegistration{},
	&model.Project{},
	&model.ProjectMember{},
	&model.ProjectAttachment{},
	&model.EventProjectSubmission{},
	&model.ProjectVote{},
}

// GormConfig 生产与测试共用，保证命名与错误翻译一致
func GormConfig() *gorm.Config {
	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true}, // 还是单数表名好
		TranslateError: true,
	}
	switch config.Get().Mode {
	case config.ModeDebug:
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case config.ModeRelease:
		gormConfig.Logger = logger.Discard
	}
	return gormConfig
}

func Init() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Get().Mysql.Username,
		config.Get().Mysql.Password,
		config.Get().Mysql.Host,
		config.Get().Mysql.Port,
		config.Get().Mysql.DBName,
	)

	db, err := gorm.Open(mysql.Open(dsn), GormConfig())
	tools.PanicOnErr(err)

	if tracing.IsEnabled() {
		tools.PanicOnErr(db.Use(tracing.NewGormTracingPlugin()))
	}

	tools.PanicOnErr(Migrate(db))
	DB = db
}

// Migrate 建表并创建唯一索引
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(autoMigrateModels...)
}
