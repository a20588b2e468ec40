package test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/database"
	"event-submission-system/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB 每个测试一个独立的内存 SQLite，建表后同时赋给 database.DB
// 只开一个连接：事务天然串行，并发用例的结果只取决于唯一索引
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.Set(config.Default())

	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
	gormConfig := database.GormConfig()
	gormConfig.Logger = logger.Discard

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	database.DB = db
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Password: "x",
		Name:     "Name of " + username,
		Avatar:   "avatars/" + username + ".png",
		Bio:      "bio of " + username,
		Email:    username + "@example.com",
		Phone:    "1380000" + username,
		WeChat:   "wx_" + username,
		Region:   "Shanghai",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// EventOption 调整测试活动
type EventOption func(*model.Event)

func WithEndTime(end time.Time) EventOption {
	return func(e *model.Event) { e.EndTime = &end }
}

func WithDeadline(deadline time.Time) EventOption {
	return func(e *model.Event) { e.SubmissionDeadline = &deadline }
}

func WithForm(fields ...model.FieldDescriptor) EventOption {
	return func(e *model.Event) { e.SubmissionForm = fields }
}

func WithOrganization(orgID uint) EventOption {
	return func(e *model.Event) { e.OrganizationID = &orgID }
}

// CreateEvent 默认开放投稿、不设截止时间
func CreateEvent(t *testing.T, db *gorm.DB, organizerID uint, opts ...EventOption) *model.Event {
	t.Helper()
	e := &model.Event{
		Name:               "Hack Week",
		Type:               model.EventHackathon,
		OrganizerID:        organizerID,
		SubmissionsEnabled: true,
		SubmissionOpen:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func Register(t *testing.T, db *gorm.DB, eventID uint, userIDs ...uint) {
	t.Helper()
	for _, id := range userIDs {
		require.NoError(t, db.Create(&model.EventRegistration{
			EventID: eventID,
			UserID:  id,
			Status:  model.RegistrationApproved,
		}).Error)
	}
}

// CreateSubmission 直接落库一个投稿及其项目，绕过业务校验
func CreateSubmission(t *testing.T, db *gorm.DB, eventID uint, title string, leaderID uint, memberIDs ...uint) *model.EventProjectSubmission {
	t.Helper()
	now := time.Now()
	project := &model.Project{
		LeaderID:    leaderID,
		Title:       title,
		Submitted:   true,
		SubmittedAt: &now,
	}
	require.NoError(t, db.Create(project).Error)

	members := []model.ProjectMember{{ProjectID: project.ID, UserID: leaderID, Role: model.MemberRoleLeader}}
	for _, id := range memberIDs {
		members = append(members, model.ProjectMember{ProjectID: project.ID, UserID: id, Role: model.MemberRoleMember})
	}
	require.NoError(t, db.Create(&members).Error)

	sub := &model.EventProjectSubmission{
		EventID:        eventID,
		ProjectID:      project.ID,
		SubmitterID:    leaderID,
		SubmissionType: "HACKATHON_PROJECT",
		Title:          title,
		Status:         model.StatusSubmitted,
	}
	require.NoError(t, db.Create(sub).Error)
	sub.Project = *project
	return sub
}
