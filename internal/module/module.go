package module

import (
	"event-submission-system/internal/module/event"
	"event-submission-system/internal/module/organization"
	"event-submission-system/internal/module/ping"
	"event-submission-system/internal/module/registration"
	"event-submission-system/internal/module/submission"
	"event-submission-system/internal/module/user"
	"event-submission-system/internal/module/vote"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&ping.ModulePing{},
		&user.ModuleUser{},
		&organization.ModuleOrganization{},
		&event.ModuleEvent{},
		&registration.ModuleRegistration{},
		&submission.ModuleSubmission{},
		&vote.ModuleVote{},
	})
}
