package organization

import (
	"log/slog"

	"event-submission-system/internal/global/logger"
)

var log *slog.Logger

type ModuleOrganization struct{}

func (o *ModuleOrganization) GetName() string {
	return "Organization"
}

func (o *ModuleOrganization) Init() {
	log = logger.New("Organization")
}

func selfInit() {
	o := &ModuleOrganization{}
	o.Init()
}
