package registration

import (
	"log/slog"

	"event-submission-system/internal/global/logger"
)

var log *slog.Logger

type ModuleRegistration struct{}

func (p *ModuleRegistration) GetName() string {
	return "Registration"
}

func (p *ModuleRegistration) Init() {
	log = logger.New("Registration")
}

func selfInit() {
	p := &ModuleRegistration{}
	p.Init()
}
