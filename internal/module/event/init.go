package event

import (
	"log/slog"

	"event-submission-system/internal/global/logger"
)

var log *slog.Logger

type ModuleEvent struct{}

func (p *ModuleEvent) GetName() string {
	return "Event"
}

func (p *ModuleEvent) Init() {
	log = logger.New("Event")
}

func selfInit() {
	p := &ModuleEvent{}
	p.Init()
}
