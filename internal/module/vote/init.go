package vote

import (
	"log/slog"

	"event-submission-system/internal/global/logger"
)

var log *slog.Logger

type ModuleVote struct{}

func (*ModuleVote) GetName() string {
	return "Vote"
}

func (*ModuleVote) Init() {
	log = logger.New("Vote")
}

func selfInit() {
	(&ModuleVote{}).Init()
}
