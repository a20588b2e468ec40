package submission

import (
	"log/slog"

	"event-submission-system/internal/global/logger"
)

var log *slog.Logger

type ModuleSubmission struct{}

func (*ModuleSubmission) GetName() string {
	return "Submission"
}

func (*ModuleSubmission) Init() {
	log = logger.New("Submission")
}

func selfInit() {
	(&ModuleSubmission{}).Init()
}
