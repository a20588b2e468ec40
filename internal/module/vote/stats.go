package vote

import (
	"cmp"
	"context"
	"slices"

	"event-submission-system/internal/model"

	"github.com/pkg/errors"
)

const leaderboardSize = 10

type LeaderboardEntry struct {
	Rank         int    `json:"rank" excel:"排名"`
	SubmissionID uint   `json:"submissionId" excel:"投稿ID"`
	ProjectID    uint   `json:"projectId" excel:"-"`
	Title        string `json:"title" excel:"作品"`
	VoteCount    int64  `json:"voteCount" excel:"票数"`
}

type Stats struct {
	TotalVotes        int64              `json:"totalVotes"`
	TotalParticipants int64              `json:"totalParticipants"`
	DistinctVoters    int64              `json:"distinctVoters"`
	Leaderboard       []LeaderboardEntry `json:"leaderboard"`
}

// Stats 活动投票统计，排行榜按展示票数降序取前 10
func (l *Ledger) Stats(ctx context.Context, eventID uint) (*Stats, error) {
	db := l.DB.WithContext(ctx)
	stats := &Stats{Leaderboard: []LeaderboardEntry{}}

	if err := db.Model(&model.ProjectVote{}).
		Where("event_id = ?", eventID).
		Count(&stats.TotalVotes).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	if err := db.Model(&model.ProjectVote{}).
		Where("event_id = ?", eventID).
		Distinct("user_id").
		Count(&stats.DistinctVoters).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	if err := db.Model(&model.EventRegistration{}).
		Where("event_id = ? AND status NOT IN ?", eventID, model.InactiveRegistrationStatuses).
		Count(&stats.TotalParticipants).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	var submissions []model.EventProjectSubmission
	if err := db.Preload("Project").
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&submissions).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	counts, err := l.RawCounts(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(submissions))
	for _, s := range submissions {
		entries = append(entries, LeaderboardEntry{
			SubmissionID: s.ID,
			ProjectID:    s.ProjectID,
			Title:        s.Project.Title,
			VoteCount:    DisplayCount(counts[s.ProjectID], s.Project.VoteAdjustment),
		})
	}
	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		return cmp.Compare(b.VoteCount, a.VoteCount)
	})
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	stats.Leaderboard = entries
	return stats, nil
}
