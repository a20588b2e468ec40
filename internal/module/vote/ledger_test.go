package vote

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-submission-system/internal/model"
	"event-submission-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	selfInit()
	m.Run()
}

type fixture struct {
	db          *gorm.DB
	ledger      *Ledger
	event       *model.Event
	organizer   *model.User
	voter       *model.User
	submissions []*model.EventProjectSubmission
	leaders     []*model.User
	teammate    *model.User
}

// newFixture 一个活动、四个作品，voter 已报名
func newFixture(t *testing.T, opts ...test.EventOption) *fixture {
	db := test.NewDB(t)
	f := &fixture{db: db, ledger: NewLedger(db)}
	f.organizer = test.CreateUser(t, db, "organizer")
	f.voter = test.CreateUser(t, db, "voter")
	f.teammate = test.CreateUser(t, db, "teammate")
	f.event = test.CreateEvent(t, db, f.organizer.ID, opts...)
	test.Register(t, db, f.event.ID, f.voter.ID, f.teammate.ID)

	for i, name := range []string{"alpha", "beta", "gamma", "delta"} {
		leader := test.CreateUser(t, db, "leader_"+name)
		test.Register(t, db, f.event.ID, leader.ID)
		var members []uint
		if i == 0 {
			members = []uint{f.teammate.ID}
		}
		f.leaders = append(f.leaders, leader)
		f.submissions = append(f.submissions, test.CreateSubmission(t, db, f.event.ID, name, leader.ID, members...))
	}
	return f
}

func (f *fixture) cast(t *testing.T, i int, userID uint) Result {
	t.Helper()
	result, err := f.ledger.Cast(context.Background(), f.event, &f.submissions[i].Project, userID)
	require.NoError(t, err)
	return result
}

func (f *fixture) revoke(t *testing.T, i int, userID uint) Result {
	t.Helper()
	result, err := f.ledger.Revoke(context.Background(), f.event, &f.submissions[i].Project, userID)
	require.NoError(t, err)
	return result
}

func TestCastQuota(t *testing.T) {
	f := newFixture(t)

	for n := 1; n <= 3; n++ {
		result := f.cast(t, n-1, f.voter.ID)
		require.True(t, result.Success, result.Error)
		assert.Equal(t, int64(1), *result.VoteCount)
		assert.Equal(t, 3-n, *result.RemainingVotes)
	}

	result := f.cast(t, 3, f.voter.ID)
	assert.False(t, result.Success)
	assert.Equal(t, CodeNoVotesLeft, result.Error)
	assert.Nil(t, result.VoteCount)

	remaining, err := f.ledger.Remaining(context.Background(), f.event.ID, f.voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestCastTwiceSameProject(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.cast(t, 1, f.voter.ID).Success)
	result := f.cast(t, 1, f.voter.ID)
	assert.Equal(t, CodeAlreadyVoted, result.Error)

	raw, err := f.ledger.RawCount(context.Background(), f.submissions[1].ProjectID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)
}

func TestCastConcurrentSameProject(t *testing.T) {
	f := newFixture(t)

	const attempts = 8
	results := make([]Result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := f.ledger.Cast(context.Background(), f.event, &f.submissions[1].Project, f.voter.ID)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, r := range results {
		if r.Success {
			succeeded++
			continue
		}
		assert.Equal(t, CodeAlreadyVoted, r.Error)
	}
	assert.Equal(t, 1, succeeded)

	raw, err := f.ledger.RawCount(context.Background(), f.submissions[1].ProjectID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)
}

func TestCastLastVoteFromTwoGoroutines(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.cast(t, 1, f.voter.ID).Success)
	require.True(t, f.cast(t, 2, f.voter.ID).Success)

	// 测试库只有一个连接，两次投票实际依次执行；只验证最后一票只能投出一次。
	// MySQL 上的并发由 lockVoter 的行锁串行化，SQLite 下它不做任何事
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error { return lockVoter(tx, f.voter.ID) }))

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i, idx := range []int{0, 3} {
		wg.Add(1)
		go func(i, idx int) {
			defer wg.Done()
			r, err := f.ledger.Cast(context.Background(), f.event, &f.submissions[idx].Project, f.voter.ID)
			assert.NoError(t, err)
			results[i] = r
		}(i, idx)
	}
	wg.Wait()

	assert.NotEqual(t, results[0].Success, results[1].Success)
	remaining, err := f.ledger.Remaining(context.Background(), f.event.ID, f.voter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestCastOwnProject(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	tests := []struct {
		name string
		opts []test.EventOption
	}{
		{"open", nil},
		{"ended", []test.EventOption{test.WithEndTime(past)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)

			leader := f.cast(t, 0, f.leaders[0].ID)
			assert.Equal(t, CodeOwnProject, leader.Error)

			member := f.cast(t, 0, f.teammate.ID)
			assert.Equal(t, CodeOwnProject, member.Error)
		})
	}
}

func TestCastOwnProjectWithoutQuota(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 3; i++ {
		require.True(t, f.cast(t, i, f.teammate.ID).Success)
	}
	assert.Equal(t, CodeOwnProject, f.cast(t, 0, f.teammate.ID).Error)
}

func TestCastNotParticipant(t *testing.T) {
	f := newFixture(t)
	stranger := test.CreateUser(t, f.db, "stranger")
	assert.Equal(t, CodeNotParticipant, f.cast(t, 1, stranger.ID).Error)

	cancelled := test.CreateUser(t, f.db, "cancelled")
	require.NoError(t, f.db.Create(&model.EventRegistration{
		EventID: f.event.ID, UserID: cancelled.ID, Status: model.RegistrationCancelled,
	}).Error)
	assert.Equal(t, CodeNotParticipant, f.cast(t, 1, cancelled.ID).Error)
}

func TestVotingWindowClosure(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.cast(t, 1, f.voter.ID).Success)

	end := time.Now().Add(time.Minute)
	f.event.EndTime = &end
	f.ledger.Now = func() time.Time { return end.Add(time.Second) }

	assert.Equal(t, CodeVotingEnded, f.cast(t, 2, f.voter.ID).Error)
	assert.Equal(t, CodeVotingEnded, f.revoke(t, 1, f.voter.ID).Error)

	raw, err := f.ledger.RawCount(context.Background(), f.submissions[1].ProjectID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)
}

func TestVotingOpenAtEndTime(t *testing.T) {
	f := newFixture(t)
	end := time.Now().Add(time.Minute)
	f.event.EndTime = &end
	f.ledger.Now = func() time.Time { return end }

	assert.True(t, f.cast(t, 1, f.voter.ID).Success)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, CodeNotVoted, f.revoke(t, 1, f.voter.ID).Error)

	require.True(t, f.cast(t, 1, f.voter.ID).Success)
	require.True(t, f.cast(t, 2, f.voter.ID).Success)

	result := f.revoke(t, 1, f.voter.ID)
	require.True(t, result.Success)
	assert.Equal(t, int64(0), *result.VoteCount)
	assert.Equal(t, 2, *result.RemainingVotes)

	assert.True(t, f.cast(t, 1, f.voter.ID).Success)
}

func TestOverride(t *testing.T) {
	f := newFixture(t)
	project := &f.submissions[1].Project
	require.True(t, f.cast(t, 1, f.voter.ID).Success)

	count, err := f.ledger.Override(context.Background(), project.ID, f.event.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)

	var stored model.Project
	require.NoError(t, f.db.First(&stored, project.ID).Error)
	require.NotNil(t, stored.VoteAdjustment)
	assert.Equal(t, 9, *stored.VoteAdjustment)

	raw, err := f.ledger.RawCount(context.Background(), project.ID, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), raw)

	// 调回原始票数时清空调整
	count, err = f.ledger.Override(context.Background(), project.ID, f.event.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.NoError(t, f.db.First(&stored, project.ID).Error)
	assert.Nil(t, stored.VoteAdjustment)
}

func TestCastAfterNegativeAdjustment(t *testing.T) {
	f := newFixture(t)
	project := &f.submissions[1].Project

	_, err := f.ledger.Override(context.Background(), project.ID, f.event.ID, 0)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Project{}).Where("id = ?", project.ID).Update("vote_adjustment", -2).Error)

	result := f.cast(t, 1, f.voter.ID)
	require.True(t, result.Success)
	assert.Equal(t, int64(0), *result.VoteCount)
}

func TestDisplayCount(t *testing.T) {
	neg, pos := -5, 4
	assert.Equal(t, int64(3), DisplayCount(3, nil))
	assert.Equal(t, int64(0), DisplayCount(3, &neg))
	assert.Equal(t, int64(7), DisplayCount(3, &pos))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.cast(t, 1, f.voter.ID).Success)
	require.True(t, f.cast(t, 2, f.voter.ID).Success)
	require.True(t, f.cast(t, 2, f.teammate.ID).Success)

	stats, err := f.ledger.Stats(context.Background(), f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalVotes)
	assert.Equal(t, int64(2), stats.DistinctVoters)
	assert.Equal(t, int64(6), stats.TotalParticipants)
	require.Len(t, stats.Leaderboard, 4)
	assert.Equal(t, "gamma", stats.Leaderboard[0].Title)
	assert.Equal(t, int64(2), stats.Leaderboard[0].VoteCount)
	assert.Equal(t, "beta", stats.Leaderboard[1].Title)
	assert.Equal(t, []int{1, 2, 3, 4}, []int{
		stats.Leaderboard[0].Rank, stats.Leaderboard[1].Rank, stats.Leaderboard[2].Rank, stats.Leaderboard[3].Rank,
	})
}
