package submission

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"
	"event-submission-system/internal/module/vote"
	"event-submission-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func listRequest(eventID, userID uint, query string) test.Request {
	return test.Request{
		Method: http.MethodGet,
		Path:   "/event/:id/submissions",
		URL:    fmt.Sprintf("/event/%d/submissions%s", eventID, query),
		UserID: userID,
	}
}

func decodeList(t *testing.T, req test.Request) ListResp {
	t.Helper()
	resp := test.DoRequest(t, ListSubmissions, req)
	test.NoError(t, resp)
	var list ListResp
	test.DecodeData(t, resp, &list)
	return list
}

func castVotes(t *testing.T, db *gorm.DB, event *model.Event, sub *model.EventProjectSubmission, n int, prefix string) {
	t.Helper()
	for i := 0; i < n; i++ {
		u := test.CreateUser(t, db, fmt.Sprintf("%s%d", prefix, i))
		test.Register(t, db, event.ID, u.ID)
		require.NoError(t, db.Create(&model.ProjectVote{ProjectID: sub.ProjectID, UserID: u.ID, EventID: event.ID}).Error)
	}
}

func TestListRankingScenario(t *testing.T) {
	db := test.NewDB(t)
	organizer := test.CreateUser(t, db, "organizer")
	event := test.CreateEvent(t, db, organizer.ID)

	var subs []*model.EventProjectSubmission
	for i, votes := range []int{5, 3, 3} {
		leader := test.CreateUser(t, db, fmt.Sprintf("leader%d", i))
		test.Register(t, db, event.ID, leader.ID)
		sub := test.CreateSubmission(t, db, event.ID, fmt.Sprintf("project-%d", i), leader.ID)
		castVotes(t, db, event, sub, votes, fmt.Sprintf("p%dvoter", i))
		subs = append(subs, sub)
	}

	list := decodeList(t, listRequest(event.ID, 0, "?sort=voteCount&order=desc"))
	require.Len(t, list.Submissions, 3)
	assert.Equal(t, []uint{subs[0].ID, subs[1].ID, subs[2].ID}, viewIDs(list.Submissions))
	assert.Equal(t, []int{1, 2, 3}, viewRanks(list.Submissions))
	assert.Equal(t, []int64{5, 3, 3}, viewCounts(list.Submissions))
	assert.Nil(t, list.RemainingVotes)

	ledger := vote.NewLedger(db)
	count, err := ledger.Override(context.Background(), subs[0].ProjectID, event.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	raw, err := ledger.RawCount(context.Background(), subs[0].ProjectID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), raw)

	list = decodeList(t, listRequest(event.ID, 0, ""))
	assert.Equal(t, []int64{3, 3, 3}, viewCounts(list.Submissions))
	assert.Equal(t, []uint{subs[0].ID, subs[1].ID, subs[2].ID}, viewIDs(list.Submissions))

	voter := test.CreateUser(t, db, "late_voter")
	test.Register(t, db, event.ID, voter.ID)
	result, err := ledger.Cast(context.Background(), event, &subs[0].Project, voter.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, int64(4), *result.VoteCount)

	list = decodeList(t, listRequest(event.ID, voter.ID, ""))
	assert.Equal(t, subs[0].ID, list.Submissions[0].ID)
	assert.Equal(t, int64(4), list.Submissions[0].VoteCount)
	assert.True(t, list.Submissions[0].HasVoted)
	assert.False(t, list.Submissions[1].HasVoted)
	assert.Equal(t, []uint{subs[0].ID}, list.VotedSubmissionIDs)
	require.NotNil(t, list.RemainingVotes)
	assert.Equal(t, 2, *list.RemainingVotes)
	// 非管理员看不到调整值
	assert.Nil(t, list.Submissions[0].VoteAdjustment)

	asc := decodeList(t, listRequest(event.ID, 0, "?order=asc"))
	assert.Equal(t, subs[0].ID, asc.Submissions[2].ID)
	assert.Equal(t, 3, asc.Submissions[2].Rank)
}

func TestListRedaction(t *testing.T) {
	db := test.NewDB(t)
	organizer := test.CreateUser(t, db, "organizer")
	event := test.CreateEvent(t, db, organizer.ID, test.WithForm(
		model.FieldDescriptor{Key: "school", Label: "学校", Kind: model.FieldText, Enabled: true, PublicVisible: true},
		model.FieldDescriptor{Key: "idcard", Label: "证件号", Kind: model.FieldText, Enabled: true, PublicVisible: false},
	))
	leader := test.CreateUser(t, db, "leader")
	stranger := test.CreateUser(t, db, "stranger")
	test.Register(t, db, event.ID, leader.ID, stranger.ID)
	sub := test.CreateSubmission(t, db, event.ID, "Secret Sauce", leader.ID)
	require.NoError(t, db.Model(&model.Project{}).Where("id = ?", sub.ProjectID).
		Update("custom_fields", `{"school":"MIT","idcard":"SECRET-ID-42"}`).Error)

	for _, userID := range []uint{0, stranger.ID} {
		for _, query := range []string{"", "?private=true"} {
			w := test.Serve(t, ListSubmissions, listRequest(event.ID, userID, query))
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, "MIT")
			assert.NotContains(t, body, "SECRET-ID-42")
			assert.NotContains(t, body, leader.Email)
		}
	}

	// 有权限但没有请求私有字段
	w := test.Serve(t, ListSubmissions, listRequest(event.ID, leader.ID, ""))
	assert.NotContains(t, w.Body.String(), "SECRET-ID-42")

	for _, userID := range []uint{leader.ID, organizer.ID} {
		w = test.Serve(t, ListSubmissions, listRequest(event.ID, userID, "?private=true"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "SECRET-ID-42")
		assert.Contains(t, w.Body.String(), leader.Email)
	}

	// 详情接口不需要 private 参数
	get := test.Request{Method: http.MethodGet, Path: "/submission/:id", URL: fmt.Sprintf("/submission/%d", sub.ID)}
	get.UserID = stranger.ID
	assert.NotContains(t, test.Serve(t, GetSubmission, get).Body.String(), "SECRET-ID-42")
	get.UserID = leader.ID
	assert.Contains(t, test.Serve(t, GetSubmission, get).Body.String(), "SECRET-ID-42")
}

func TestListDisabledEvent(t *testing.T) {
	db := test.NewDB(t)
	organizer := test.CreateUser(t, db, "organizer")
	event := test.CreateEvent(t, db, organizer.ID)
	sub := test.CreateSubmission(t, db, event.ID, "hidden", organizer.ID)
	require.NoError(t, db.Model(event).Update("submissions_enabled", false).Error)

	test.ErrorEqual(t, response.ErrNotFound, test.DoRequest(t, ListSubmissions, listRequest(event.ID, 0, "")))
	test.ErrorEqual(t, response.ErrNotFound, test.DoRequest(t, GetSubmission, test.Request{
		Method: http.MethodGet, Path: "/submission/:id", URL: fmt.Sprintf("/submission/%d", sub.ID),
	}))
	test.ErrorEqual(t, response.ErrNotFound, test.DoRequest(t, ListSubmissions, listRequest(event.ID+100, 0, "")))
}

func TestListInvalidSort(t *testing.T) {
	db := test.NewDB(t)
	organizer := test.CreateUser(t, db, "organizer")
	event := test.CreateEvent(t, db, organizer.ID)
	test.ErrorEqual(t, response.ErrInvalidRequest, test.DoRequest(t, ListSubmissions, listRequest(event.ID, 0, "?sort=popularity")))
}

func TestCreateUpdateDeleteHandlers(t *testing.T) {
	db := test.NewDB(t)
	organizer := test.CreateUser(t, db, "organizer")
	leader := test.CreateUser(t, db, "leader")
	mate := test.CreateUser(t, db, "mate")
	event := test.CreateEvent(t, db, organizer.ID)
	test.Register(t, db, event.ID, leader.ID, mate.ID)

	resp := test.DoRequest(t, CreateSubmission, test.Request{
		Method: http.MethodPost,
		Path:   "/event/:id/submissions",
		URL:    fmt.Sprintf("/event/%d/submissions", event.ID),
		UserID: leader.ID,
		Body: map[string]any{
			"title":     "Drone",
			"memberIds": []uint{mate.ID},
			"attachments": []map[string]any{
				{"fileName": "design.pdf", "url": "https://files.example.com/design.pdf", "size": 2048},
			},
		},
	})
	test.NoError(t, resp)
	var created View
	test.DecodeData(t, resp, &created)
	assert.Equal(t, "Drone", created.Title)
	assert.Equal(t, leader.ID, created.Leader.UserID)
	require.Len(t, created.Members, 1)
	assert.True(t, created.CanManage)

	missingTitle := test.DoRequest(t, CreateSubmission, test.Request{
		Method: http.MethodPost,
		Path:   "/event/:id/submissions",
		URL:    fmt.Sprintf("/event/%d/submissions", event.ID),
		UserID: leader.ID,
		Body:   map[string]any{"tagline": "no title"},
	})
	test.ErrorEqual(t, response.ErrInvalidRequest, missingTitle)

	subURL := fmt.Sprintf("/submission/%d", created.ID)
	resp = test.DoRequest(t, UpdateSubmission, test.Request{
		Method: http.MethodPut,
		Path:   "/submission/:id",
		URL:    subURL,
		UserID: leader.ID,
		Body:   map[string]any{"tagline": "flies", "memberIds": []uint{}},
	})
	test.NoError(t, resp)
	var updated View
	test.DecodeData(t, resp, &updated)
	assert.Equal(t, "Drone", updated.Title)
	assert.Equal(t, "flies", updated.Tagline)
	assert.Empty(t, updated.Members)

	for _, body := range []map[string]any{
		{"demoUrl": "definitely not a url"},
		{"attachments": []map[string]any{{"fileName": "", "url": "", "size": -5}}},
	} {
		test.ErrorEqual(t, response.ErrInvalidRequest, test.DoRequest(t, UpdateSubmission, test.Request{
			Method: http.MethodPut, Path: "/submission/:id", URL: subURL, UserID: leader.ID, Body: body,
		}))
	}
	var stored model.Project
	require.NoError(t, db.First(&stored, updated.ProjectID).Error)
	assert.Empty(t, stored.DemoURL)
	var attachments int64
	require.NoError(t, db.Model(&model.ProjectAttachment{}).Where("project_id = ?", stored.ID).Count(&attachments).Error)
	assert.Equal(t, int64(1), attachments)

	resp = test.DoRequest(t, ReviewSubmission, test.Request{
		Method: http.MethodPut,
		Path:   "/submission/:id/review",
		URL:    subURL + "/review",
		UserID: organizer.ID,
		Body:   map[string]any{"status": "APPROVED", "note": "ok"},
	})
	test.NoError(t, resp)
	var reviewed View
	test.DecodeData(t, resp, &reviewed)
	assert.Equal(t, model.StatusApproved, reviewed.Status)

	test.ErrorEqual(t, response.ErrForbidden, test.DoRequest(t, DeleteSubmission, test.Request{
		Method: http.MethodDelete, Path: "/submission/:id", URL: subURL, UserID: mate.ID,
	}))
	test.NoError(t, test.DoRequest(t, DeleteSubmission, test.Request{
		Method: http.MethodDelete, Path: "/submission/:id", URL: subURL, UserID: leader.ID,
	}))
	test.ErrorEqual(t, response.ErrNotFound, test.DoRequest(t, GetSubmission, test.Request{
		Method: http.MethodGet, Path: "/submission/:id", URL: subURL,
	}))
}

func TestPresignAttachmentLimits(t *testing.T) {
	test.NewDB(t)
	req := test.Request{Method: http.MethodPost, Path: "/submission/attachment/presign", UserID: 1}

	req.Body = map[string]any{"fileName": "movie.mp4", "size": int64(300 * 1024 * 1024)}
	test.ErrorEqual(t, response.ErrAttachmentTooLarge, test.DoRequest(t, PresignAttachment, req))

	req.Body = map[string]any{"fileName": "slides.pdf", "size": 1024}
	test.ErrorEqual(t, response.ErrStorage, test.DoRequest(t, PresignAttachment, req))
}

func TestExportSubmissions(t *testing.T) {
	db := test.NewDB(t)
	organizer := test.CreateUser(t, db, "organizer")
	leader := test.CreateUser(t, db, "leader")
	event := test.CreateEvent(t, db, organizer.ID)
	test.CreateSubmission(t, db, event.ID, "Exported", leader.ID)

	req := test.Request{
		Method: http.MethodGet,
		Path:   "/event/:id/submissions/export",
		URL:    fmt.Sprintf("/event/%d/submissions/export", event.ID),
		UserID: leader.ID,
	}
	test.ErrorEqual(t, response.ErrForbidden, test.DoRequest(t, ExportSubmissions, req))

	req.UserID = organizer.ID
	w := test.Serve(t, ExportSubmissions, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, w.Body.Len())
}

func viewIDs(views []*View) []uint {
	return ids(views)
}

func viewRanks(views []*View) []int {
	return ranks(views)
}

func viewCounts(views []*View) []int64 {
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.VoteCount)
	}
	return out
}
