package vote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"event-submission-system/internal/global/response"
	"event-submission-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voteRequest(method string, submissionID, userID uint) test.Request {
	return test.Request{
		Method: method,
		Path:   "/submission/:id/vote",
		URL:    fmt.Sprintf("/submission/%d/vote", submissionID),
		UserID: userID,
	}
}

func TestCastHandler(t *testing.T) {
	f := newFixture(t)

	w := test.Serve(t, Cast, voteRequest(http.MethodPost, f.submissions[1].ID, f.voter.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var ok Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.Equal(t, int64(1), *ok.VoteCount)
	assert.Equal(t, 2, *ok.RemainingVotes)

	w = test.Serve(t, Cast, voteRequest(http.MethodPost, f.submissions[0].ID, f.leaders[0].ID))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, string(CodeOwnProject), body["error"])
	assert.NotEmpty(t, body["message"])
	assert.NotContains(t, body, "voteCount")
}

func TestRevokeHandler(t *testing.T) {
	f := newFixture(t)

	w := test.Serve(t, Revoke, voteRequest(http.MethodDelete, f.submissions[1].ID, f.voter.ID))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var failed Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failed))
	assert.Equal(t, CodeNotVoted, failed.Error)
}

func TestCastHandlerDisabledEvent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(f.event).Update("submissions_enabled", false).Error)

	resp := test.DoRequest(t, Cast, voteRequest(http.MethodPost, f.submissions[1].ID, f.voter.ID))
	test.ErrorEqual(t, response.ErrNotFound, resp)
}

func TestOverrideHandler(t *testing.T) {
	f := newFixture(t)
	req := test.Request{
		Method: http.MethodPut,
		Path:   "/submission/:id/vote-count",
		URL:    fmt.Sprintf("/submission/%d/vote-count", f.submissions[1].ID),
		Body:   map[string]any{"voteCount": 7},
	}

	req.UserID = f.voter.ID
	test.ErrorEqual(t, response.ErrForbidden, test.DoRequest(t, Override, req))

	req.UserID = f.organizer.ID
	resp := test.DoRequest(t, Override, req)
	test.NoError(t, resp)
	var data struct {
		VoteCount int64 `json:"voteCount"`
	}
	test.DecodeData(t, resp, &data)
	assert.Equal(t, int64(7), data.VoteCount)

	req.Body = map[string]any{"voteCount": -1}
	test.ErrorEqual(t, response.ErrInvalidRequest, test.DoRequest(t, Override, req))
}

func TestMineHandler(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.cast(t, 2, f.voter.ID).Success)

	resp := test.DoRequest(t, Mine, test.Request{
		Method: http.MethodGet,
		Path:   "/event/:id/votes/mine",
		URL:    fmt.Sprintf("/event/%d/votes/mine", f.event.ID),
		UserID: f.voter.ID,
	})
	test.NoError(t, resp)
	var mine MineResp
	test.DecodeData(t, resp, &mine)
	assert.Equal(t, []uint{f.submissions[2].ID}, mine.VotedSubmissionIDs)
	assert.Equal(t, 2, mine.RemainingVotes)
}

func TestExportStatsHandler(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.cast(t, 1, f.voter.ID).Success)

	w := test.Serve(t, ExportStats, test.Request{
		Method: http.MethodGet,
		Path:   "/event/:id/votes/stats/export",
		URL:    fmt.Sprintf("/event/%d/votes/stats/export", f.event.ID),
		UserID: f.organizer.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, w.Body.Len())
}
