package submission

import (
	"testing"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/objectstore"
	"event-submission-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func viewsWithCounts(counts ...int64) []*View {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	views := make([]*View, 0, len(counts))
	for i, c := range counts {
		views = append(views, &View{
			ID:        uint(i + 1),
			Title:     string(rune('a' + i)),
			VoteCount: c,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return views
}

func ids(views []*View) []uint {
	out := make([]uint, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func ranks(views []*View) []int {
	out := make([]int, 0, len(views))
	for _, v := range views {
		out = append(out, v.Rank)
	}
	return out
}

func TestSortViewsRankFollowsRequestedOrder(t *testing.T) {
	desc := viewsWithCounts(4, 9, 1, 7, 3)
	SortViews(desc, SortVoteCount, true)
	assert.Equal(t, []uint{2, 4, 1, 5, 3}, ids(desc))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ranks(desc))

	asc := viewsWithCounts(4, 9, 1, 7, 3)
	SortViews(asc, SortVoteCount, false)
	assert.Equal(t, []uint{3, 5, 1, 4, 2}, ids(asc))
	// 升序时 rank 从末位数起，不是绝对名次
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ranks(asc))

	rankByID := func(views []*View) map[uint]int {
		m := map[uint]int{}
		for _, v := range views {
			m[v.ID] = v.Rank
		}
		return m
	}
	descRanks, ascRanks := rankByID(desc), rankByID(asc)
	for id, r := range descRanks {
		assert.Equal(t, len(desc)+1-r, ascRanks[id])
	}
}

func TestSortViewsTiesKeepInputOrder(t *testing.T) {
	views := viewsWithCounts(3, 5, 3)
	SortViews(views, SortVoteCount, true)
	assert.Equal(t, []uint{2, 1, 3}, ids(views))
	assert.Equal(t, []int{1, 2, 3}, ranks(views))
}

func TestSortViewsOtherKeys(t *testing.T) {
	views := viewsWithCounts(1, 2, 3)
	views[0].Title, views[1].Title, views[2].Title = "banana", "Apple", "cherry"

	SortViews(views, SortName, false)
	assert.Equal(t, []uint{2, 1, 3}, ids(views))
	assert.Equal(t, []int{0, 0, 0}, ranks(views))

	SortViews(views, SortCreatedAt, true)
	assert.Equal(t, []uint{3, 2, 1}, ids(views))
}

func TestParseSort(t *testing.T) {
	key, desc := ParseSort("", "")
	assert.Equal(t, SortVoteCount, key)
	assert.True(t, desc)

	key, desc = ParseSort("name", "asc")
	assert.Equal(t, SortName, key)
	assert.False(t, desc)

	key, _ = ParseSort("bogus", "desc")
	assert.Equal(t, SortVoteCount, key)
}

var testForm = model.SubmissionForm{
	{Key: "school", Label: "学校", Kind: model.FieldText, Enabled: true, PublicVisible: true},
	{Key: "idcard", Label: "证件号", Kind: model.FieldText, Enabled: true, PublicVisible: false},
	{Key: "legacy", Label: "旧字段", Kind: model.FieldText, Enabled: false, PublicVisible: true},
}

func TestVisibleCustomFields(t *testing.T) {
	answers := map[string]any{
		"school":   "MIT",
		"idcard":   "X123",
		"legacy":   "old",
		"untitled": "free text",
	}

	public := VisibleCustomFields(testForm, answers, false)
	assert.Equal(t, map[string]any{"school": "MIT"}, public)

	private := VisibleCustomFields(testForm, answers, true)
	assert.Equal(t, map[string]any{"school": "MIT", "idcard": "X123", "untitled": "free text"}, private)

	assert.Empty(t, VisibleCustomFields(testForm, nil, true))
}

func projectedSubmission() *model.EventProjectSubmission {
	adj := -2
	return &model.EventProjectSubmission{
		Model:       model.Model{ID: 5},
		EventID:     1,
		ProjectID:   9,
		SubmitterID: 20,
		Status:      model.StatusSubmitted,
		Project: model.Project{
			Model:          model.Model{ID: 9},
			LeaderID:       10,
			Title:          "Robot",
			CustomFields:   map[string]any{"school": "MIT", "idcard": "X123"},
			VoteAdjustment: &adj,
			Leader:         model.User{Model: model.Model{ID: 10}, Username: "lead", Email: "lead@example.com"},
			Members: []model.ProjectMember{
				{UserID: 10, Role: model.MemberRoleLeader, User: model.User{Model: model.Model{ID: 10}, Username: "lead"}},
				{UserID: 11, Role: model.MemberRoleMember, User: model.User{Model: model.Model{ID: 11}, Username: "mate", Phone: "555"}},
			},
			Attachments: []model.ProjectAttachment{
				{FileName: "cover.png", URL: "uploads/cover.png"},
			},
		},
	}
}

func TestProjectorRedaction(t *testing.T) {
	event := &model.Event{Model: model.Model{ID: 1}, Name: "Hack", SubmissionForm: datatypes.JSONSlice[model.FieldDescriptor](testForm)}
	store := objectstore.New(config.S3{BaseURL: "https://cdn.example.com"})

	tests := []struct {
		name        string
		viewer      uint
		admin       bool
		wantPrivate bool
		private     bool
	}{
		{"anonymous", 0, false, true, false},
		{"stranger", 99, false, true, false},
		{"leader without flag", 10, false, false, false},
		{"leader", 10, false, true, true},
		{"submitter", 20, false, true, true},
		{"admin", 1, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Projector{Event: event, Store: store, ViewerID: tt.viewer, Admin: tt.admin, WantPrivate: tt.wantPrivate}
			v := p.Project(projectedSubmission(), 5)

			assert.Equal(t, int64(3), v.VoteCount)
			assert.Equal(t, "https://cdn.example.com/uploads/cover.png", v.Attachments[0].URL)
			require.Len(t, v.Members, 1)
			assert.Equal(t, "mate", v.Members[0].Username)
			assert.Equal(t, "MIT", v.CustomFields["school"])

			if tt.private {
				assert.Equal(t, "X123", v.CustomFields["idcard"])
				require.NotNil(t, v.Leader.Contact)
				assert.Equal(t, "lead@example.com", v.Leader.Contact.Email)
				assert.Equal(t, "555", v.Members[0].Contact.Phone)
				assert.NotNil(t, v.Review)
			} else {
				assert.NotContains(t, v.CustomFields, "idcard")
				assert.Nil(t, v.Leader.Contact)
				assert.Nil(t, v.Members[0].Contact)
				assert.Nil(t, v.Review)
			}

			if tt.admin {
				require.NotNil(t, v.VoteAdjustment)
				assert.Equal(t, -2, *v.VoteAdjustment)
			} else {
				assert.Nil(t, v.VoteAdjustment)
			}
		})
	}
}
