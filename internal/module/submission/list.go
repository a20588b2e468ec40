package submission

import (
	"context"

	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/objectstore"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"
	"event-submission-system/internal/module/vote"

	"github.com/samber/lo"
)

type ListReq struct {
	Sort    string `form:"sort" binding:"omitempty,oneof=voteCount createdAt name"`
	Order   string `form:"order" binding:"omitempty,oneof=asc desc"`
	Private bool   `form:"private"`
}

type ListResp struct {
	Submissions        []*View `json:"submissions"`
	VotedSubmissionIDs []uint  `json:"votedSubmissionIds"`
	RemainingVotes     *int    `json:"remainingVotes"` // 未登录时为 null
}

// List 渲染活动下的全部投稿并排序，同时带上调用者自己的投票状态
func (s *Service) List(ctx context.Context, event *model.Event, viewerID uint, req ListReq) (*ListResp, error) {
	if !event.SubmissionsEnabled {
		return nil, response.ErrNotFound.WithTips("活动不存在")
	}

	var subs []model.EventProjectSubmission
	if err := withProject(s.DB.WithContext(ctx)).
		Where("event_id = ?", event.ID).
		Order("id ASC").
		Find(&subs).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	ledger := vote.NewLedger(s.DB)
	counts, err := ledger.RawCounts(ctx, event.ID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	admin, err := access.IsAdministrator(s.DB.WithContext(ctx), event, viewerID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	projector := &Projector{
		Event:       event,
		Store:       objectstore.Default(),
		ViewerID:    viewerID,
		Admin:       admin,
		WantPrivate: req.Private,
	}
	views := make([]*View, 0, len(subs))
	for i := range subs {
		views = append(views, projector.Project(&subs[i], counts[subs[i].ProjectID]))
	}
	key, desc := ParseSort(req.Sort, req.Order)
	SortViews(views, key, desc)

	resp := &ListResp{Submissions: views, VotedSubmissionIDs: []uint{}}
	if viewerID == 0 {
		return resp, nil
	}
	mine, err := vote.Summarize(ctx, ledger, event.ID, viewerID)
	if err != nil {
		return nil, err
	}
	resp.VotedSubmissionIDs = mine.VotedSubmissionIDs
	resp.RemainingVotes = &mine.RemainingVotes
	for _, v := range views {
		v.HasVoted = lo.Contains(mine.VotedSubmissionIDs, v.ID)
	}
	return resp, nil
}

// Get 单个投稿；有权限的调用者直接看到私有字段
func (s *Service) Get(ctx context.Context, id, viewerID uint) (*View, error) {
	sub, event, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	ledger := vote.NewLedger(s.DB)
	raw, err := ledger.RawCount(ctx, sub.ProjectID, event.ID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	admin, err := access.IsAdministrator(s.DB.WithContext(ctx), event, viewerID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	projector := &Projector{
		Event:       event,
		Store:       objectstore.Default(),
		ViewerID:    viewerID,
		Admin:       admin,
		WantPrivate: true,
	}
	view := projector.Project(sub, raw)
	if viewerID != 0 {
		voted, err := ledger.VotedProjects(ctx, event.ID, viewerID)
		if err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		view.HasVoted = lo.Contains(voted, sub.ProjectID)
	}
	return view, nil
}
