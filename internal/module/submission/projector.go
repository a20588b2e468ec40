package submission

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/objectstore"
	"event-submission-system/internal/model"
	"event-submission-system/internal/module/vote"
)

type SortKey string

const (
	SortVoteCount SortKey = "voteCount"
	SortCreatedAt SortKey = "createdAt"
	SortName      SortKey = "name"
)

// Contact 成员的私有联系方式
type Contact struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	WeChat     string `json:"wechat"`
	Region     string `json:"region"`
	Occupation string `json:"occupation"`
}

type MemberView struct {
	UserID   uint             `json:"userId"`
	Username string           `json:"username"`
	Name     string           `json:"name"`
	Avatar   string           `json:"avatar"`
	Bio      string           `json:"bio"`
	Role     model.MemberRole `json:"role"`
	Contact  *Contact         `json:"contact,omitempty"`
}

type AttachmentView struct {
	ID       uint   `json:"id"`
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Order    int    `json:"order"`
}

type EventSummary struct {
	ID   uint            `json:"id"`
	Name string          `json:"name"`
	Type model.EventType `json:"type"`
}

type ReviewView struct {
	Note       *string    `json:"note"`
	Score      *float64   `json:"score"`
	ReviewerID *uint      `json:"reviewerId"`
	ReviewedAt *time.Time `json:"reviewedAt"`
}

// View 对外渲染的投稿，读取的是项目的实时数据而不是快照
type View struct {
	ID             uint                   `json:"id"`
	EventID        uint                   `json:"eventId"`
	ProjectID      uint                   `json:"projectId"`
	SubmitterID    uint                   `json:"submitterId"`
	SubmissionType string                 `json:"submissionType"`
	Status         model.SubmissionStatus `json:"status"`
	Title          string                 `json:"title"`
	Tagline        string                 `json:"tagline"`
	Description    string                 `json:"description"`
	DemoURL        string                 `json:"demoUrl"`
	CommunityUse   bool                   `json:"communityUse"`
	CustomFields   map[string]any         `json:"customFields"`
	Leader         MemberView             `json:"leader"`
	Members        []MemberView           `json:"members"`
	Attachments    []AttachmentView       `json:"attachments"`
	Event          EventSummary           `json:"event"`
	VoteCount      int64                  `json:"voteCount"`
	VoteAdjustment *int                   `json:"voteAdjustment,omitempty"` // 仅管理员可见
	Rank           int                    `json:"rank,omitempty"`
	HasVoted       bool                   `json:"hasVoted"`
	CanManage      bool                   `json:"canManage"`
	Review         *ReviewView            `json:"review,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// Projector 根据调用者身份渲染投稿
// WantPrivate 为 false 时即使有权限也不输出私有字段（列表接口未带 private=true）
type Projector struct {
	Event       *model.Event
	Store       *objectstore.Store
	ViewerID    uint
	Admin       bool
	WantPrivate bool
}

func (p *Projector) Project(sub *model.EventProjectSubmission, rawVotes int64) *View {
	project := &sub.Project
	rel := access.RelationTo(p.ViewerID, project.LeaderID, sub.SubmitterID, p.Admin)
	private := p.WantPrivate && rel.Privileged()

	v := &View{
		ID:             sub.ID,
		EventID:        sub.EventID,
		ProjectID:      sub.ProjectID,
		SubmitterID:    sub.SubmitterID,
		SubmissionType: sub.SubmissionType,
		Status:         sub.Status,
		Title:          project.Title,
		Tagline:        project.Tagline,
		Description:    project.Description,
		DemoURL:        project.DemoURL,
		CommunityUse:   project.CommunityUse,
		CustomFields:   VisibleCustomFields(p.Event.Form(), project.CustomFields, private),
		Members:        []MemberView{},
		Attachments:    make([]AttachmentView, 0, len(project.Attachments)),
		Event:          EventSummary{ID: p.Event.ID, Name: p.Event.Name, Type: p.Event.Type},
		VoteCount:      vote.DisplayCount(rawVotes, project.VoteAdjustment),
		CanManage:      rel.Privileged(),
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
	}
	if p.Admin {
		v.VoteAdjustment = project.VoteAdjustment
	}
	if private {
		v.Review = &ReviewView{
			Note:       sub.ReviewNote,
			Score:      sub.ReviewScore,
			ReviewerID: sub.ReviewerID,
			ReviewedAt: sub.ReviewedAt,
		}
	}

	v.Leader = memberView(project.Leader, model.MemberRoleLeader, private)
	for _, m := range project.Members {
		if m.Role == model.MemberRoleLeader {
			continue
		}
		v.Members = append(v.Members, memberView(m.User, m.Role, private))
	}

	for _, a := range project.Attachments {
		url := a.URL
		if p.Store != nil {
			url = p.Store.ResolveURL(url)
		}
		v.Attachments = append(v.Attachments, AttachmentView{
			ID:       a.ID,
			FileName: a.FileName,
			URL:      url,
			Type:     a.Type,
			MimeType: a.MimeType,
			Size:     a.Size,
			Order:    a.Order,
		})
	}
	return v
}

func memberView(u model.User, role model.MemberRole, private bool) MemberView {
	m := MemberView{
		UserID:   u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
		Role:     role,
	}
	if private {
		m.Contact = &Contact{
			Email:      u.Email,
			Phone:      u.Phone,
			WeChat:     u.WeChat,
			Region:     u.Region,
			Occupation: u.Occupation,
		}
	}
	return m
}

// VisibleCustomFields 按活动表单过滤自定义字段答案
// enabled=false 的字段总是丢弃；publicVisible=false 或表单里没有配置的字段只在 private 时输出
func VisibleCustomFields(form model.SubmissionForm, answers map[string]any, private bool) map[string]any {
	out := make(map[string]any, len(answers))
	for key, value := range answers {
		d, configured := form.Lookup(key)
		switch {
		case configured && !d.Enabled:
			continue
		case configured && d.PublicVisible:
			out[key] = value
		case private:
			out[key] = value
		}
	}
	return out
}

// ParseSort 未知的排序键回落到 voteCount，方向默认降序
func ParseSort(key, order string) (SortKey, bool) {
	desc := !strings.EqualFold(order, "asc")
	switch SortKey(key) {
	case SortCreatedAt, SortName:
		return SortKey(key), desc
	}
	return SortVoteCount, desc
}

// SortViews 稳定排序，平票保持输入顺序
// 按票数排序时 rank = 在请求顺序中的位置 + 1，升序请求得到的是从末位数起的名次
func SortViews(views []*View, key SortKey, desc bool) {
	slices.SortStableFunc(views, func(a, b *View) int {
		c := compareViews(a, b, key)
		if desc {
			return -c
		}
		return c
	})
	if key != SortVoteCount {
		return
	}
	for i, v := range views {
		v.Rank = i + 1
	}
}

func compareViews(a, b *View, key SortKey) int {
	switch key {
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortName:
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	}
	return cmp.Compare(a.VoteCount, b.VoteCount)
}
