package model

type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

// CanAdminister owner 和 admin 可以管理组织下的活动
func (r OrgRole) CanAdminister() bool {
	return r == OrgRoleOwner || r == OrgRoleAdmin
}

func (r OrgRole) Valid() bool {
	return r == OrgRoleOwner || r == OrgRoleAdmin || r == OrgRoleMember
}

type Organization struct {
	Model
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(500)" json:"description"`
	Avatar      string `gorm:"type:varchar(255)" json:"avatar"`
	OwnerID     uint   `gorm:"not null" json:"owner_id"`
}

type OrganizationMember struct {
	Model
	OrganizationID uint    `gorm:"not null;uniqueIndex:idx_org_user" json:"organization_id"`
	UserID         uint    `gorm:"not null;uniqueIndex:idx_org_user;index" json:"user_id"`
	Role           OrgRole `gorm:"type:varchar(10);not null" json:"role"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
