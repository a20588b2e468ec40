package model

type User struct {
	Model
	Username   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password   string `gorm:"type:varchar(255);not null" json:"-"`
	Name       string `gorm:"type:varchar(50);not null" json:"name"`
	Avatar     string `gorm:"type:varchar(255)" json:"avatar"`
	Bio        string `gorm:"type:varchar(500)" json:"bio"`
	Email      string `gorm:"type:varchar(100)" json:"email"`      // 私有
	Phone      string `gorm:"type:varchar(30)" json:"phone"`       // 私有
	WeChat     string `gorm:"type:varchar(50)" json:"wechat"`      // 私有
	Region     string `gorm:"type:varchar(100)" json:"region"`     // 私有
	Occupation string `gorm:"type:varchar(100)" json:"occupation"` // 私有，身份/职位
}
