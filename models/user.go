package models

// 预置角色名
const (
	RoleUser      = "user"
	RolePowerUser = "power_user"
	RoleAdmin     = "admin"
)

// SeedRoleNames 启动时写入的全部角色，顺序固定
var SeedRoleNames = []string{RoleUser, RolePowerUser, RoleAdmin}

// Role 角色，初始化后不可变，只通过 ID 引用
type Role struct {
	ID   string `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Name string `gorm:"size:32;uniqueIndex;not null" json:"name" bson:"name"`
}

// User 用户。Roles 保存角色 ID 列表
type User struct {
	ID       string   `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Username string   `gorm:"size:64;uniqueIndex;not null" json:"username" bson:"username"`
	Fullname string   `gorm:"size:255" json:"fullname" bson:"fullname"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email" bson:"email"`
	Password string   `gorm:"size:255;not null" json:"-" bson:"password"`
	Roles    []string `gorm:"serializer:json" json:"roles" bson:"roles"`
	Avatar   string   `gorm:"size:512" json:"avatar" bson:"avatar"`
}
