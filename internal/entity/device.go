package entity

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

type Device struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Token    string `gorm:"uniqueIndex"`
	Platform string
	IsActive bool
}
