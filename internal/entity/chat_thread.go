package entity

type ChatThread struct {
	Base

	Name      string
	CreatedBy string
	IsGroup   bool
}

func (t *ChatThread) TableName() string {
	return "chat_threads"
}

type ChatThreadMember struct {
	ThreadID string     `gorm:"primaryKey"`
	Thread   ChatThread `gorm:"foreignKey:ThreadID"`

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`
}

func (t *ChatThreadMember) TableName() string {
	return "chat_thread_members"
}
