package testutil

import (
	"context"

	"github.com/intranet-lab/backend/internal/entity"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/internal/repository/migration"
)

// Well-known fixture records. Tests refer to these instead of re-creating
// their own users for every case.
var (
	User1 = entity.User{Base: entity.Base{ID: "user1"}, Name: "User 1", Role: "employee"}
	User2 = entity.User{Base: entity.Base{ID: "user2"}, Name: "User 2", Role: "employee"}
	User3 = entity.User{Base: entity.Base{ID: "user3"}, Name: "User 3", Role: "manager"}

	Device1 = entity.Device{
		Base:     entity.Base{ID: "device1"},
		UserID:   User1.ID,
		Token:    "ExponentPushToken[user1-device1]",
		Platform: entity.PlatformIOS,
		IsActive: true,
	}
	Device2 = entity.Device{
		Base:     entity.Base{ID: "device2"},
		UserID:   User2.ID,
		Token:    "ExponentPushToken[user2-device1]",
		Platform: entity.PlatformAndroid,
		IsActive: true,
	}

	Thread1 = entity.ChatThread{
		Base:      entity.Base{ID: "thread1"},
		Name:      "General",
		CreatedBy: User1.ID,
		IsGroup:   true,
	}
	Thread1Members = []string{User1.ID, User2.ID}
)

// CreateFixtureDb migrates the database carried by ctx and inserts the
// well-known records above.
func CreateFixtureDb(ctx context.Context) {
	if err := migration.Migrate(ctx); err != nil {
		panic(err)
	}

	insertUsers(ctx)
	insertDevices(ctx)
	insertThreads(ctx)
}

func insertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, user := range []entity.User{User1, User2, User3} {
		user := user
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func insertDevices(ctx context.Context) {
	deviceRepo := repository.NewDeviceRepository()
	for _, device := range []entity.Device{Device1, Device2} {
		device := device
		if err := deviceRepo.Upsert(ctx, &device); err != nil {
			panic(err)
		}
	}
}

func insertThreads(ctx context.Context) {
	chatThreadRepo := repository.NewChatThreadRepository()
	thread := Thread1
	if err := chatThreadRepo.Create(ctx, &thread, Thread1Members); err != nil {
		panic(err)
	}
}
