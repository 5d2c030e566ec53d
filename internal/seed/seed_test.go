package seed

import (
	"testing"

	"agora/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Circle{},
		&models.CircleMembership{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Message{},
		&models.Report{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeed_SmallDataset(t *testing.T) {
	t.Parallel()

	db := openSeedDB(t)
	err := Seed(db, Options{NumUsers: 6, NumPosts: 12, SkipBcrypt: true, MaxDays: 14})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	var userCount int64
	if countErr := db.Model(&models.User{}).Count(&userCount).Error; countErr != nil {
		t.Fatalf("count users: %v", countErr)
	}
	// 6 generated users plus the staff account
	if userCount != 7 {
		t.Fatalf("expected 7 users, got %d", userCount)
	}

	var staff models.User
	if findErr := db.Where("username = ?", "agora_staff").First(&staff).Error; findErr != nil {
		t.Fatalf("missing staff account: %v", findErr)
	}
	if !staff.IsStaff {
		t.Fatal("expected agora_staff to be staff")
	}

	var circleCount int64
	if countErr := db.Model(&models.Circle{}).Count(&circleCount).Error; countErr != nil {
		t.Fatalf("count circles: %v", countErr)
	}
	if circleCount != int64(len(BuiltInCircles)) {
		t.Fatalf("expected %d circles, got %d", len(BuiltInCircles), circleCount)
	}

	var postCount int64
	if countErr := db.Model(&models.Post{}).Count(&postCount).Error; countErr != nil {
		t.Fatalf("count posts: %v", countErr)
	}
	if postCount != 12 {
		t.Fatalf("expected 12 posts, got %d", postCount)
	}

	var membershipCount int64
	if countErr := db.Model(&models.CircleMembership{}).Count(&membershipCount).Error; countErr != nil {
		t.Fatalf("count memberships: %v", countErr)
	}
	// Every user joins at least two circles.
	if membershipCount < userCount*2 {
		t.Fatalf("expected at least %d memberships, got %d", userCount*2, membershipCount)
	}

	var reportCount int64
	if countErr := db.Model(&models.Report{}).Count(&reportCount).Error; countErr != nil {
		t.Fatalf("count reports: %v", countErr)
	}
	if reportCount == 0 {
		t.Fatal("expected at least one seeded report")
	}
}

func TestSeed_CirclePostsStayInAuthorCircles(t *testing.T) {
	t.Parallel()

	db := openSeedDB(t)
	err := Seed(db, Options{NumUsers: 5, NumPosts: 20, SkipBcrypt: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	var posts []models.Post
	if findErr := db.Where("circle_id IS NOT NULL").Find(&posts).Error; findErr != nil {
		t.Fatalf("load posts: %v", findErr)
	}

	for _, post := range posts {
		var count int64
		err = db.Model(&models.CircleMembership{}).
			Where("user_id = ? AND circle_id = ?", post.UserID, *post.CircleID).
			Count(&count).Error
		if err != nil {
			t.Fatalf("membership query: %v", err)
		}
		if count == 0 {
			t.Fatalf("post %d placed in circle %d its author %d never joined", post.ID, *post.CircleID, post.UserID)
		}
	}
}

func TestSeed_RepliesNestUnderTopLevelComments(t *testing.T) {
	t.Parallel()

	db := openSeedDB(t)
	err := Seed(db, Options{NumUsers: 5, NumPosts: 20, SkipBcrypt: true})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	var replies []models.Comment
	if findErr := db.Where("parent_id IS NOT NULL").Find(&replies).Error; findErr != nil {
		t.Fatalf("load replies: %v", findErr)
	}

	for _, reply := range replies {
		var parent models.Comment
		if findErr := db.First(&parent, *reply.ParentID).Error; findErr != nil {
			t.Fatalf("missing parent for reply %d: %v", reply.ID, findErr)
		}
		if parent.ParentID != nil {
			t.Fatalf("reply %d nests under another reply %d", reply.ID, parent.ID)
		}
		if parent.PostID != reply.PostID {
			t.Fatalf("reply %d crosses posts: %d vs %d", reply.ID, reply.PostID, parent.PostID)
		}
	}
}
