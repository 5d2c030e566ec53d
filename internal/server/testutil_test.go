package server

import (
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/featureflags"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer wires a Server against an in-memory database without touching
// Redis or the Prometheus registry.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		JWTSecret: "test-secret-0123456789abcdef0123456789abcdef",
		Env:       "test",
	}

	s := &Server{
		config:       cfg,
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		postRepo:     repository.NewPostRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		circleRepo:   repository.NewCircleRepository(db),
		messageRepo:  repository.NewMessageRepository(db),
		reportRepo:   repository.NewReportRepository(db),
		imageRepo:    repository.NewImageRepository(db),
		featureFlags: featureflags.NewManager(""),
	}

	s.renderer = service.NewRenderer(nil)
	s.postService = service.NewPostService(s.postRepo, s.commentRepo, s.circleRepo, s.userRepo, s.renderer)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.circleRepo, s.userRepo, s.renderer)
	s.circleService = service.NewCircleService(s.circleRepo, s.userRepo)
	s.messageService = service.NewMessageService(s.messageRepo, s.circleRepo, s.userRepo, s.renderer, nil)
	s.moderationService = service.NewModerationService(s.reportRepo, s.renderer)
	s.userService = service.NewUserService(s.userRepo)
	s.imageService = service.NewImageService(s.imageRepo, cfg)

	return s
}

// createTestUser inserts a user directly. The password column holds a
// placeholder; auth tests hash their own.
func createTestUser(t *testing.T, s *Server, username string, staff bool) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		IsStaff:  staff,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

// newAppAs builds a fiber app whose requests act as the given user, matching
// what AuthRequired would have stored in locals.
func newAppAs(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return app
}
