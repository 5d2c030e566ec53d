// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	programs = []string{
		"Computer Science", "Mechanical Engineering", "Psychology",
		"Business Administration", "Biology", "Economics", "Nursing",
		"Philosophy", "Mathematics", "Architecture", "History", "Chemistry",
	}

	grades = []string{"freshman", "sophomore", "junior", "senior", "graduate"}
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: weak randomness is fine for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng, nextID: 1000}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:     gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:        gofakeit.Email(),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		Bio:          gofakeit.Sentence(10),
		Avatar:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Program:      programs[f.rng.Intn(len(programs))],
		Grade:        grades[f.rng.Intn(len(grades))],
		ShowRealName: f.rng.Float32() < 0.2,
	}

	// Roughly half the users pick a display handle
	if f.rng.Float32() < 0.5 {
		user.DisplayName = gofakeit.Gamertag()
		if len(user.DisplayName) > 50 {
			user.DisplayName = user.DisplayName[:50]
		}
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCircle constructs and persists a circle with the creator's
// membership row.
func (f *Factory) CreateCircle(creator *models.User, overrides ...func(*models.Circle)) (*models.Circle, error) {
	circle := &models.Circle{
		Name:            fmt.Sprintf("%s %s %d", gofakeit.HackerAdjective(), gofakeit.HackerNoun(), gofakeit.Number(1, 999)),
		Description:     gofakeit.Sentence(12),
		IsPrivate:       f.rng.Float32() < 0.25,
		CreatedByUserID: &creator.ID,
	}

	for _, override := range overrides {
		override(circle)
	}

	if err := f.db.Create(circle).Error; err != nil {
		return nil, err
	}
	if err := f.CreateMembership(creator, circle, models.CircleRoleCreator); err != nil {
		return nil, err
	}
	return circle, nil
}

// CreateMembership persists a membership row for user in circle.
func (f *Factory) CreateMembership(user *models.User, circle *models.Circle, role models.CircleRole) error {
	membership := &models.CircleMembership{
		CircleID: circle.ID,
		UserID:   user.ID,
		Role:     role,
	}
	return f.db.Create(membership).Error
}

// BuildPost constructs a post struct without persisting it. Useful for
// batching. A nil circleID produces a global feed post.
func (f *Factory) BuildPost(user *models.User, circleID *uint, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       gofakeit.Sentence(5),
		Content:     gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:      user.ID,
		CircleID:    circleID,
		IsAnonymous: f.rng.Float32() < 0.6,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` for the given user.
func (f *Factory) CreatePost(user *models.User, circleID *uint, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, circleID, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: user=%d title=%q", post.UserID, post.Title)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	batchSize := f.opts.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return f.db.CreateInBatches(&posts, batchSize).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:     gofakeit.Sentence(8),
		UserID:      user.ID,
		PostID:      post.ID,
		IsAnonymous: f.rng.Float32() < 0.6,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply persists a reply to a top-level comment on the same post.
func (f *Factory) CreateReply(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	withParent := append([]func(*models.Comment){func(c *models.Comment) {
		c.ParentID = &parent.ID
	}}, overrides...)
	return f.CreateComment(user, post, withParent...)
}

// CreateLike persists a like from `user` on `post`.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Create(like).Error
}

// CreateMessage constructs and persists a chat message in the provided
// circle from the provided sender.
func (f *Factory) CreateMessage(circle *models.Circle, sender *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		CircleID:    circle.ID,
		UserID:      sender.ID,
		Content:     gofakeit.Sentence(10),
		IsAnonymous: f.rng.Float32() < 0.6,
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// CreateReport persists a pending moderation report from the reporter
// against the given target.
func (f *Factory) CreateReport(reporter *models.User, targetType models.ReportTargetType, targetID uint, overrides ...func(*models.Report)) (*models.Report, error) {
	report := &models.Report{
		ReporterID: reporter.ID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     gofakeit.Sentence(8),
		Status:     models.ReportStatusPending,
	}

	for _, override := range overrides {
		override(report)
	}

	if err := f.db.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}
