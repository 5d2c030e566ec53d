package seed

import (
	"fmt"
	"log"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores a plaintext password to speed up large seeds.
	SkipBcrypt bool
	// DryRun builds entities without writing to the database.
	DryRun bool
	// MaxDays bounds how far back generated timestamps spread.
	MaxDays int
	// BatchSize controls insert chunking for large post seeds.
	BatchSize int
}

// Seed populates the database with demo data: users, the built-in
// circles, memberships, posts, comments, likes, circle messages, and a
// few pending moderation reports.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	if err := Circles(db); err != nil {
		return fmt.Errorf("failed to seed built-in circles: %w", err)
	}
	var circles []models.Circle
	if err := db.Order("id").Find(&circles).Error; err != nil {
		return fmt.Errorf("failed to load circles: %w", err)
	}
	log.Printf("✓ %d circles available", len(circles))

	memberships, err := joinCircles(f, users, circles)
	if err != nil {
		return fmt.Errorf("failed to create memberships: %w", err)
	}

	posts, err := createPosts(f, users, memberships, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments, err := createComments(f, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", len(comments))

	if err := createLikes(f, users, posts); err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}

	if err := createMessages(f, users, circles, memberships); err != nil {
		return fmt.Errorf("failed to create messages: %w", err)
	}

	if err := createReports(f, users, posts, comments); err != nil {
		return fmt.Errorf("failed to create reports: %w", err)
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE reports, likes, comments, messages, posts, circle_memberships, circles, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count+1)

	// A known staff account makes local moderation testing painless.
	staff, err := f.CreateUser(func(u *models.User) {
		u.Username = "agora_staff"
		u.Email = "staff@agora.local"
		u.DisplayName = "Agora Staff"
		u.IsStaff = true
		u.ShowRealName = false
	})
	if err != nil {
		log.Printf("Failed to create staff user (may already exist): %v", err)
	} else {
		users = append(users, staff)
	}

	for i := 0; i < count; i++ {
		n := i
		user, err := f.CreateUser(func(u *models.User) {
			// Ensure uniqueness roughly
			u.Username = fmt.Sprintf("%s%d", u.Username, n)
		})
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

// joinCircles gives every seeded user a handful of circle memberships and
// returns userID -> member circleIDs for later content placement.
func joinCircles(f *Factory, users []*models.User, circles []models.Circle) (map[uint][]uint, error) {
	memberships := make(map[uint][]uint, len(users))
	if len(circles) == 0 {
		return memberships, nil
	}

	for _, user := range users {
		joined := make(map[uint]struct{})
		want := 2 + f.rng.Intn(4)
		if want > len(circles) {
			want = len(circles)
		}
		for len(joined) < want {
			circle := circles[f.rng.Intn(len(circles))]
			if _, ok := joined[circle.ID]; ok {
				continue
			}
			if err := f.CreateMembership(user, &circle, models.CircleRoleMember); err != nil {
				return nil, err
			}
			joined[circle.ID] = struct{}{}
			memberships[user.ID] = append(memberships[user.ID], circle.ID)
		}
	}

	return memberships, nil
}

func createPosts(f *Factory, users []*models.User, memberships map[uint][]uint, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)

	for i := 0; i < count; i++ {
		user := users[f.rng.Intn(len(users))]

		// Roughly a third of posts go to the global feed; the rest land in
		// a circle the author actually belongs to.
		var circleID *uint
		if member := memberships[user.ID]; len(member) > 0 && f.rng.Float32() >= 0.3 {
			id := member[f.rng.Intn(len(member))]
			circleID = &id
		}

		posts = append(posts, f.BuildPost(user, circleID))
	}

	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func createComments(f *Factory, users []*models.User, posts []*models.Post) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0, len(posts)*2)

	for _, post := range posts {
		topLevel := f.rng.Intn(4)
		for i := 0; i < topLevel; i++ {
			user := users[f.rng.Intn(len(users))]
			comment, err := f.CreateComment(user, post)
			if err != nil {
				return nil, err
			}
			comments = append(comments, comment)

			// Some top-level comments pick up a reply.
			if f.rng.Float32() < 0.4 {
				replier := users[f.rng.Intn(len(users))]
				reply, err := f.CreateReply(replier, post, comment)
				if err != nil {
					return nil, err
				}
				comments = append(comments, reply)
			}
		}
	}

	return comments, nil
}

func createLikes(f *Factory, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		want := f.rng.Intn(len(users) + 1)
		if want > 8 {
			want = 8
		}
		liked := make(map[uint]struct{}, want)
		for len(liked) < want {
			user := users[f.rng.Intn(len(users))]
			if _, ok := liked[user.ID]; ok {
				continue
			}
			if err := f.CreateLike(user, post); err != nil {
				return err
			}
			liked[user.ID] = struct{}{}
		}
	}
	return nil
}

func createMessages(f *Factory, users []*models.User, circles []models.Circle, memberships map[uint][]uint) error {
	// Invert the membership map so each circle chats among its own members.
	byCircle := make(map[uint][]*models.User)
	for _, user := range users {
		for _, circleID := range memberships[user.ID] {
			byCircle[circleID] = append(byCircle[circleID], user)
		}
	}

	for i := range circles {
		members := byCircle[circles[i].ID]
		if len(members) == 0 {
			continue
		}
		count := 3 + f.rng.Intn(8)
		for j := 0; j < count; j++ {
			sender := members[f.rng.Intn(len(members))]
			if _, err := f.CreateMessage(&circles[i], sender); err != nil {
				return err
			}
		}
	}
	return nil
}

func createReports(f *Factory, users []*models.User, posts []*models.Post, comments []*models.Comment) error {
	if len(posts) == 0 || len(users) < 2 {
		return nil
	}

	count := len(posts) / 10
	if count < 2 {
		count = 2
	}
	for i := 0; i < count; i++ {
		reporter := users[f.rng.Intn(len(users))]
		if len(comments) > 0 && f.rng.Float32() < 0.3 {
			comment := comments[f.rng.Intn(len(comments))]
			if _, err := f.CreateReport(reporter, models.ReportTargetComment, comment.ID); err != nil {
				return err
			}
			continue
		}
		post := posts[f.rng.Intn(len(posts))]
		if _, err := f.CreateReport(reporter, models.ReportTargetPost, post.ID); err != nil {
			return err
		}
	}
	return nil
}
