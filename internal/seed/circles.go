package seed

import (
	"fmt"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCircle is a permanent system circle.
type BuiltInCircle struct {
	Name        string
	Description string
	IsPrivate   bool
}

// BuiltInCircles defines the permanent system circles.
var BuiltInCircles = []BuiltInCircle{
	{Name: "Campus Commons", Description: "General campus discussion."},
	{Name: "Course Help", Description: "Homework questions and study groups."},
	{Name: "Dorm Life", Description: "Residence halls, roommates, and living tips."},
	{Name: "Career Corner", Description: "Internships, interviews, and job hunting."},
	{Name: "Club Fair", Description: "Student clubs and campus events."},
	{Name: "Food Finds", Description: "Dining halls and cheap eats near campus."},
	{Name: "Intramurals", Description: "Pickup games and intramural sports."},
	{Name: "Study Abroad", Description: "Exchange programs and travel stories."},
	{Name: "Grad Lounge", Description: "Graduate student life and research talk.", IsPrivate: true},
	{Name: "Peer Support", Description: "A quieter space to talk things through.", IsPrivate: true},
}

// Circles seeds the permanent built-in circles. Conflicts on name are
// treated as updates so re-running keeps descriptions current.
func Circles(db *gorm.DB) error {
	for _, item := range BuiltInCircles {
		circle := models.Circle{
			Name:        item.Name,
			Description: item.Description,
			IsPrivate:   item.IsPrivate,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "is_private", "updated_at"}),
		}).Create(&circle).Error; err != nil {
			return fmt.Errorf("seed built-in circle %s: %w", item.Name, err)
		}
	}
	return nil
}
