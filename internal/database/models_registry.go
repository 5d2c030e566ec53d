package database

import "agora/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Circle{},
		&models.CircleMembership{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Message{},
		&models.Report{},
		&models.Image{},
		&models.ImageVariant{},
	}
}
