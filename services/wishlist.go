package services

import (
	"time"

	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddToWishlist saves the course for later. Adding twice keeps one entry.
func AddToWishlist(db *gorm.DB, userID, courseID uint, now time.Time) error {
	if _, err := loadCourse(db, courseID); err != nil {
		return err
	}
	item := course.WishlistItem{UserID: userID, CourseID: courseID, CreatedAt: now}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error
	return errors.Wrap(err, "add wishlist item")
}

func RemoveFromWishlist(db *gorm.DB, userID, courseID uint) error {
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&course.WishlistItem{}).Error
	return errors.Wrap(err, "remove wishlist item")
}

func ListWishlist(db *gorm.DB, userID uint) ([]course.WishlistItem, error) {
	var items []course.WishlistItem
	err := db.Where("user_id = ?", userID).Preload("Course").Order("id asc").Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist")
	}
	return items, nil
}
