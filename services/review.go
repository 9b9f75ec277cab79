package services

import (
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

// AddReview creates or replaces the user's review and recomputes the course
// rating from every review while holding the course row lock.
func AddReview(db *gorm.DB, userID, courseID uint, rating int, comment string, now time.Time) (*course.Review, error) {
	if !course.IsValidRating(rating) {
		return nil, apierr.Validation("rating", "Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, apierr.Validation("comment", "Comment cannot exceed 1000 characters")
	}
	if _, err := loadCourse(db, courseID); err != nil {
		return nil, err
	}
	enrolled, err := IsEnrolled(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apierr.BusinessRule("You must be enrolled in the course to review it")
	}

	var saved course.Review
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockCourse(tx, courseID); err != nil {
			return err
		}
		reviews, err := courseReviews(tx, courseID)
		if err != nil {
			return err
		}

		reviews, idx := course.ApplyReview(reviews, course.Review{
			CourseID:   courseID,
			UserID:     userID,
			Rating:     rating,
			Comment:    comment,
			IsVerified: true,
			CreatedAt:  now,
		})
		saved = reviews[idx]

		if saved.ID == 0 {
			if err := tx.Create(&saved).Error; err != nil {
				return errors.Wrap(err, "create review")
			}
			reviews[idx] = saved
		} else {
			err := tx.Model(&course.Review{}).Where("id = ?", saved.ID).Updates(map[string]interface{}{
				"rating":      saved.Rating,
				"comment":     saved.Comment,
				"is_verified": saved.IsVerified,
				"created_at":  now,
			}).Error
			if err != nil {
				return errors.Wrap(err, "update review")
			}
		}

		return saveRating(tx, courseID, course.ComputeRating(reviews))
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func DeleteReview(db *gorm.DB, actorID, courseID, reviewID uint) error {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return err
	}
	var review course.Review
	if err := db.Where("id = ? AND course_id = ?", reviewID, courseID).First(&review).Error; err != nil {
		return notFoundOr(err, msgReviewNotFound, "load review")
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return apierr.Forbidden("You can only delete your own review")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := lockCourse(tx, courseID); err != nil {
			return err
		}
		if err := tx.Delete(&course.Review{}, review.ID).Error; err != nil {
			return errors.Wrap(err, "delete review")
		}
		reviews, err := courseReviews(tx, courseID)
		if err != nil {
			return err
		}
		return saveRating(tx, courseID, course.ComputeRating(reviews))
	})
}

// ListReviews pages through a course's reviews in submission order.
func ListReviews(db *gorm.DB, courseID uint, page, limit int) ([]course.Review, Pagination, error) {
	page, limit = NormalizePage(page, limit)
	q := db.Model(&course.Review{}).Where("course_id = ?", courseID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, errors.Wrap(err, "count reviews")
	}
	var reviews []course.Review
	err := q.Preload("User").Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&reviews).Error
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list reviews")
	}
	return reviews, NewPagination(page, limit, total), nil
}

func lockCourse(tx *gorm.DB, courseID uint) error {
	var c course.Course
	if err := forUpdate(tx).Select("id").First(&c, courseID).Error; err != nil {
		return notFoundOr(err, msgCourseNotFound, "lock course")
	}
	return nil
}

func courseReviews(tx *gorm.DB, courseID uint) ([]course.Review, error) {
	var reviews []course.Review
	if err := tx.Where("course_id = ?", courseID).Order("id asc").Find(&reviews).Error; err != nil {
		return nil, errors.Wrap(err, "load reviews")
	}
	return reviews, nil
}

func saveRating(tx *gorm.DB, courseID uint, rating course.Rating) error {
	err := tx.Model(&course.Course{}).Where("id = ?", courseID).Updates(rating.Columns()).Error
	return errors.Wrap(err, "save course rating")
}
