package services

import (
	"time"

	"coursemart/apierr"
	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Enroll adds the user to the course. The capacity check is repeated as a
// conditional update inside the transaction, so concurrent enrollments can
// never push currentStudents past maxStudents.
func Enroll(db *gorm.DB, userID, courseID uint, now time.Time) (*course.Enrollment, error) {
	c, err := loadCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := LoadActiveUser(db, userID); err != nil {
		return nil, err
	}
	if !c.IsAvailable() {
		return nil, apierr.BusinessRule(msgCourseNotOpen)
	}
	existing, err := findEnrollment(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierr.BusinessRule(msgAlreadyEnrolled)
	}
	if c.IsFull() {
		return nil, apierr.BusinessRule(msgCourseFull)
	}
	if !c.IsEnrollmentOpen(now) {
		return nil, apierr.BusinessRule(msgEnrollmentClosed)
	}

	enrollment := course.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: now,
		Progress:   0,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.BusinessRule(msgAlreadyEnrolled)
			}
			return errors.Wrap(err, "create enrollment")
		}

		res := tx.Model(&course.Course{}).
			Where("id = ?", courseID).
			Where("enrollment_max_students IS NULL OR enrollment_current_students < enrollment_max_students").
			Updates(map[string]interface{}{
				"enrollment_current_students": gorm.Expr("enrollment_current_students + 1"),
				"total_students":              gorm.Expr("total_students + 1"),
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "increment course counters")
		}
		if res.RowsAffected == 0 {
			return apierr.BusinessRule(msgCourseFull)
		}

		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&course.WishlistItem{}).Error
		return errors.Wrap(err, "clear wishlist entry")
	})
	if err != nil {
		return nil, err
	}

	enrollment.Course = c
	return &enrollment, nil
}

// IsEnrolled reports whether the user has an enrollment for the course.
func IsEnrolled(db *gorm.DB, userID, courseID uint) (bool, error) {
	e, err := findEnrollment(db, userID, courseID)
	return e != nil, err
}

// ListEnrollments returns the user's enrollments in enrollment order.
func ListEnrollments(db *gorm.DB, userID uint) ([]course.Enrollment, error) {
	var enrollments []course.Enrollment
	err := db.Where("user_id = ?", userID).
		Preload("Course").
		Order("enrolled_at asc, id asc").
		Find(&enrollments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	return enrollments, nil
}
