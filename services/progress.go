package services

import (
	"coursemart/apierr"
	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CompleteLesson records a finished lesson and refreshes the enrollment's
// progress. Repeating a lesson is harmless.
func CompleteLesson(db *gorm.DB, userID, courseID, lessonID uint) (*course.Enrollment, error) {
	var enrollment course.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.BusinessRule(msgNotEnrolled)
			}
			return errors.Wrap(err, "lock enrollment")
		}

		var lesson course.Lesson
		if err := tx.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
			return notFoundOr(err, msgLessonNotFound, "load lesson")
		}

		var c course.Course
		if err := tx.Select("id", "total_lessons").First(&c, courseID).Error; err != nil {
			return notFoundOr(err, msgCourseNotFound, "load course")
		}

		if !enrollment.CompleteLesson(lessonID, c.TotalLessons) {
			return nil
		}
		err = tx.Model(&enrollment).Updates(map[string]interface{}{
			"completed_lessons": enrollment.CompletedLessons,
			"progress":          enrollment.Progress,
		}).Error
		return errors.Wrap(err, "save progress")
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetCourseProgress returns the progress percentage, 0 when not enrolled.
func GetCourseProgress(db *gorm.DB, userID, courseID uint) (int, error) {
	e, err := findEnrollment(db, userID, courseID)
	if err != nil || e == nil {
		return 0, err
	}
	return e.Progress, nil
}
