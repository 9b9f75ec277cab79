package services

import (
	"strings"

	"coursemart/apierr"
	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SectionInput struct {
	Title       string
	Description string
	Order       int
}

type LessonInput struct {
	Title       string
	Description string
	Type        string
	Content     map[string]interface{}
	Order       int
	IsPreview   bool
	Duration    int
	Resources   []course.Resource
}

func (in LessonInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apierr.Validation("title", "Lesson title is required")
	}
	if !course.IsValidLessonType(in.Type) {
		return apierr.Validation("type", "Lesson type must be one of video, text, quiz, assignment")
	}
	if in.Duration < 0 {
		return apierr.Validation("duration", "Duration cannot be negative")
	}
	return nil
}

func (in LessonInput) apply(l *course.Lesson) {
	l.Title = strings.TrimSpace(in.Title)
	l.Description = in.Description
	l.Type = in.Type
	l.Content = datatypes.JSONMap(in.Content)
	l.Position = in.Order
	l.IsPreview = in.IsPreview
	l.Duration = in.Duration
	l.Resources = datatypes.JSONSlice[course.Resource](in.Resources)
}

func AddSection(db *gorm.DB, actorID, courseID uint, in SectionInput) (*course.Section, error) {
	if _, err := managedCourse(db, actorID, courseID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apierr.Validation("title", "Section title is required")
	}
	section := course.Section{
		CourseID:    courseID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Position:    in.Order,
	}
	if err := db.Create(&section).Error; err != nil {
		return nil, errors.Wrap(err, "create section")
	}
	return &section, nil
}

// AddLesson appends a lesson to a section and refreshes the course totals in
// the same transaction.
func AddLesson(db *gorm.DB, actorID, courseID, sectionID uint, in LessonInput) (*course.Lesson, error) {
	if _, err := managedCourse(db, actorID, courseID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var section course.Section
	if err := db.Where("id = ? AND course_id = ?", sectionID, courseID).First(&section).Error; err != nil {
		return nil, notFoundOr(err, msgSectionNotFound, "load section")
	}

	lesson := course.Lesson{SectionID: sectionID, CourseID: courseID}
	in.apply(&lesson)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return errors.Wrap(err, "create lesson")
		}
		return recalculateTotals(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func UpdateLesson(db *gorm.DB, actorID, courseID, lessonID uint, in LessonInput) (*course.Lesson, error) {
	if _, err := managedCourse(db, actorID, courseID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	var lesson course.Lesson
	if err := db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return nil, notFoundOr(err, msgLessonNotFound, "load lesson")
	}
	in.apply(&lesson)

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&lesson).Select(
			"title", "description", "type", "content", "position", "is_preview", "duration", "resources",
		).Updates(&lesson).Error
		if err != nil {
			return errors.Wrap(err, "update lesson")
		}
		return recalculateTotals(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func DeleteLesson(db *gorm.DB, actorID, courseID, lessonID uint) error {
	if _, err := managedCourse(db, actorID, courseID); err != nil {
		return err
	}
	var lesson course.Lesson
	if err := db.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
		return notFoundOr(err, msgLessonNotFound, "load lesson")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&lesson).Error; err != nil {
			return errors.Wrap(err, "delete lesson")
		}
		return recalculateTotals(tx, courseID)
	})
}

// recalculateTotals recomputes the course duration and lesson count from the
// live lessons.
func recalculateTotals(tx *gorm.DB, courseID uint) error {
	var totals struct {
		Duration int
		Lessons  int
	}
	err := tx.Model(&course.Lesson{}).
		Select("COALESCE(SUM(duration), 0) AS duration, COUNT(*) AS lessons").
		Where("course_id = ?", courseID).
		Scan(&totals).Error
	if err != nil {
		return errors.Wrap(err, "sum lessons")
	}
	err = tx.Model(&course.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"total_duration": totals.Duration,
		"total_lessons":  totals.Lessons,
	}).Error
	return errors.Wrap(err, "save course totals")
}
