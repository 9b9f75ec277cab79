// Package services holds the enrollment, rating, certificate and order
// lifecycle rules. Every function takes the database handle explicitly so
// callers decide whether it runs against the global connection or a test
// database.
package services

import (
	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgUserNotFound     = "User not found"
	msgCourseNotFound   = "Course not found"
	msgLessonNotFound   = "Lesson not found"
	msgSectionNotFound  = "Section not found"
	msgReviewNotFound   = "Review not found"
	msgOrderNotFound    = "Order not found"
	msgCertNotFound     = "Certificate not found"
	msgCourseNotOpen    = "Course is not available for enrollment"
	msgAlreadyEnrolled  = "You are already enrolled in this course"
	msgCourseFull       = "Course is full"
	msgEnrollmentClosed = "Enrollment is closed for this course"
	msgNotEnrolled      = "You are not enrolled in this course"
	msgCertIssued       = "Certificate already issued"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NormalizePage clamps page and limit to usable values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// NewPagination derives the page count and neighbours from a total.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFoundOr turns a missing row into a NotFound error and wraps anything else.
func notFoundOr(err error, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound(msg)
	}
	return errors.Wrap(err, op)
}

// LoadActiveUser returns the user when it exists and has not been deactivated.
func LoadActiveUser(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "load user")
	}
	if !user.IsActive {
		return nil, apierr.NotFound(msgUserNotFound)
	}
	return &user, nil
}

func loadCourse(db *gorm.DB, courseID uint) (*course.Course, error) {
	var c course.Course
	if err := db.First(&c, courseID).Error; err != nil {
		return nil, notFoundOr(err, msgCourseNotFound, "load course")
	}
	return &c, nil
}

func findEnrollment(db *gorm.DB, userID, courseID uint) (*course.Enrollment, error) {
	var e course.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load enrollment")
	}
	return &e, nil
}

// canManage loads the actor and checks they own the course or are an admin.
func canManage(db *gorm.DB, actorID uint, c *course.Course) (*models.User, error) {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return nil, err
	}
	if !c.IsManagedBy(actor) {
		return nil, apierr.Forbidden("You are not allowed to manage this course")
	}
	return actor, nil
}
