package services

import (
	"fmt"
	"testing"
	"time"

	"coursemart/database"
	"coursemart/models"
	"coursemart/models/course"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

var userSeq int

func newUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		FirstName: "User",
		LastName:  fmt.Sprint(userSeq),
		Email:     fmt.Sprintf("user%d@example.com", userSeq),
		Password:  "hashed",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type courseOpt func(c *course.Course)

func withCapacity(limit int) courseOpt {
	return func(c *course.Course) { c.Enrollment.MaxStudents = &limit }
}

func withPrice(p int64) courseOpt {
	return func(c *course.Course) { c.Price = decimal.NewFromInt(p) }
}

func unpublished() courseOpt {
	return func(c *course.Course) {
		c.IsPublished = false
		c.Status = course.StatusDraft
	}
}

// newCourse inserts a published course with one section of two lessons.
func newCourse(t *testing.T, db *gorm.DB, instructor *models.User, opts ...courseOpt) *course.Course {
	t.Helper()
	userSeq++
	c := &course.Course{
		Title:        fmt.Sprintf("Course %d", userSeq),
		Slug:         fmt.Sprintf("course-%d", userSeq),
		Description:  "A course about things",
		InstructorID: instructor.ID,
		Category:     "programming",
		Level:        "beginner",
		Price:        decimal.NewFromInt(100),
		IsPublished:  true,
		Status:       course.StatusPublished,
	}
	c.Certificates.Enabled = true
	c.ApplyDefaults()
	c.Status = course.StatusPublished
	for _, opt := range opts {
		opt(c)
	}
	require.NoError(t, db.Create(c).Error)

	section := &course.Section{CourseID: c.ID, Title: "Intro"}
	require.NoError(t, db.Create(section).Error)
	for i := 1; i <= 2; i++ {
		lesson := &course.Lesson{SectionID: section.ID, CourseID: c.ID, Title: fmt.Sprintf("L%d", i), Type: "video", Duration: 10 * i, Position: i}
		require.NoError(t, db.Create(lesson).Error)
	}
	require.NoError(t, recalculateTotals(db, c.ID))
	return reloadCourse(t, db, c.ID)
}

func reloadCourse(t *testing.T, db *gorm.DB, id uint) *course.Course {
	t.Helper()
	var c course.Course
	require.NoError(t, db.Preload("Sections.Lessons").First(&c, id).Error)
	return &c
}

func lessonIDs(c *course.Course) []uint {
	var ids []uint
	for _, s := range c.Sections {
		for _, l := range s.Lessons {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func setup(t *testing.T) (*gorm.DB, *models.User) {
	t.Helper()
	db := database.OpenTestDB(t)
	return db, newUser(t, db, models.RoleInstructor)
}
