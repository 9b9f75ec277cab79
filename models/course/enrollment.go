package course

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnrollmentCertificate mirrors the certificate issued for this enrollment.
type EnrollmentCertificate struct {
	Issued        bool       `json:"issued" gorm:"default:false"`
	IssuedAt      *time.Time `json:"issued_at"`
	CertificateID string     `json:"certificate_id" gorm:"size:80"`
}

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID           uint                      `json:"user_id" gorm:"uniqueIndex:idx_enrollments_user_course;not null"`
	CourseID         uint                      `json:"course_id" gorm:"uniqueIndex:idx_enrollments_user_course;index;not null"`
	Course           *Course                   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	EnrolledAt       time.Time                 `json:"enrolled_at" gorm:"not null"`
	Progress         int                       `json:"progress" gorm:"default:0"` // 0-100
	CompletedLessons datatypes.JSONSlice[uint] `json:"completed_lessons"`
	Certificate      EnrollmentCertificate     `json:"certificate" gorm:"embedded;embeddedPrefix:certificate_"`
}

func (e *Enrollment) IsCompleted() bool { return e.Progress >= 100 }

func (e *Enrollment) HasCompleted(lessonID uint) bool {
	for _, id := range e.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// CompleteLesson records the lesson once and refreshes progress against the
// course's current lesson count. It returns false when the lesson was
// already recorded.
func (e *Enrollment) CompleteLesson(lessonID uint, totalLessons int) bool {
	if e.HasCompleted(lessonID) {
		e.Progress = ProgressFor(len(e.CompletedLessons), totalLessons)
		return false
	}
	e.CompletedLessons = append(e.CompletedLessons, lessonID)
	e.Progress = ProgressFor(len(e.CompletedLessons), totalLessons)
	return true
}

// ProgressFor is the rounded completion percentage, clamped to [0,100].
func ProgressFor(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(float64(completed) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}
