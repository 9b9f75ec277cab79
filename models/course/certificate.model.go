package course

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type State string

const (
	StateIssued  State = "issued"
	StateRevoked State = "revoked"
)

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	CertificateID     string            `json:"certificate_id" gorm:"uniqueIndex;size:80;not null"`
	UserID            uint              `json:"user_id" gorm:"uniqueIndex:idx_certificates_user_course;not null"`
	CourseID          uint              `json:"course_id" gorm:"uniqueIndex:idx_certificates_user_course;index;not null"`
	User              *models.User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course            *Course           `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CompletionDate    time.Time         `json:"completion_date" gorm:"not null"`
	IssuedDate        time.Time         `json:"issued_date" gorm:"index;not null"`
	Grade             string            `json:"grade" gorm:"size:2"`
	Score             float64           `json:"score"`
	CompletionRate    float64           `json:"completion_rate"`
	TotalLessons      int               `json:"total_lessons"`
	CompletedLessons  int               `json:"completed_lessons"`
	TotalDuration     int               `json:"total_duration"`
	CompletedDuration int               `json:"completed_duration"`
	CertificateURL    string            `json:"certificate_url"`
	VerificationURL   string            `json:"verification_url"`
	CertificatePdf    models.MediaRef   `json:"certificate_pdf" gorm:"embedded;embeddedPrefix:pdf_"`
	Template          string            `json:"template" gorm:"default:'default'"`
	Metadata          datatypes.JSONMap `json:"metadata"`
	IsVerified        bool              `json:"is_verified" gorm:"default:false"`
	VerifiedAt        *time.Time        `json:"verified_at"`
	VerifiedBy        *uint             `json:"verified_by"`
	State             State             `json:"state" gorm:"size:16;index;default:'issued'"`
	RevokedAt         *time.Time        `json:"revoked_at"`
	RevokedBy         *uint             `json:"revoked_by"`
	RevocationReason  string            `json:"revocation_reason"`
}

// NewCertificateID builds a fresh public identifier: CERT-<unix ms>-<32 hex>.
func NewCertificateID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("CERT-%d-%s", now.UnixMilli(), strings.ToUpper(random))
}

var gradeScale = []struct {
	min   float64
	grade string
}{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{67, "D+"}, {60, "D"},
}

func GradeFor(score float64) string {
	for _, g := range gradeScale {
		if score >= g.min {
			return g.grade
		}
	}
	return "F"
}

func (c *Certificate) IsActive() bool { return c.State == StateIssued }

func (c *Certificate) IsRevoked() bool { return c.RevokedAt != nil }

func (c *Certificate) IsValid() bool { return c.IsActive() && !c.IsRevoked() }

func (c *Certificate) AgeInDays(now time.Time) int {
	if c.IssuedDate.IsZero() {
		return 0
	}
	return int(now.Sub(c.IssuedDate).Hours() / 24)
}

// Verify marks the certificate verified. Repeat calls keep the first
// verifier and timestamp and return false.
func (c *Certificate) Verify(verifier uint, now time.Time) bool {
	if c.IsVerified {
		return false
	}
	c.IsVerified = true
	c.VerifiedAt = &now
	c.VerifiedBy = &verifier
	return true
}

// Revoke sets the revocation fields together. Revoking again overwrites them.
func (c *Certificate) Revoke(revoker uint, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apierr.Validation("reason", "Revocation reason is required")
	}
	c.State = StateRevoked
	c.RevokedAt = &now
	c.RevokedBy = &revoker
	c.RevocationReason = reason
	return nil
}

// Reactivate clears every revocation field. Verification is left untouched.
func (c *Certificate) Reactivate() {
	c.State = StateIssued
	c.RevokedAt = nil
	c.RevokedBy = nil
	c.RevocationReason = ""
}

func (c Certificate) MarshalJSON() ([]byte, error) {
	type plain Certificate
	return json.Marshal(struct {
		plain
		IsActive  bool `json:"is_active"`
		IsRevoked bool `json:"is_revoked"`
		IsValid   bool `json:"is_valid"`
	}{
		plain:     plain(c),
		IsActive:  c.IsActive(),
		IsRevoked: c.IsRevoked(),
		IsValid:   c.IsValid(),
	})
}
