package services

import (
	"fmt"
	"time"

	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/course"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IssueInput carries the externally assessed score for a certificate.
// CompletionRate is an optional claim; the certificate always records the
// enrollment's own progress and a claim above it is rejected.
type IssueInput struct {
	ActorID        uint
	UserID         uint
	CourseID       uint
	Score          float64
	CompletionRate *float64
	Template       string
	Metadata       map[string]interface{}
	BaseURL        string
	Now            time.Time
}

// IssueCertificate creates the one certificate allowed per enrollment and
// flags the enrollment in the same transaction.
func IssueCertificate(db *gorm.DB, in IssueInput) (*course.Certificate, error) {
	if in.Score < 0 || in.Score > 100 {
		return nil, apierr.Validation("score", "Score must be between 0 and 100")
	}
	if in.CompletionRate != nil && (*in.CompletionRate < 0 || *in.CompletionRate > 100) {
		return nil, apierr.Validation("completion_rate", "Completion rate must be between 0 and 100")
	}

	c, err := loadCourse(db, in.CourseID)
	if err != nil {
		return nil, err
	}
	if !c.Certificates.Enabled {
		return nil, apierr.BusinessRule("Certificates are not enabled for this course")
	}
	enrollment, err := findEnrollment(db, in.UserID, in.CourseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, apierr.BusinessRule("User is not enrolled in this course")
	}
	actor, err := LoadActiveUser(db, in.ActorID)
	if err != nil {
		return nil, err
	}
	if actor.ID != in.UserID && !c.IsManagedBy(actor) {
		return nil, apierr.Forbidden("You are not allowed to issue this certificate")
	}

	progress := float64(enrollment.Progress)
	if in.CompletionRate != nil && *in.CompletionRate > progress {
		return nil, apierr.BusinessRule(fmt.Sprintf("Completion rate cannot exceed the recorded progress of %d%%", enrollment.Progress))
	}
	req := c.Certificates.Requirements
	if progress < req.CompletionRate {
		return nil, apierr.BusinessRule(fmt.Sprintf("Completion rate must be at least %g%%", req.CompletionRate))
	}
	if in.Score < req.MinimumScore {
		return nil, apierr.BusinessRule(fmt.Sprintf("Score must be at least %g", req.MinimumScore))
	}

	var existing int64
	if err := db.Model(&course.Certificate{}).Where("user_id = ? AND course_id = ?", in.UserID, in.CourseID).Count(&existing).Error; err != nil {
		return nil, errors.Wrap(err, "check existing certificate")
	}
	if existing > 0 {
		return nil, apierr.BusinessRule(msgCertIssued)
	}

	completedDuration, err := completedDuration(db, in.CourseID, enrollment.CompletedLessons)
	if err != nil {
		return nil, err
	}

	template := in.Template
	if template == "" {
		template = c.Certificates.Template
	}
	certID := course.NewCertificateID(in.Now)
	cert := course.Certificate{
		CertificateID:     certID,
		UserID:            in.UserID,
		CourseID:          in.CourseID,
		CompletionDate:    in.Now,
		IssuedDate:        in.Now,
		Grade:             course.GradeFor(in.Score),
		Score:             in.Score,
		CompletionRate:    progress,
		TotalLessons:      c.TotalLessons,
		CompletedLessons:  len(enrollment.CompletedLessons),
		TotalDuration:     c.TotalDuration,
		CompletedDuration: completedDuration,
		CertificateURL:    in.BaseURL + "/certificates/" + certID,
		VerificationURL:   in.BaseURL + "/certificate/verify/" + certID,
		Template:          template,
		Metadata:          datatypes.JSONMap(in.Metadata),
		State:             course.StateIssued,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cert).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.BusinessRule(msgCertIssued)
			}
			return errors.Wrap(err, "create certificate")
		}
		err := tx.Model(&course.Enrollment{}).Where("id = ?", enrollment.ID).Updates(map[string]interface{}{
			"certificate_issued":         true,
			"certificate_issued_at":      in.Now,
			"certificate_certificate_id": cert.CertificateID,
		}).Error
		return errors.Wrap(err, "flag enrollment certificate")
	})
	if err != nil {
		return nil, err
	}
	cert.Course = c
	return &cert, nil
}

func completedDuration(db *gorm.DB, courseID uint, lessonIDs []uint) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var total int
	err := db.Model(&course.Lesson{}).
		Where("course_id = ? AND id IN ?", courseID, lessonIDs).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&total).Error
	return total, errors.Wrap(err, "sum completed duration")
}

// certificateForManager loads a certificate and checks the actor owns its
// course or is an admin.
func certificateForManager(db *gorm.DB, actorID, id uint) (*course.Certificate, *models.User, error) {
	var cert course.Certificate
	if err := db.First(&cert, id).Error; err != nil {
		return nil, nil, notFoundOr(err, msgCertNotFound, "load certificate")
	}
	c, err := loadCourse(db, cert.CourseID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := canManage(db, actorID, c)
	if err != nil {
		return nil, nil, err
	}
	return &cert, actor, nil
}

// VerifyCertificate marks a certificate verified. Verifying twice keeps the
// first verifier.
func VerifyCertificate(db *gorm.DB, actorID, id uint, now time.Time) (*course.Certificate, error) {
	cert, actor, err := certificateForManager(db, actorID, id)
	if err != nil {
		return nil, err
	}
	if !cert.Verify(actor.ID, now) {
		return cert, nil
	}
	err = db.Model(cert).Updates(map[string]interface{}{
		"is_verified": cert.IsVerified,
		"verified_at": cert.VerifiedAt,
		"verified_by": cert.VerifiedBy,
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "verify certificate")
	}
	return cert, nil
}

func RevokeCertificate(db *gorm.DB, actorID, id uint, reason string, now time.Time) (*course.Certificate, error) {
	cert, actor, err := certificateForManager(db, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := cert.Revoke(actor.ID, reason, now); err != nil {
		return nil, err
	}
	if err := saveRevocation(db, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

func ReactivateCertificate(db *gorm.DB, actorID, id uint) (*course.Certificate, error) {
	cert, _, err := certificateForManager(db, actorID, id)
	if err != nil {
		return nil, err
	}
	cert.Reactivate()
	if err := saveRevocation(db, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// saveRevocation writes state and every revocation field in one statement.
func saveRevocation(db *gorm.DB, cert *course.Certificate) error {
	err := db.Model(cert).Updates(map[string]interface{}{
		"state":             cert.State,
		"revoked_at":        cert.RevokedAt,
		"revoked_by":        cert.RevokedBy,
		"revocation_reason": cert.RevocationReason,
	}).Error
	return errors.Wrap(err, "save certificate state")
}

// LookupCertificate is the public verification query. Revoked certificates
// are reported exactly like unknown ones.
func LookupCertificate(db *gorm.DB, certificateID string) (*course.Certificate, error) {
	var cert course.Certificate
	err := db.Where("certificate_id = ? AND state = ?", certificateID, course.StateIssued).
		Preload("User").
		Preload("Course").
		First(&cert).Error
	if err != nil {
		return nil, notFoundOr(err, msgCertNotFound, "lookup certificate")
	}
	return &cert, nil
}

func ListUserCertificates(db *gorm.DB, userID uint) ([]course.Certificate, error) {
	var certs []course.Certificate
	err := db.Where("user_id = ? AND state = ?", userID, course.StateIssued).
		Preload("Course").
		Order("issued_date desc").
		Find(&certs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list user certificates")
	}
	return certs, nil
}

func ListCourseCertificates(db *gorm.DB, actorID, courseID uint) ([]course.Certificate, error) {
	c, err := loadCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := canManage(db, actorID, c); err != nil {
		return nil, err
	}
	var certs []course.Certificate
	err = db.Where("course_id = ? AND state = ?", courseID, course.StateIssued).
		Preload("User").
		Order("issued_date desc").
		Find(&certs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list course certificates")
	}
	return certs, nil
}
