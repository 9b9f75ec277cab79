package services

import (
	"strconv"
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/course"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseInput is the editable part of a course.
type CourseInput struct {
	Title               string
	Description         string
	ShortDescription    string
	Category            string
	Subcategory         string
	Level               string
	Language            string
	Price               decimal.Decimal
	OriginalPrice       *decimal.Decimal
	Currency            string
	Requirements        []string
	LearningOutcomes    []string
	TargetAudience      []string
	Tags                []string
	MaxStudents         *int
	EnrollmentDeadline  *time.Time
	StartDate           *time.Time
	EndDate             *time.Time
	CertificatesEnabled *bool
	CertificateTemplate string
	CompletionRate      *float64
	MinimumScore        *float64
	MetaTitle           string
	MetaDescription     string
}

func (in CourseInput) validate() error {
	if !course.IsValidCategory(in.Category) {
		return apierr.Validation("category", "Invalid category")
	}
	if !course.IsValidLevel(in.Level) {
		return apierr.Validation("level", "Invalid level")
	}
	if in.Price.IsNegative() {
		return apierr.Validation("price", "Price cannot be negative")
	}
	if in.OriginalPrice != nil && in.OriginalPrice.LessThan(in.Price) {
		return apierr.Validation("original_price", "Original price must be greater than or equal to the price")
	}
	if in.MaxStudents != nil && *in.MaxStudents < 1 {
		return apierr.Validation("max_students", "Max students must be at least 1")
	}
	if in.CompletionRate != nil && (*in.CompletionRate < 0 || *in.CompletionRate > 100) {
		return apierr.Validation("completion_rate", "Completion rate must be between 0 and 100")
	}
	if in.MinimumScore != nil && (*in.MinimumScore < 0 || *in.MinimumScore > 100) {
		return apierr.Validation("minimum_score", "Minimum score must be between 0 and 100")
	}
	return nil
}

func (in CourseInput) apply(c *course.Course) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.ShortDescription = in.ShortDescription
	c.Category = in.Category
	c.Subcategory = in.Subcategory
	c.Level = in.Level
	if in.Language != "" {
		c.Language = in.Language
	}
	c.Price = in.Price
	c.OriginalPrice = decimal.NullDecimal{}
	if in.OriginalPrice != nil {
		c.OriginalPrice = decimal.NewNullDecimal(*in.OriginalPrice)
	}
	if in.Currency != "" {
		c.Currency = strings.ToUpper(in.Currency)
	}
	c.Requirements = datatypes.JSONSlice[string](in.Requirements)
	c.LearningOutcomes = datatypes.JSONSlice[string](in.LearningOutcomes)
	c.TargetAudience = datatypes.JSONSlice[string](in.TargetAudience)
	c.Tags = datatypes.JSONSlice[string](normalizeTags(in.Tags))
	c.Enrollment.MaxStudents = in.MaxStudents
	c.Enrollment.EnrollmentDeadline = in.EnrollmentDeadline
	c.Enrollment.StartDate = in.StartDate
	c.Enrollment.EndDate = in.EndDate
	if in.CertificatesEnabled != nil {
		c.Certificates.Enabled = *in.CertificatesEnabled
	}
	if in.CertificateTemplate != "" {
		c.Certificates.Template = in.CertificateTemplate
	}
	if in.CompletionRate != nil {
		c.Certificates.Requirements.CompletionRate = *in.CompletionRate
	}
	if in.MinimumScore != nil {
		c.Certificates.Requirements.MinimumScore = *in.MinimumScore
	}
	c.SEO.MetaTitle = in.MetaTitle
	c.SEO.MetaDescription = in.MetaDescription
	c.IsFree = c.Price.IsZero()
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// CreateCourse stores a draft course owned by the actor.
func CreateCourse(db *gorm.DB, actorID uint, in CourseInput) (*course.Course, error) {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(models.RoleInstructor, models.RoleAdmin) {
		return nil, apierr.Forbidden("Only instructors can create courses")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := course.Course{InstructorID: actor.ID}
	c.Certificates.Enabled = true
	in.apply(&c)
	c.ApplyDefaults()

	slug, err := uniqueSlug(db, c.Title, 0)
	if err != nil {
		return nil, err
	}
	c.Slug = slug

	if err := db.Create(&c).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Wrap(err, "create course")
		}
		// another course took the slug between the check and the insert
		c.Slug = slugWithSuffix(slug)
		if err := db.Create(&c).Error; err != nil {
			return nil, errors.Wrap(err, "create course")
		}
	}
	return &c, nil
}

// UpdateCourse replaces the editable fields. The slug follows the title.
func UpdateCourse(db *gorm.DB, actorID, courseID uint, in CourseInput) (*course.Course, error) {
	c, err := loadCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := canManage(db, actorID, c); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.MaxStudents != nil && *in.MaxStudents < c.Enrollment.CurrentStudents {
		return nil, apierr.Validation("max_students", "Max students cannot be lower than the current enrollment")
	}

	oldTitle := c.Title
	in.apply(c)
	if c.Title != oldTitle {
		slug, err := uniqueSlug(db, c.Title, c.ID)
		if err != nil {
			return nil, err
		}
		c.Slug = slug
	}

	err = db.Model(c).Select(
		"title", "slug", "description", "short_description", "category", "subcategory", "level",
		"language", "price", "original_price", "currency", "is_free", "requirements",
		"learning_outcomes", "target_audience", "tags", "enrollment_max_students",
		"enrollment_enrollment_deadline", "enrollment_start_date", "enrollment_end_date",
		"certificates_enabled", "certificates_template", "certificates_req_completion_rate",
		"certificates_req_minimum_score", "seo_meta_title", "seo_meta_description",
	).Updates(c).Error
	if err != nil {
		return nil, errors.Wrap(err, "update course")
	}
	return c, nil
}

func uniqueSlug(db *gorm.DB, title string, exceptID uint) (string, error) {
	slug := course.Slugify(title)
	if slug == "" {
		slug = "course"
	}
	var count int64
	err := db.Unscoped().Model(&course.Course{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error
	if err != nil {
		return "", errors.Wrap(err, "check slug")
	}
	if count > 0 {
		return slugWithSuffix(slug), nil
	}
	return slug, nil
}

func slugWithSuffix(slug string) string {
	return slug + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func managedCourse(db *gorm.DB, actorID, courseID uint) (*course.Course, error) {
	c, err := loadCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := canManage(db, actorID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ArchiveCourse is the course "delete": the row stays for enrollments,
// orders and certificates that reference it.
func ArchiveCourse(db *gorm.DB, actorID, courseID uint) (*course.Course, error) {
	c, err := managedCourse(db, actorID, courseID)
	if err != nil {
		return nil, err
	}
	c.Status = course.StatusArchived
	c.IsPublished = false
	c.IsFeatured = false
	err = db.Model(c).Select("status", "is_published", "is_featured").Updates(c).Error
	if err != nil {
		return nil, errors.Wrap(err, "archive course")
	}
	return c, nil
}

func PublishCourse(db *gorm.DB, actorID, courseID uint) (*course.Course, error) {
	c, err := managedCourse(db, actorID, courseID)
	if err != nil {
		return nil, err
	}
	if c.TotalLessons == 0 {
		return nil, apierr.BusinessRule("Course must have at least one lesson before publishing")
	}
	c.Status = course.StatusPublished
	c.IsPublished = true
	if err := db.Model(c).Select("status", "is_published").Updates(c).Error; err != nil {
		return nil, errors.Wrap(err, "publish course")
	}
	return c, nil
}

// SetFeatured toggles the featured flag. Admin only.
func SetFeatured(db *gorm.DB, actorID, courseID uint, featured bool) (*course.Course, error) {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apierr.Forbidden("Only admins can feature courses")
	}
	c, err := loadCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if featured && !c.IsAvailable() {
		return nil, apierr.BusinessRule("Only published courses can be featured")
	}
	c.IsFeatured = featured
	if err := db.Model(c).Update("is_featured", featured).Error; err != nil {
		return nil, errors.Wrap(err, "feature course")
	}
	return c, nil
}

// SetMedia replaces the thumbnail and preview references. A nil argument
// leaves that reference unchanged, an empty one clears it.
func SetMedia(db *gorm.DB, actorID, courseID uint, thumbnail *models.MediaRef, preview *models.VideoRef) (*course.Course, error) {
	c, err := managedCourse(db, actorID, courseID)
	if err != nil {
		return nil, err
	}
	if thumbnail != nil {
		c.Thumbnail = *thumbnail
	}
	if preview != nil {
		c.PreviewVideo = *preview
	}
	err = db.Model(c).Select(
		"thumbnail_public_id", "thumbnail_url", "preview_public_id", "preview_url", "preview_duration",
	).Updates(c).Error
	if err != nil {
		return nil, errors.Wrap(err, "save media")
	}
	return c, nil
}

// CourseDetail is a course as seen by one viewer.
type CourseDetail struct {
	Course       *course.Course `json:"course"`
	IsEnrolled   bool           `json:"is_enrolled"`
	UserProgress int            `json:"user_progress"`
}

// GetCourse loads a course by numeric id or slug with its curriculum and
// counts the view. Unpublished courses are only visible to their managers.
// Lesson content is withheld from viewers who are not enrolled unless the
// lesson is a preview.
func GetCourse(db *gorm.DB, idOrSlug string, viewerID uint) (*CourseDetail, error) {
	q := db.Preload("Instructor").
		Preload("Sections", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc, id asc") }).
		Preload("Sections.Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc, id asc") })

	var c course.Course
	var err error
	if id, convErr := strconv.ParseUint(idOrSlug, 10, 64); convErr == nil {
		err = q.First(&c, uint(id)).Error
	} else {
		err = q.Where("slug = ?", idOrSlug).First(&c).Error
	}
	if err != nil {
		return nil, notFoundOr(err, msgCourseNotFound, "load course")
	}

	detail := &CourseDetail{Course: &c}
	manager := false
	if viewerID != 0 {
		if viewer, err := LoadActiveUser(db, viewerID); err == nil {
			manager = c.IsManagedBy(viewer)
		}
		e, err := findEnrollment(db, viewerID, c.ID)
		if err != nil {
			return nil, err
		}
		if e != nil {
			detail.IsEnrolled = true
			detail.UserProgress = e.Progress
		}
	}
	if !c.IsAvailable() && !manager {
		return nil, apierr.NotFound(msgCourseNotFound)
	}

	if !detail.IsEnrolled && !manager {
		for i := range c.Sections {
			for j := range c.Sections[i].Lessons {
				if !c.Sections[i].Lessons[j].IsPreview {
					c.Sections[i].Lessons[j].Content = nil
					c.Sections[i].Lessons[j].Resources = nil
				}
			}
		}
	}

	err = db.Model(&course.Course{}).Where("id = ?", c.ID).
		UpdateColumn("analytics_views", gorm.Expr("analytics_views + 1")).Error
	if err != nil {
		return nil, errors.Wrap(err, "count course view")
	}
	c.Analytics.Views++
	return detail, nil
}
