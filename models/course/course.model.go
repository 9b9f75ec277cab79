package course

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"coursemart/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

var Categories = []string{
	"programming", "data-science", "business", "design", "marketing", "health",
	"music", "photography", "lifestyle", "language", "academic", "other",
}

var Levels = []string{"beginner", "intermediate", "advanced", "all-levels"}

const (
	DefaultCompletionRate = 80
	DefaultMinimumScore   = 70
)

type Distribution struct {
	One   int `json:"one" gorm:"default:0"`
	Two   int `json:"two" gorm:"default:0"`
	Three int `json:"three" gorm:"default:0"`
	Four  int `json:"four" gorm:"default:0"`
	Five  int `json:"five" gorm:"default:0"`
}

func (d *Distribution) Add(stars int) {
	switch stars {
	case 1:
		d.One++
	case 2:
		d.Two++
	case 3:
		d.Three++
	case 4:
		d.Four++
	case 5:
		d.Five++
	}
}

func (d Distribution) Total() int { return d.One + d.Two + d.Three + d.Four + d.Five }

// Rating is derived from the course reviews and never written from a request.
type Rating struct {
	Average      float64      `json:"average" gorm:"default:0"`
	Count        int          `json:"count" gorm:"default:0"`
	Distribution Distribution `json:"distribution" gorm:"embedded;embeddedPrefix:dist_"`
}

// Columns maps the rating onto the course table columns.
func (r Rating) Columns() map[string]interface{} {
	return map[string]interface{}{
		"rating_average":    r.Average,
		"rating_count":      r.Count,
		"rating_dist_one":   r.Distribution.One,
		"rating_dist_two":   r.Distribution.Two,
		"rating_dist_three": r.Distribution.Three,
		"rating_dist_four":  r.Distribution.Four,
		"rating_dist_five":  r.Distribution.Five,
	}
}

type EnrollmentPolicy struct {
	MaxStudents        *int       `json:"max_students"`
	CurrentStudents    int        `json:"current_students" gorm:"default:0"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
}

type CertificateRequirements struct {
	CompletionRate float64 `json:"completion_rate"`
	MinimumScore   float64 `json:"minimum_score"`
}

type CertificatePolicy struct {
	Enabled      bool                    `json:"enabled"`
	Template     string                  `json:"template"`
	Requirements CertificateRequirements `json:"requirements" gorm:"embedded;embeddedPrefix:req_"`
}

type Analytics struct {
	Views int `json:"views" gorm:"default:0"`
}

type SEO struct {
	MetaTitle       string `json:"meta_title" gorm:"size:60"`
	MetaDescription string `json:"meta_description" gorm:"size:160"`
}

type Course struct {
	gorm.Model
	Title            string                      `json:"title" gorm:"size:100;not null"`
	Slug             string                      `json:"slug" gorm:"uniqueIndex;size:150;not null"`
	Description      string                      `json:"description" gorm:"size:2000;not null"`
	ShortDescription string                      `json:"short_description" gorm:"size:200"`
	InstructorID     uint                        `json:"instructor_id" gorm:"index;not null"`
	Instructor       *models.User                `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	Category         string                      `json:"category" gorm:"index;size:30;not null"`
	Subcategory      string                      `json:"subcategory"`
	Level            string                      `json:"level" gorm:"size:20;not null"`
	Language         string                      `json:"language" gorm:"default:'English'"`
	Thumbnail        models.MediaRef             `json:"thumbnail" gorm:"embedded;embeddedPrefix:thumbnail_"`
	PreviewVideo     models.VideoRef             `json:"preview_video" gorm:"embedded;embeddedPrefix:preview_"`
	Price            decimal.Decimal             `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice    decimal.NullDecimal         `json:"original_price" gorm:"type:decimal(10,2)"`
	Currency         string                      `json:"currency" gorm:"size:3;default:'USD'"`
	IsFree           bool                        `json:"is_free" gorm:"default:false"`
	IsPublished      bool                        `json:"is_published" gorm:"index;default:false"`
	IsFeatured       bool                        `json:"is_featured" gorm:"default:false"`
	Status           string                      `json:"status" gorm:"size:20;default:'draft'"`
	Sections         []Section                   `json:"sections,omitempty" gorm:"foreignKey:CourseID"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	LearningOutcomes datatypes.JSONSlice[string] `json:"learning_outcomes"`
	TargetAudience   datatypes.JSONSlice[string] `json:"target_audience"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	TotalDuration    int                         `json:"total_duration" gorm:"default:0"` // minutes
	TotalLessons     int                         `json:"total_lessons" gorm:"default:0"`
	TotalStudents    int                         `json:"total_students" gorm:"default:0"`
	Rating           Rating                      `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	Certificates     CertificatePolicy           `json:"certificates" gorm:"embedded;embeddedPrefix:certificates_"`
	Enrollment       EnrollmentPolicy            `json:"enrollment" gorm:"embedded;embeddedPrefix:enrollment_"`
	Analytics        Analytics                   `json:"analytics" gorm:"embedded;embeddedPrefix:analytics_"`
	SEO              SEO                         `json:"seo" gorm:"embedded;embeddedPrefix:seo_"`
}

// ApplyDefaults fills the policy defaults of a course that is about to be created.
func (c *Course) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "English"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.Certificates.Template == "" {
		c.Certificates.Template = "default"
	}
	if c.Certificates.Requirements.CompletionRate == 0 {
		c.Certificates.Requirements.CompletionRate = DefaultCompletionRate
	}
	if c.Certificates.Requirements.MinimumScore == 0 {
		c.Certificates.Requirements.MinimumScore = DefaultMinimumScore
	}
	c.IsFree = c.Price.IsZero()
}

// IsAvailable reports whether learners may enroll or buy the course at all.
func (c *Course) IsAvailable() bool {
	return c.IsPublished && c.Status == StatusPublished
}

func (c *Course) IsFull() bool {
	limit := c.Enrollment.MaxStudents
	return limit != nil && c.Enrollment.CurrentStudents >= *limit
}

func (c *Course) IsEnrollmentOpen(now time.Time) bool {
	if c.IsFull() {
		return false
	}
	deadline := c.Enrollment.EnrollmentDeadline
	return deadline == nil || !now.After(*deadline)
}

func (c *Course) URL() string { return "/courses/" + c.Slug }

func (c *Course) DiscountPercentage() int {
	if !c.OriginalPrice.Valid || !c.OriginalPrice.Decimal.GreaterThan(c.Price) {
		return 0
	}
	orig := c.OriginalPrice.Decimal
	pct := orig.Sub(c.Price).Div(orig).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

func (c *Course) EnrollmentPercentage() int {
	limit := c.Enrollment.MaxStudents
	if limit == nil || *limit <= 0 {
		return 0
	}
	return int(math.Round(float64(c.Enrollment.CurrentStudents) / float64(*limit) * 100))
}

// IsManagedBy reports whether the user may mutate the course.
func (c *Course) IsManagedBy(user *models.User) bool {
	return user != nil && (user.IsAdmin() || c.InstructorID == user.ID)
}

// RecalculateTotals refreshes the curriculum totals from the loaded sections.
func (c *Course) RecalculateTotals() {
	c.TotalDuration, c.TotalLessons = CalculateTotals(c.Sections)
}

func (c Course) MarshalJSON() ([]byte, error) {
	type plain Course
	return json.Marshal(struct {
		plain
		URL                  string `json:"url"`
		DiscountPercentage   int    `json:"discount_percentage"`
		EnrollmentPercentage int    `json:"enrollment_percentage"`
		IsFull               bool   `json:"is_full"`
	}{
		plain:                plain(c),
		URL:                  c.URL(),
		DiscountPercentage:   c.DiscountPercentage(),
		EnrollmentPercentage: c.EnrollmentPercentage(),
		IsFull:               c.IsFull(),
	})
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and collapses every run of other characters into a dash.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

func IsValidCategory(category string) bool { return contains(Categories, category) }

func IsValidLevel(level string) bool { return contains(Levels, level) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
