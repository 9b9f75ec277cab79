package services

import (
	"strings"

	"coursemart/models/course"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CourseFilter narrows the public catalogue.
type CourseFilter struct {
	Category  string
	Level     string
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
	Sort      string // price, rating, students, date
	Order     string // asc, desc
	Page      int
	Limit     int
}

var sortColumns = map[string]string{
	"price":    "price",
	"rating":   "rating_average",
	"students": "total_students",
	"date":     "created_at",
}

// jsonText casts a JSON column to text in the current dialect.
func jsonText(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "mysql" {
		return "CAST(" + column + " AS CHAR)"
	}
	return "CAST(" + column + " AS TEXT)"
}

func published(db *gorm.DB) *gorm.DB {
	return db.Model(&course.Course{}).Where("is_published = ? AND status = ?", true, course.StatusPublished)
}

// ListCourses returns one page of published courses.
func ListCourses(db *gorm.DB, f CourseFilter) ([]course.Course, Pagination, error) {
	page, limit := NormalizePage(f.Page, f.Limit)

	q := published(db)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinRating != nil {
		q = q.Where("rating_average >= ?", *f.MinRating)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER("+jsonText(db, "tags")+") LIKE ?)", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, errors.Wrap(err, "count courses")
	}

	column, ok := sortColumns[f.Sort]
	if !ok {
		column = sortColumns["date"]
	}
	direction := "desc"
	if strings.ToLower(f.Order) == "asc" {
		direction = "asc"
	}

	var courses []course.Course
	err := q.Preload("Instructor").
		Order(column + " " + direction).
		Order("id " + direction).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list courses")
	}
	return courses, NewPagination(page, limit, total), nil
}

// FeaturedCourses returns published featured courses, best rated first.
func FeaturedCourses(db *gorm.DB, limit int) ([]course.Course, error) {
	_, limit = NormalizePage(1, limit)
	var courses []course.Course
	err := published(db).Where("is_featured = ?", true).
		Preload("Instructor").
		Order("rating_average desc, total_students desc, id asc").
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return nil, errors.Wrap(err, "featured courses")
	}
	return courses, nil
}

func CoursesByCategory(db *gorm.DB, category string, page, limit int) ([]course.Course, Pagination, error) {
	return ListCourses(db, CourseFilter{Category: category, Sort: "rating", Order: "desc", Page: page, Limit: limit})
}

// InstructorCourses lists an instructor's courses. Drafts and archived
// courses are included only for the instructor themself or an admin.
func InstructorCourses(db *gorm.DB, instructorID, viewerID uint) ([]course.Course, error) {
	includeAll := viewerID == instructorID
	if !includeAll && viewerID != 0 {
		if viewer, err := LoadActiveUser(db, viewerID); err == nil {
			includeAll = viewer.IsAdmin()
		}
	}

	q := db.Model(&course.Course{})
	if !includeAll {
		q = published(db)
	}
	var courses []course.Course
	err := q.Where("instructor_id = ?", instructorID).Order("created_at desc, id desc").Find(&courses).Error
	if err != nil {
		return nil, errors.Wrap(err, "instructor courses")
	}
	return courses, nil
}
