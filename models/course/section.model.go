package course

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var LessonTypes = []string{"video", "text", "quiz", "assignment"}

type Section struct {
	gorm.Model
	CourseID    uint     `json:"course_id" gorm:"index;not null"`
	Title       string   `json:"title" gorm:"size:200;not null"`
	Description string   `json:"description"`
	Position    int      `json:"order" gorm:"not null;default:0"`
	Lessons     []Lesson `json:"lessons" gorm:"foreignKey:SectionID"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type Lesson struct {
	gorm.Model
	SectionID   uint                          `json:"section_id" gorm:"index;not null"`
	CourseID    uint                          `json:"course_id" gorm:"index;not null"`
	Title       string                        `json:"title" gorm:"size:200;not null"`
	Description string                        `json:"description"`
	Type        string                        `json:"type" gorm:"size:20;not null"`
	Content     datatypes.JSONMap             `json:"content"`
	Position    int                           `json:"order" gorm:"not null;default:0"`
	IsPreview   bool                          `json:"is_preview" gorm:"default:false"`
	Duration    int                           `json:"duration" gorm:"default:0"` // minutes
	Resources   datatypes.JSONSlice[Resource] `json:"resources"`
}

func IsValidLessonType(t string) bool { return contains(LessonTypes, t) }

// CalculateTotals sums lesson durations and counts lessons across sections.
func CalculateTotals(sections []Section) (duration, lessons int) {
	for _, s := range sections {
		for _, l := range s.Lessons {
			duration += l.Duration
			lessons++
		}
	}
	return duration, lessons
}
