package course

import (
	"math"
	"time"

	"coursemart/models"
)

type Review struct {
	ID         uint         `json:"id" gorm:"primarykey"`
	CourseID   uint         `json:"course_id" gorm:"uniqueIndex:idx_reviews_course_user;not null"`
	UserID     uint         `json:"user_id" gorm:"uniqueIndex:idx_reviews_course_user;index;not null"`
	User       *models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Rating     int          `json:"rating" gorm:"not null"`
	Comment    string       `json:"comment" gorm:"size:1000"`
	IsVerified bool         `json:"is_verified" gorm:"default:false"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func IsValidRating(rating int) bool { return rating >= 1 && rating <= 5 }

// ApplyReview replaces the review by the same user in place, keeping its
// position, or appends r when the user has not reviewed yet. The returned
// index is the position of r in the result.
func ApplyReview(reviews []Review, r Review) ([]Review, int) {
	out := make([]Review, len(reviews), len(reviews)+1)
	copy(out, reviews)
	for i := range out {
		if out[i].UserID == r.UserID {
			r.ID = out[i].ID
			out[i] = r
			return out, i
		}
	}
	return append(out, r), len(out)
}

// ComputeRating derives the aggregate from scratch.
func ComputeRating(reviews []Review) Rating {
	var r Rating
	if len(reviews) == 0 {
		return r
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
		r.Distribution.Add(rv.Rating)
	}
	r.Count = len(reviews)
	r.Average = float64(sum) / float64(r.Count)
	return r
}

// RoundedAverage is the average as shown to learners, one decimal place.
func (r Rating) RoundedAverage() float64 {
	return math.Round(r.Average*10) / 10
}
