package course

import "time"

type WishlistItem struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_wishlist_user_course;not null"`
	CourseID  uint      `json:"course_id" gorm:"uniqueIndex:idx_wishlist_user_course;not null"`
	Course    *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CreatedAt time.Time `json:"created_at"`
}
