package services

import (
	"sync"
	"testing"
	"time"

	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func enrolledStudent(t *testing.T, db *gorm.DB, c *course.Course) *models.User {
	t.Helper()
	s := newUser(t, db, models.RoleStudent)
	_, err := Enroll(db, s.ID, c.ID, now)
	require.NoError(t, err)
	return s
}

func TestReviewResubmissionReplaces(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	student := enrolledStudent(t, db, c)

	first, err := AddReview(db, student.ID, c.ID, 5, "great", now)
	require.NoError(t, err)
	second, err := AddReview(db, student.ID, c.ID, 2, "meh", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got := reloadCourse(t, db, c.ID)
	assert.Equal(t, 1, got.Rating.Count)
	assert.InDelta(t, 2.0, got.Rating.Average, 1e-9)
	assert.Equal(t, 1, got.Rating.Distribution.Two)
	assert.Equal(t, 0, got.Rating.Distribution.Five)

	reviews, page, err := ListReviews(db, c.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "meh", reviews[0].Comment)
	assert.True(t, reviews[0].CreatedAt.Equal(now.Add(time.Hour)))
}

func TestRatingAcrossUsersAndDelete(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	a := enrolledStudent(t, db, c)
	b := enrolledStudent(t, db, c)
	d := enrolledStudent(t, db, c)

	_, err := AddReview(db, a.ID, c.ID, 5, "", now)
	require.NoError(t, err)
	rb, err := AddReview(db, b.ID, c.ID, 4, "", now)
	require.NoError(t, err)
	_, err = AddReview(db, d.ID, c.ID, 1, "", now)
	require.NoError(t, err)

	got := reloadCourse(t, db, c.ID)
	assert.Equal(t, 3, got.Rating.Count)
	assert.InDelta(t, 10.0/3.0, got.Rating.Average, 1e-9)
	assert.Equal(t, got.Rating.Count, got.Rating.Distribution.Total())

	err = DeleteReview(db, a.ID, c.ID, rb.ID)
	assert.True(t, apierr.Is(err, apierr.KindForbidden))

	require.NoError(t, DeleteReview(db, b.ID, c.ID, rb.ID))
	got = reloadCourse(t, db, c.ID)
	assert.Equal(t, 2, got.Rating.Count)
	assert.InDelta(t, 3.0, got.Rating.Average, 1e-9)
	assert.Equal(t, 0, got.Rating.Distribution.Four)

	// the author may review again after deleting
	_, err = AddReview(db, b.ID, c.ID, 3, "", now)
	require.NoError(t, err)
}

func TestReviewRejections(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	outsider := newUser(t, db, models.RoleStudent)

	_, err := AddReview(db, outsider.ID, c.ID, 6, "", now)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, "rating", e.Field)

	_, err = AddReview(db, outsider.ID, 777, 4, "", now)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	_, err = AddReview(db, outsider.ID, c.ID, 4, "", now)
	require.Error(t, err)
	assert.Equal(t, "You must be enrolled in the course to review it", err.Error())

	assert.Equal(t, 0, reloadCourse(t, db, c.ID).Rating.Count)
}

func TestAdminMayDeleteAnyReview(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	student := enrolledStudent(t, db, c)
	admin := newUser(t, db, models.RoleAdmin)

	r, err := AddReview(db, student.ID, c.ID, 4, "", now)
	require.NoError(t, err)
	require.NoError(t, DeleteReview(db, admin.ID, c.ID, r.ID))
	assert.Equal(t, 0, reloadCourse(t, db, c.ID).Rating.Count)

	err = DeleteReview(db, admin.ID, c.ID, r.ID)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))
}

func TestConcurrentReviewsKeepRatingConsistent(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)

	const writers = 10
	students := make([]*models.User, writers)
	for i := range students {
		students[i] = enrolledStudent(t, db, c)
	}

	var wg sync.WaitGroup
	for i, s := range students {
		wg.Add(1)
		go func(userID uint, stars int) {
			defer wg.Done()
			_, err := AddReview(db, userID, c.ID, stars, "", now)
			assert.NoError(t, err)
		}(s.ID, i%5+1)
	}
	wg.Wait()

	var reviews []course.Review
	require.NoError(t, db.Where("course_id = ?", c.ID).Find(&reviews).Error)
	require.Len(t, reviews, writers)

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	got := reloadCourse(t, db, c.ID)
	assert.Equal(t, len(reviews), got.Rating.Count)
	assert.Equal(t, got.Rating.Count, got.Rating.Distribution.Total())
	assert.InDelta(t, float64(sum)/float64(len(reviews)), got.Rating.Average, 1e-9)
	assert.Equal(t, 2, got.Rating.Distribution.Five)
}
