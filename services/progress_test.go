package services

import (
	"testing"

	"coursemart/apierr"
	"coursemart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteLessonUpdatesProgress(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	student := newUser(t, db, models.RoleStudent)
	_, err := Enroll(db, student.ID, c.ID, now)
	require.NoError(t, err)

	ids := lessonIDs(c)
	require.Len(t, ids, 2)

	e, err := CompleteLesson(db, student.ID, c.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 50, e.Progress)

	e, err = CompleteLesson(db, student.ID, c.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 50, e.Progress)

	_, err = CompleteLesson(db, student.ID, c.ID, ids[1])
	require.NoError(t, err)

	progress, err := GetCourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress)
}

func TestCompleteLessonRequiresEnrollmentAndOwnLesson(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	other := newCourse(t, db, instructor)
	student := newUser(t, db, models.RoleStudent)

	_, err := CompleteLesson(db, student.ID, c.ID, lessonIDs(c)[0])
	require.Error(t, err)
	assert.Equal(t, "You are not enrolled in this course", err.Error())

	_, err = Enroll(db, student.ID, c.ID, now)
	require.NoError(t, err)
	_, err = CompleteLesson(db, student.ID, c.ID, lessonIDs(other)[0])
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	progress, err := GetCourseProgress(db, student.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress)
}
