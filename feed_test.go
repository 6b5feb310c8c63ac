package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeed(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"Data": [
			{
				"Class": {"Name": "Алгебра [Лек]", "Teacher": "Иванов И.И."},
				"Room": {"Name": "3101"},
				"Time": {"Time": "1T09:00:00"},
				"Day": 0,
				"DayNumber": 1
			},
			{}
		]
	}`)

	feed, err := decodeFeed(raw)
	require.NoError(t, err)
	require.Len(t, feed.Occurrences(), 2)

	first := feed.Data[0]
	assert.Equal(t, "Алгебра [Лек]", first.Class.NameOr("???"))
	assert.Equal(t, "Иванов И.И.", first.Class.TeacherOr("???"))
	assert.Equal(t, "3101", first.Room.NameOr("???"))
	assert.Equal(t, "1T09:00:00", first.Time.TimeOr("1"))
	assert.Equal(t, 0, first.DayOr(7))
	assert.Equal(t, 1, first.WeekOr(7))
}

func TestDecodeFeedRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := decodeFeed([]byte("<html>ошибка</html>"))
	require.Error(t, err)
}

// Доступ к любому отсутствующему полю отдаёт значение по умолчанию и
// не паникует, даже когда вся ветка nil.
func TestAccessorsOnMissingFields(t *testing.T) {
	t.Parallel()

	var occ Occurrence
	assert.Equal(t, "???", occ.Class.NameOr("???"))
	assert.Equal(t, "???", occ.Class.TeacherOr("???"))
	assert.Equal(t, "???", occ.Room.NameOr("???"))
	assert.Equal(t, "1", occ.Time.TimeOr("1"))
	assert.Equal(t, 0, occ.DayOr(0))
	assert.Equal(t, 0, occ.WeekOr(0))

	var feed *Feed
	assert.Nil(t, feed.Occurrences())
}

func TestAccessorsOnPartialBranch(t *testing.T) {
	t.Parallel()

	occ := Occurrence{Class: &ClassInfo{}, Time: &TimeInfo{}}
	assert.Equal(t, "???", occ.Class.NameOr("???"))
	assert.Equal(t, "1", occ.Time.TimeOr("1"))
}
