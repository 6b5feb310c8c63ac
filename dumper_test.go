package main

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimetable(t *testing.T) *Timetable {
	t.Helper()
	doc, err := MIETScheduleToTimetable{}.Parse(&Feed{Data: []Occurrence{
		occurrence("Алгебра [Лек]", "Иванов И.И.", "3101", "1T09:00:00", 0, 1),
	}})
	require.NoError(t, err)
	return doc
}

func TestFileDumper(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := &FileDumper{Dir: dir}

	path, err := d.Dump(testTimetable(t), "timetable_data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timetable_data.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Timetable
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.Version)
	require.Len(t, doc.LessonList, 1)
	assert.Equal(t, "Алгебра", doc.LessonList[0].Name)

	// Кириллица пишется как есть, без \u-экранирования.
	assert.Contains(t, string(data), "Алгебра")
}

func TestFileDumperGeneratesName(t *testing.T) {
	t.Parallel()

	d := &FileDumper{Dir: t.TempDir()}

	first, err := d.Dump(testTimetable(t), "")
	require.NoError(t, err)
	second, err := d.Dump(testTimetable(t), "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, ".json", filepath.Ext(first))
}

func TestZIPDumper(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := &ZIPDumper{FileDumper{Dir: dir}}

	path, err := d.Dump(testTimetable(t), "timetable_data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timetable_data.zip"), path)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 1)
	assert.Equal(t, "timetable_data.json", zr.File[0].Name)

	f, err := zr.File[0].Open()
	require.NoError(t, err)
	defer f.Close()

	var doc Timetable
	require.NoError(t, json.NewDecoder(f).Decode(&doc))
	assert.Equal(t, 3, doc.Version)
}

// Повторная выгрузка не утаскивает в архив предыдущий архив.
func TestZIPDumperSkipsOldArchives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := &ZIPDumper{FileDumper{Dir: dir}}

	_, err := d.Dump(testTimetable(t), "first")
	require.NoError(t, err)
	path, err := d.Dump(testTimetable(t), "second")
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		assert.NotContains(t, f.Name, ".zip")
	}
}
