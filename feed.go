package main

import "encoding/json"

// Feed — сырая выгрузка расписания МИЭТ. Формат нестрогий: любое
// вложенное поле может отсутствовать, поэтому всё опционально и
// читается только через nil-безопасные методы со значением по
// умолчанию.
type Feed struct {
	Data []Occurrence `json:"Data"`
}

// Occurrence — одна запись выгрузки, одно занятие.
type Occurrence struct {
	Class     *ClassInfo `json:"Class"`
	Room      *RoomInfo  `json:"Room"`
	Time      *TimeInfo  `json:"Time"`
	Day       *int       `json:"Day"`
	DayNumber *int       `json:"DayNumber"`
}

type ClassInfo struct {
	Name    *string `json:"Name"`
	Teacher *string `json:"Teacher"`
}

type RoomInfo struct {
	Name *string `json:"Name"`
}

type TimeInfo struct {
	Time *string `json:"Time"`
}

func decodeFeed(data []byte) (*Feed, error) {
	var feed Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Occurrences не падает на nil-выгрузке, просто отдаёт пустой список.
func (f *Feed) Occurrences() []Occurrence {
	if f == nil {
		return nil
	}
	return f.Data
}

func (c *ClassInfo) NameOr(def string) string {
	if c == nil || c.Name == nil {
		return def
	}
	return *c.Name
}

func (c *ClassInfo) TeacherOr(def string) string {
	if c == nil || c.Teacher == nil {
		return def
	}
	return *c.Teacher
}

func (r *RoomInfo) NameOr(def string) string {
	if r == nil || r.Name == nil {
		return def
	}
	return *r.Name
}

func (t *TimeInfo) TimeOr(def string) string {
	if t == nil || t.Time == nil {
		return def
	}
	return *t.Time
}

func (o Occurrence) DayOr(def int) int {
	if o.Day == nil {
		return def
	}
	return *o.Day
}

func (o Occurrence) WeekOr(def int) int {
	if o.DayNumber == nil {
		return def
	}
	return *o.DayNumber
}
