package main

import "strings"

const unknownField = "???"

const (
	typeLecture = "Лекция"
	typeLab     = "Лабораторная работа"
	typeSeminar = "Семинар"
	typeOther   = "Другое"
)

// lessonTitleAndType разбирает подпись занятия вида "Название [Тег]"
// на название и тип. Берётся первая пара скобок; подпись без скобок
// (или со скобками не в том порядке) считается нераспознанной и
// целиком уходит в "???"/"Другое".
func lessonTitleAndType(label string) (title, kind string) {
	start := strings.Index(label, "[")
	end := strings.Index(label, "]")
	if start == -1 || end == -1 || end < start {
		return unknownField, typeOther
	}

	switch label[start+1 : end] {
	case "Лек":
		kind = typeLecture
	case "Лаб":
		kind = typeLab
	case "Пр":
		kind = typeSeminar
	default:
		kind = typeOther
	}

	return strings.TrimSpace(label[:start]), kind
}
