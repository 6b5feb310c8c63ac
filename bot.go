package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	webhookPath = "/webhook"

	buttonMyTimetable = "Моё расписание"
	buttonSupport     = "Поддержка и предложения"

	cacheTTL = 30 * time.Minute
)

// Похоже на номер группы МИЭТ: буквы, цифры, дефисы.
var groupRe = regexp.MustCompile(`^[А-ЯЁа-яёA-Za-z0-9-]{2,20}$`)

type cachedArchive struct {
	path string
	at   time.Time
}

var (
	cacheMu       sync.RWMutex
	archivesCache = make(map[string]cachedArchive) // группа -> готовый архив
)

// Подменяются в тестах.
var (
	newLoader = func(group string) Loader { return &MIETScheduleLoader{Group: group} }
	dumpRoot  = defaultDumpDir
)

// handleWebhook обрабатывает входящие обновления от Telegram.
func handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Ошибка декодирования обновления: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Обрабатываем в отдельной горутине, чтобы не держать запрос Telegram.
	go processUpdate(update)

	w.WriteHeader(http.StatusOK)
}

func processUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.From == nil {
		return
	}
	if err := saveUserFromUpdate(update); err != nil {
		log.Printf("saveUserFromUpdate: %v", err)
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			sendStartMessage(chatID)
		case "stats":
			if isAdmin(userID) {
				go sendStatsToAdmin(chatID)
			} else {
				reply(chatID, "У вас нет доступа к этой команде.")
			}
		}
		return
	}

	switch text := update.Message.Text; text {
	case "":
		// Стикеры, фото и прочее просто игнорируем.
	case buttonMyTimetable:
		group, err := preferredGroup(userID)
		if err != nil {
			log.Printf("preferredGroup для %d: %v", userID, err)
			reply(chatID, "Произошла ошибка. Попробуйте позже.")
			return
		}
		if group == "" {
			reply(chatID, "Сначала пришлите номер своей группы, например ПИН-31В.")
			return
		}
		sendTimetable(chatID, userID, group)
	case buttonSupport:
		sendSupportMessage(chatID)
	default:
		if !groupRe.MatchString(text) {
			reply(chatID, "Пришлите номер группы (например ПИН-31В) или нажмите кнопку на клавиатуре.")
			return
		}
		log.Printf("Пользователь %d (%s) запросил расписание группы %s",
			userID, update.Message.From.UserName, text)
		sendTimetable(chatID, userID, text)
	}
}

// sendTimetable собирает архив расписания группы и отправляет его
// документом. Успешный запрос запоминает группу за пользователем.
func sendTimetable(chatID, userID int64, group string) {
	path, err := timetableArchive(group)
	if err != nil {
		log.Printf("Сборка расписания группы %s: %v", group, err)
		switch {
		case errors.Is(err, ErrScheduleFetch):
			reply(chatID, "МИЭТ сейчас не отвечает, попробуйте позже.")
		case errors.Is(err, ErrScheduleDecode), errors.Is(err, errInvalidPeriod):
			reply(chatID, fmt.Sprintf("Не удалось разобрать расписание группы %s.", group))
		default:
			reply(chatID, fmt.Sprintf("Не удалось собрать расписание группы %s.", group))
		}
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Расписание группы %s", group)
	if _, err := bot.Send(doc); err != nil {
		log.Printf("Ошибка отправки архива в чат %d: %v", chatID, err)
		return
	}

	if err := updateUserGroup(userID, group); err != nil {
		log.Printf("updateUserGroup для %d: %v", userID, err)
	}
}

// timetableArchive отдаёт готовый архив из кэша или собирает его:
// выгрузка с сайта, нормализация, JSON + ZIP.
func timetableArchive(group string) (string, error) {
	cacheMu.RLock()
	cached, ok := archivesCache[group]
	cacheMu.RUnlock()
	if ok && time.Since(cached.at) < cacheTTL {
		return cached.path, nil
	}

	feed, err := newLoader(group).Load()
	if err != nil {
		return "", err
	}

	var parser Parser = MIETScheduleToTimetable{}
	parsed, err := parser.Parse(feed)
	if err != nil {
		return "", err
	}

	var dumper Dumper = &ZIPDumper{FileDumper{Dir: filepath.Join(dumpRoot, group)}}
	path, err := dumper.Dump(parsed, "timetable_"+group)
	if err != nil {
		return "", err
	}

	cacheMu.Lock()
	archivesCache[group] = cachedArchive{path: path, at: time.Now()}
	cacheMu.Unlock()
	return path, nil
}

// cleanupLoop периодически выбрасывает устаревшие архивы из кэша,
// чтобы следующий запрос собрал свежие данные.
func cleanupLoop() {
	for {
		time.Sleep(cacheTTL)
		cacheMu.Lock()
		for group, cached := range archivesCache {
			if time.Since(cached.at) >= cacheTTL {
				delete(archivesCache, group)
			}
		}
		cacheMu.Unlock()
	}
}

func reply(chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Ошибка отправки сообщения в чат %d: %v", chatID, err)
	}
}

func sendStartMessage(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"Привет! Пришлите номер своей группы (например ПИН-31В), и я соберу "+
			"архив с расписанием для приложения.")

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonMyTimetable),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonSupport),
		),
	)
	msg.ReplyMarkup = keyboard

	if _, err := bot.Send(msg); err != nil {
		log.Printf("Ошибка при отправке стартового сообщения: %v", err)
	}
}

func sendSupportMessage(chatID int64) {
	reply(chatID, "По вопросам поддержки и предложений пишите @miet_timetable_support")
}

func sendStatsToAdmin(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	total, err := countUsers(ctx)
	if err != nil {
		log.Printf("countUsers: %v", err)
		reply(chatID, "Не удалось получить статистику.")
		return
	}

	cacheMu.RLock()
	cachedGroups := len(archivesCache)
	cacheMu.RUnlock()

	reply(chatID, fmt.Sprintf("Пользователей: %d\nГрупп в кэше: %d", total, cachedGroups))
}

func isAdmin(userID int64) bool {
	return adminID != 0 && userID == adminID
}
