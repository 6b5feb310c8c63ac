package main

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	mietBaseURL      = "https://miet.ru"
	schedulePagePath = "/schedule/"
	scheduleDataPath = "/schedule/data"

	browserUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:129.0) Gecko/20100101 Firefox/129.0"
)

var (
	// ErrScheduleFetch — сайт не отдал расписание (сеть, статус,
	// не выданные cookie).
	ErrScheduleFetch = errors.New("не удалось получить расписание")
	// ErrScheduleDecode — сайт ответил, но тело не разобралось как
	// JSON-выгрузка.
	ErrScheduleDecode = errors.New("не удалось разобрать ответ расписания")
)

// Cookie wl страница расписания ставит inline-скриптом.
var wlCookieRe = regexp.MustCompile(`document\.cookie="wl=([^;]+);`)

// Loader отдаёт сырую выгрузку расписания.
type Loader interface {
	Load() (*Feed, error)
}

// MIETScheduleLoader ходит за выгрузкой на miet.ru. Сервер отдаёт
// данные только после двухшаговой выдачи cookie: первый визит
// страницы расписания возвращает скрипт с cookie wl, повторный визит
// уже с wl получает MIET_PHPSESSID, и только с обоими cookie проходит
// POST за данными группы.
type MIETScheduleLoader struct {
	Group string

	// BaseURL подменяет miet.ru в тестах. Пустое значение — боевой сайт.
	BaseURL string
}

func (l *MIETScheduleLoader) base() string {
	if l.BaseURL != "" {
		return strings.TrimRight(l.BaseURL, "/")
	}
	return mietBaseURL
}

func (l *MIETScheduleLoader) Load() (*Feed, error) {
	c := colly.NewCollector(
		colly.UserAgent(browserUserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(30 * time.Second)

	var (
		wl   string
		body []byte
	)
	c.OnResponse(func(r *colly.Response) {
		if strings.HasSuffix(r.Request.URL.Path, "/data") {
			body = r.Body
			return
		}
		if m := wlCookieRe.FindSubmatch(r.Body); m != nil {
			wl = string(m[1])
		}
	})

	pageURL := l.base() + schedulePagePath

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleFetch, err)
	}
	if wl == "" {
		return nil, fmt.Errorf("%w: страница не выдала cookie wl", ErrScheduleFetch)
	}
	if err := c.SetCookies(pageURL, []*http.Cookie{{Name: "wl", Value: wl}}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleFetch, err)
	}
	// Второй визит: сервер видит wl и ставит MIET_PHPSESSID, cookie
	// остаётся в jar коллектора.
	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleFetch, err)
	}

	if err := c.Post(l.base()+scheduleDataPath, map[string]string{"group": l.Group}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleFetch, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: пустой ответ на запрос данных", ErrScheduleFetch)
	}

	feed, err := decodeFeed(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleDecode, err)
	}
	return feed, nil
}
