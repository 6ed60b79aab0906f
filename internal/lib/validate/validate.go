// Package validate настраивает валидатор запросов и проверку ссылок на видео.
package validate

import (
	"strings"

	"github.com/go-playground/validator"
)

// VideoHostTag тег проверки ссылки на видео.
const VideoHostTag = "videohost"

// New возвращает валидатор с зарегистрированным тегом videohost для списка хостов.
func New(allowedHosts []string) *validator.Validate {
	v := validator.New()
	// Регистрация встроенной функции с уникальным тегом не может завершиться ошибкой.
	_ = v.RegisterValidation(VideoHostTag, func(fl validator.FieldLevel) bool {
		return VideoLinkAllowed(allowedHosts, fl.Field().String())
	})
	return v
}

// VideoLinkAllowed сообщает, ссылается ли link на один из разрешенных хостингов.
// Сравнение без учета регистра по вхождению имени хостинга.
func VideoLinkAllowed(allowedHosts []string, link string) bool {
	if link == "" {
		return true
	}
	lower := strings.ToLower(link)
	for _, host := range allowedHosts {
		if host != "" && strings.Contains(lower, strings.ToLower(host)) {
			return true
		}
	}
	return false
}
