// Package locale holds the Russian texts shown to visitors.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Handlers refer to texts by key and never embed Russian literals.
const (
	LoginFailed        = "login failed"
	RegisterFailed     = "registration failed"
	NetworkError       = "network error"
	CredentialsMissing = "credentials missing"
	RegisterInvalid    = "registration form invalid"
	Welcome            = "welcome"
	Registered         = "registered"
	LoggedOut          = "logged out"
	SessionExpired     = "session expired"
	AuthRequired       = "auth required"
	GenericError       = "generic error"
	LoadFailed         = "load failed"
	BookingCreated     = "booking created"
	BookingFailed      = "booking failed"
	BookingRequired    = "booking fields required"
	BookingDuplicate   = "booking duplicate"
	BookingCancelled   = "booking cancelled"
	CancelFailed       = "cancel failed"
	BookingUpdated     = "booking status changed to %s"
	UpdateFailed       = "update failed"
	ReviewSent         = "review sent"
	ReviewFailed       = "review failed"
	ReviewInvalid      = "review invalid"
	ReviewApproved     = "review approved"
	ReviewHidden       = "review hidden"
	FeedbackSent       = "feedback sent"
	FeedbackFailed     = "feedback failed"
	FeedbackRequired   = "feedback fields required"
	AnyMaster          = "any master"
	ExportUnavailable  = "export unavailable"
	FormExpired        = "form expired"
	TooManyRequests    = "too many requests"
	PageNotFound       = "page not found"
)

// Booking status labels.
const (
	StatusPending   = "status pending"
	StatusConfirmed = "status confirmed"
	StatusCompleted = "status completed"
	StatusCancelled = "status cancelled"
)

var russian = map[string]string{
	LoginFailed:        "Ошибка входа",
	RegisterFailed:     "Ошибка регистрации",
	NetworkError:       "Ошибка сети",
	CredentialsMissing: "Введите email и пароль",
	RegisterInvalid:    "Заполните email, пароль и имя",
	Welcome:            "Добро пожаловать! Вы успешно вошли в систему",
	Registered:         "Регистрация успешна!",
	LoggedOut:          "Вы вышли из системы",
	SessionExpired:     "Сессия истекла, войдите снова",
	AuthRequired:       "Требуется авторизация",
	GenericError:       "Что-то пошло не так, попробуйте ещё раз",
	LoadFailed:         "Не удалось загрузить данные",
	BookingCreated:     "Запись создана! Мы свяжемся с вами для подтверждения",
	BookingFailed:      "Не удалось создать запись",
	BookingRequired:    "Выберите услугу, дату и время",
	BookingDuplicate:   "Эта запись уже отправлена",
	BookingCancelled:   "Запись отменена. Вы можете создать новую запись в любое время",
	CancelFailed:       "Не удалось отменить запись",
	BookingUpdated:     "Статус изменён на: %s",
	UpdateFailed:       "Не удалось обновить запись",
	ReviewSent:         "Спасибо за ваш отзыв! Он появится после модерации",
	ReviewFailed:       "Не удалось отправить отзыв",
	ReviewInvalid:      "Напишите текст отзыва и поставьте оценку от 1 до 5",
	ReviewApproved:     "Отзыв одобрен и виден на сайте",
	ReviewHidden:       "Отзыв скрыт с сайта",
	FeedbackSent:       "Сообщение отправлено! Мы свяжемся с вами в ближайшее время",
	FeedbackFailed:     "Не удалось отправить сообщение",
	FeedbackRequired:   "Имя, телефон и сообщение обязательны",
	AnyMaster:          "Любой мастер",
	ExportUnavailable:  "Экспорт временно недоступен",
	FormExpired:        "Форма устарела, обновите страницу и попробуйте снова",
	TooManyRequests:    "Слишком много попыток, подождите минуту",
	PageNotFound:       "Страница не найдена",
	StatusPending:      "Ожидает подтверждения",
	StatusConfirmed:    "Подтверждена",
	StatusCompleted:    "Завершена",
	StatusCancelled:    "Отменена",
}

var printer *message.Printer

func init() {
	for key, text := range russian {
		if err := message.SetString(language.Russian, key, text); err != nil {
			panic(err)
		}
	}
	printer = message.NewPrinter(language.Russian)
}

// T renders the text registered for key.
func T(key string, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Status returns the label of a booking status, or the raw value when unknown.
func Status(status string) string {
	key := "status " + status
	if _, ok := russian[key]; !ok {
		return status
	}
	return T(key)
}

// Price formats an amount of whole rubles with Russian digit grouping.
func Price(rubles int) string {
	return printer.Sprintf("%d ₽", rubles)
}

// PriceRange formats a from-to amount of rubles; a range that does not
// widen collapses to a single price.
func PriceRange(from, to int) string {
	if to <= from {
		return Price(from)
	}
	return printer.Sprintf("%d–%d ₽", from, to)
}
