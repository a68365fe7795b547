package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// calendarKeyboard builds a Monday-first month grid. kind distinguishes
// which date is being picked (check-in vs check-out) and is echoed in the
// callback data. Days before minDate are rendered but answer noop.
func calendarKeyboard(kind string, year int, month time.Month, minDate time.Time) tgbotapi.InlineKeyboardMarkup {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // Monday-first grid
	}
	daysInMonth := daysIn(month, year)
	minStr := minDate.Format("2006-01-02")

	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", month.String(), year), "noop"),
	})

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Mo", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Tu", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("We", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Th", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Fr", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Sa", "noop"),
		tgbotapi.NewInlineKeyboardButtonData("Su", "noop"),
	})

	day := 1
	for day <= daysInMonth {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(rows) == 2 && col < weekdayOffset {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			if day > daysInMonth {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", "noop"))
				continue
			}
			dateStr := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
			if dateStr < minStr {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData("·", "noop"))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%d", day),
					fmt.Sprintf("cal:%s:%s", kind, dateStr),
				))
			}
			day++
		}
		rows = append(rows, row)
	}

	// Month navigation
	prev := firstDay.AddDate(0, -1, 0)
	next := firstDay.AddDate(0, 1, 0)
	nav := make([]tgbotapi.InlineKeyboardButton, 0, 2)
	if !prev.Before(time.Date(minDate.Year(), minDate.Month(), 1, 0, 0, 0, 0, time.UTC)) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️", fmt.Sprintf("calnav:%s:%s", kind, prev.Format("2006-01"))))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
		"➡️", fmt.Sprintf("calnav:%s:%s", kind, next.Format("2006-01"))))
	rows = append(rows, nav)

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
