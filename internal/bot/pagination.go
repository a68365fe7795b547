package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"innkeeper/internal/api"
)

const hotelsPerPage = 5

// sendHotelPage shows one page of the hotel directory. The list itself
// comes from the client's cached directory endpoint; only the slice
// shown changes between pages.
func (b *Bot) sendHotelPage(ctx context.Context, chatID int64, page int) {
	hotels, err := b.api.ListHotels(ctx)
	if err != nil {
		b.reply(chatID, api.Message(err, "Could not load the hotel list."))
		return
	}
	if len(hotels) == 0 {
		b.reply(chatID, "No hotels are registered yet.")
		return
	}

	pages := (len(hotels) + hotelsPerPage - 1) / hotelsPerPage
	if page >= pages {
		page = pages - 1
	}
	start := page * hotelsPerPage
	end := start + hotelsPerPage
	if end > len(hotels) {
		end = len(hotels)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏨 *Hotels* (page %d of %d)\n\n", page+1, pages)
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, hotelsPerPage+1)
	for i, h := range hotels[start:end] {
		sb.WriteString(formatHotelLine(start+i+1, h))
		sb.WriteString("\n")
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", start+i+1, h.Name),
				fmt.Sprintf("hotel:%d", h.ID)),
		})
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("hpage:%d", page-1)))
	}
	if page < pages-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("hpage:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	_, _ = b.tg.Send(msg)
}

// sendHotelList renders a short ad-hoc list (search results) with one
// detail button per hotel.
func (b *Bot) sendHotelList(chatID int64, header string, hotels []api.Hotel) {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(hotels))
	for i, h := range hotels {
		if i >= 10 {
			fmt.Fprintf(&sb, "… and %d more\n", len(hotels)-i)
			break
		}
		sb.WriteString(formatHotelLine(i+1, h))
		sb.WriteString("\n")
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", i+1, h.Name),
				fmt.Sprintf("hotel:%d", h.ID)),
		})
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	_, _ = b.tg.Send(msg)
}
