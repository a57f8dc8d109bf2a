package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/domain"
)

// Bot API uploads are capped at 50 MB.
const telegramMaxUpload = 50 * 1000 * 1000

type TelegramStorage struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(cfg *config.DiskConfig) (*TelegramStorage, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat_id %q: %w", cfg.ChatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramStorage{bot: bot, chatID: chatID}, nil
}

func (t *TelegramStorage) MakeDirectory(ctx context.Context, dir string) error {
	return nil
}

// WriteStream sends the archive as a document. When the reader is a file
// too large for the Bot API, only a notification is sent.
func (t *TelegramStorage) WriteStream(ctx context.Context, p string, r io.Reader) error {
	if f, ok := r.(interface{ Stat() (os.FileInfo, error) }); ok {
		if info, err := f.Stat(); err == nil && info.Size() > telegramMaxUpload {
			return t.notify(p, info.Size())
		}
	}

	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FileReader{Name: path.Base(p), Reader: r})
	doc.Caption = fmt.Sprintf("📦 Backup: %s", p)

	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}

	return nil
}

func (t *TelegramStorage) PutFile(ctx context.Context, p string, contents []byte) error {
	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FileBytes{Name: path.Base(p), Bytes: contents})
	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}
	return nil
}

// Telegram chats cannot be listed, so nothing sent there is ever pruned.
func (t *TelegramStorage) List(ctx context.Context, dir string) ([]domain.StoredObject, error) {
	return nil, domain.ErrListUnsupported
}

func (t *TelegramStorage) Delete(ctx context.Context, p string) error {
	return nil
}

func (t *TelegramStorage) notify(p string, size int64) error {
	message := fmt.Sprintf(
		"✅ Backup Created\n\n"+
			"📁 File: %s\n"+
			"📊 Size: %s (too large to attach)\n"+
			"🕐 Time: %s",
		p,
		humanize.Bytes(uint64(size)),
		time.Now().Format("2006-01-02 15:04:05"),
	)

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}

	return nil
}
