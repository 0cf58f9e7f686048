package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"goldpricebot/internal/cache"
	"goldpricebot/internal/config"
	"goldpricebot/internal/db"
	"goldpricebot/internal/logger"
	"goldpricebot/internal/prices"
	"goldpricebot/internal/scheduler"
	"goldpricebot/internal/sources"
	"goldpricebot/internal/utils"
)

const helpText = `Bot giá vàng (SJC, Doji, PNJ, Phú Quý, Ngọc Thẩm).

/gia — xem giá vàng ngay, kèm so sánh với lần trước
/theodoi [phút] — nhận bảng giá định kỳ (mặc định 30 phút)
/dung — tắt bảng giá định kỳ`

type App struct {
	cfg config.Config
	db  *db.DB
	bot *tgbotapi.BotAPI

	prices *prices.Service
	store  *cache.Tiered
	sched  *scheduler.Scheduler
	log    *logrus.Entry

	dataDir string
	dbPath  string
}

func New(cfg config.Config) (*App, error) {
	dbPath := filepath.Join(cfg.DataDir, "bot.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	b, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	b.Debug = cfg.Debug

	store := cache.NewTiered(cfg.Cache)
	svc := prices.NewService(sources.NewManager(), store)

	app := &App{
		cfg:     cfg,
		db:      database,
		bot:     b,
		prices:  svc,
		store:   store,
		log:     logger.With("bot"),
		dataDir: cfg.DataDir,
		dbPath:  dbPath,
	}
	app.sched = scheduler.New(database, svc, b)
	return app, nil
}

func (a *App) Close() {
	if a.sched != nil {
		a.sched.Stop()
	}
	a.store.Close()
	_ = a.db.Close()
}

func (a *App) Run() error {
	a.log.Infof("bot authorized as @%s", a.bot.Self.UserName)

	a.sched.Start()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := a.bot.GetUpdatesChan(u)
	for upd := range updates {
		if upd.Message != nil {
			a.handleMessage(*upd.Message)
		}
	}
	return nil
}

func (a *App) handleMessage(msg tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Second)
	defer cancel()

	if err := a.db.UpsertChat(ctx, msg.Chat.ID, chatTitle(msg.Chat), msg.Chat.Type); err != nil {
		a.log.WithError(err).Warn("upsert chat")
	}

	switch msg.Command() {
	case "start", "help":
		a.reply(msg.Chat.ID, helpText)
	case "gia", "gold":
		a.postReport(ctx, msg.Chat.ID)
	case "theodoi", "subscribe":
		interval := parseInterval(msg.CommandArguments())
		if err := a.db.Subscribe(ctx, msg.Chat.ID, interval); err != nil {
			a.log.WithError(err).Warn("subscribe")
			return
		}
		if interval <= 0 {
			interval = 30
		}
		a.reply(msg.Chat.ID, fmt.Sprintf("Đã bật bảng giá định kỳ mỗi %d phút.", interval))
	case "dung", "unsubscribe":
		if err := a.db.Unsubscribe(ctx, msg.Chat.ID); err != nil {
			a.log.WithError(err).Warn("unsubscribe")
			return
		}
		a.reply(msg.Chat.ID, "Đã tắt bảng giá định kỳ.")
	case "backup":
		a.handleBackup(ctx, msg)
	}
}

func (a *App) postReport(ctx context.Context, chatID int64) {
	text, err := a.prices.BuildReport(ctx)
	if err != nil {
		a.log.WithError(err).Error("build report")
		a.reply(chatID, "Lỗi máy chủ khi đang lấy giá vàng.")
		return
	}
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := a.bot.Send(out); err != nil {
		a.log.WithError(err).Warnf("send report to %d failed", chatID)
	}
}

func (a *App) handleBackup(ctx context.Context, msg tgbotapi.Message) {
	if !a.isAdmin(msg.From) {
		return
	}
	dst := filepath.Join(a.dataDir, "backup-"+utils.NowVietnam().Format("20060102-150405")+".db")
	if err := a.db.BackupTo(ctx, dst); err != nil {
		a.log.WithError(err).Error("backup")
		a.reply(msg.Chat.ID, "Sao lưu thất bại.")
		return
	}
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(dst))
	if _, err := a.bot.Send(doc); err != nil {
		a.log.WithError(err).Warn("send backup")
	}
}

func (a *App) isAdmin(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	for _, id := range a.cfg.AdminIDs {
		if id == from.ID {
			return true
		}
	}
	return false
}

func (a *App) reply(chatID int64, text string) {
	if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		a.log.WithError(err).Warnf("send to %d failed", chatID)
	}
}

func chatTitle(chat *tgbotapi.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	return strings.TrimSpace(chat.FirstName + " " + chat.LastName)
}

func parseInterval(args string) int {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0
	}
	n, err := strconv.Atoi(args)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
