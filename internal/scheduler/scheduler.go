package scheduler

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"goldpricebot/internal/db"
	"goldpricebot/internal/logger"
	"goldpricebot/internal/prices"
	"goldpricebot/internal/utils"
)

// Scheduler posts the price report to subscribed chats on their
// configured interval. One aggregation run per tick is shared by every
// chat due at that minute.
type Scheduler struct {
	db     *db.DB
	prices *prices.Service
	bot    *tgbotapi.BotAPI
	log    *logrus.Entry

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(database *db.DB, svc *prices.Service, bot *tgbotapi.BotAPI) *Scheduler {
	return &Scheduler{
		db:     database,
		prices: svc,
		bot:    bot,
		log:    logger.With("scheduler"),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	for {
		// Sleep until the next minute boundary in Vietnam time.
		now := utils.NowVietnam()
		next := now.Truncate(time.Minute).Add(time.Minute)
		select {
		case <-time.After(time.Until(next)):
			// tick
		case <-s.stopCh:
			return
		}
		s.runTick()
	}
}

// isDue reports whether a chat should get a post at nowUnix given its
// last post time and interval. A half-minute slack keeps minute-boundary
// ticks from drifting: the post itself lands seconds after the boundary,
// so the next full interval would otherwise always come up a few seconds
// short. A chat that never got a post is due immediately.
func isDue(nowUnix, lastPost int64, intervalMinutes int) bool {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	return nowUnix-lastPost >= int64(intervalMinutes)*60-30
}

func (s *Scheduler) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Second)
	defer cancel()

	now := utils.NowVietnam()

	chats, err := s.db.ListSubscribed(ctx)
	if err != nil {
		s.log.WithError(err).Error("list chats")
		return
	}

	var due []db.Chat
	for _, c := range chats {
		if isDue(now.Unix(), c.LastPostTime, c.IntervalMinutes) {
			due = append(due, c)
		}
	}
	if len(due) == 0 {
		return
	}

	text, err := s.prices.BuildReport(ctx)
	if err != nil {
		s.log.WithError(err).Error("build report")
		return
	}

	sem := make(chan struct{}, 5) // limit concurrency
	var wg sync.WaitGroup
	for _, c := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(chatID int64) {
			defer wg.Done()
			defer func() { <-sem }()
			s.post(ctx, chatID, text)
		}(c.ChatID)
	}
	wg.Wait()
}

func (s *Scheduler) post(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.bot.Send(msg); err != nil {
		s.log.WithError(err).Warnf("post to chat %d failed", chatID)
		return
	}
	_ = s.db.SetLastPostTime(ctx, chatID, time.Now().Unix())
}
