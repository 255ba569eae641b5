package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/chat"
	"github.com/NgigiN/aureliya/internal/ledger"
)

// messenger is the part of the Discord session the bot writes through.
type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Services struct {
	Intake     *ledger.Intake
	Dashboard  *ledger.Dashboard
	Withdrawal *ledger.Withdrawal
	Chat       chat.Bot
}

type Bot struct {
	session       *discordgo.Session
	channelID     string
	promptTimeout time.Duration
	svc           Services
	log           *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]chan string
}

var errPromptBusy = errors.New("a confirmation is already pending")

func NewBot(token, channelID string, promptTimeout time.Duration, svc Services, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := newBot(channelID, promptTimeout, svc, log)
	bot.session = session

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	return bot, nil
}

func newBot(channelID string, promptTimeout time.Duration, svc Services, log *zap.Logger) *Bot {
	if promptTimeout <= 0 {
		promptTimeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		channelID:     channelID,
		promptTimeout: promptTimeout,
		svc:           svc,
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
		pending:       make(map[string]chan string),
	}
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.log.Info("Discord bot connected", zap.String("channel_id", b.channelID))
	return nil
}

// Stop cancels pending prompts and closes the session.
func (b *Bot) Stop() {
	b.cancel()
	if b.session != nil {
		b.session.Close()
	}
}

// Connected reports whether the gateway session is up.
func (b *Bot) Connected() bool {
	return b.session != nil && b.session.DataReady
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return //bot's messages
	}
	b.dispatch(s, m.ChannelID, m.Author.ID, m.Content)
}

func (b *Bot) dispatch(out messenger, channelID, authorID, content string) {
	if channelID != b.channelID {
		return //specific to the channel
	}
	if b.deliverAnswer(authorID, content) {
		return
	}

	cmd, ok := parseCommand(content)
	if !ok {
		b.handleChat(out, content)
		return
	}

	switch cmd.Name {
	case "deposit":
		b.handleDepositCommand(out, cmd.Args)
	case "deposits":
		b.handleDepositsCommand(out)
	case "withdraw":
		b.handleWithdrawCommand(out, authorID, cmd.Args)
	case "help":
		b.send(out, helpText)
	default:
		b.send(out, fmt.Sprintf("Unknown command: !%s\n%s", cmd.Name, helpText))
	}
}

func (b *Bot) send(out messenger, content string) {
	if _, err := out.ChannelMessageSend(b.channelID, content); err != nil {
		b.log.Warn("Failed to send Discord message", zap.Error(err))
	}
}

func (b *Bot) handleDepositCommand(out messenger, args []string) {
	if len(args) == 0 || len(args) > 2 {
		b.send(out, "Usage: !deposit <amount> [method]\nExamples:\n!deposit 250 stripe\n!deposit $1,200 bank")
		return
	}
	method := ""
	if len(args) == 2 {
		method = args[1]
	}

	rec, err := b.svc.Intake.Submit(b.ctx, args[0], method)
	if err != nil {
		b.send(out, fmt.Sprintf("Invalid amount: %s", args[0]))
		return
	}
	b.send(out, fmt.Sprintf("Recorded %s via %s", ledger.FormatUSD(rec.Amount), rec.Method.Label()))
}

const listLimit = 10

func (b *Bot) handleDepositsCommand(out messenger) {
	view := b.svc.Dashboard.Snapshot(b.ctx)
	b.send(out, formatView(view))
}

func formatView(view ledger.View) string {
	if view.Count == 0 {
		return "📊 **Deposits**\n\n" + ledger.NoDepositsNote
	}

	var sb strings.Builder
	sb.WriteString("📊 **Deposits**\n\n")

	limit := listLimit
	if len(view.Rows) < limit {
		limit = len(view.Rows)
	}
	for _, row := range view.Rows[:limit] {
		fmt.Fprintf(&sb, "• **%s** via %s on %s\n", row.Amount, row.Method, row.Date)
	}
	if len(view.Rows) > limit {
		fmt.Fprintf(&sb, "... and %d more deposits\n", len(view.Rows)-limit)
	}

	fmt.Fprintf(&sb, "\n**Pending**: %s (%d deposits)", view.Pending, view.Count)
	return sb.String()
}

func (b *Bot) handleWithdrawCommand(out messenger, authorID string, args []string) {
	var method ledger.Method
	if len(args) > 0 {
		method = ledger.ParseMethod(args[0])
	}

	outcome, err := b.svc.Withdrawal.Request(b.ctx, method, b.prompter(out, authorID))
	if err != nil {
		b.log.Error("Withdrawal failed", zap.Error(err))
	}
	b.send(out, outcome.Message)
}

func (b *Bot) handleChat(out messenger, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	reply, err := b.svc.Chat.Respond(b.ctx, content)
	if err != nil {
		b.log.Debug("Chat reply abandoned", zap.Error(err))
		return
	}
	b.send(out, reply)
}

// prompter asks the question in the channel and waits for the same author to
// answer yes or no. Silence until the timeout counts as no.
func (b *Bot) prompter(out messenger, authorID string) ledger.Prompter {
	return ledger.PromptFunc(func(ctx context.Context, question string) (bool, error) {
		answers := make(chan string, 1)
		if !b.awaitAnswer(authorID, answers) {
			return false, errPromptBusy
		}
		defer b.releaseAnswer(authorID)

		b.send(out, question+" Reply **yes** or **no**.")

		timer := time.NewTimer(b.promptTimeout)
		defer timer.Stop()
		for {
			select {
			case answer := <-answers:
				yes, ok := parseAnswer(answer)
				if ok {
					return yes, nil
				}
				b.send(out, "Please reply **yes** or **no**.")
			case <-timer.C:
				b.send(out, "No reply received.")
				return false, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	})
}

func (b *Bot) awaitAnswer(authorID string, answers chan string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.pending[authorID]; busy {
		return false
	}
	b.pending[authorID] = answers
	return true
}

func (b *Bot) releaseAnswer(authorID string) {
	b.mu.Lock()
	delete(b.pending, authorID)
	b.mu.Unlock()
}

// deliverAnswer hands content to a pending prompt from the same author.
func (b *Bot) deliverAnswer(authorID, content string) bool {
	b.mu.Lock()
	answers, ok := b.pending[authorID]
	b.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case answers <- content:
	default:
	}
	return true
}
