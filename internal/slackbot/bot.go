// Package slackbot provides the chat front end for ghostwriter: a Slack
// Socket Mode bot that drafts on an app mention and settles the draft via
// interactive buttons. It is a thin projection over the draft lifecycle;
// all state lives in the controller's session store.
package slackbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
)

const (
	actionSend    = "button_send"
	actionDiscard = "button_discard"
)

// Lifecycle is the slice of the draft controller the bot drives.
type Lifecycle interface {
	RequestDraft(ctx context.Context, req draft.Request) (*draft.Draft, error)
	ConfirmSend(ctx context.Context, userID string) (*draft.Draft, error)
	Discard(ctx context.Context, userID string) (*draft.Draft, error)
}

// messenger is the slice of the Slack client the handlers post through.
// slack.Client satisfies it; tests fake it.
type messenger interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// Config holds the Socket Mode tokens.
type Config struct {
	BotToken string
	AppToken string
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("slack bot token is required")
	}
	if c.AppToken == "" {
		return fmt.Errorf("slack app token is required")
	}
	return nil
}

// Bot is the Slack front end.
type Bot struct {
	client    messenger
	socket    *socketmode.Client
	lifecycle Lifecycle
	logger    *zap.Logger
}

// New creates the bot. It does not connect until Run.
func New(cfg Config, lifecycle Lifecycle, logger *zap.Logger) (*Bot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if lifecycle == nil {
		return nil, fmt.Errorf("lifecycle cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	return &Bot{
		client:    api,
		socket:    socketmode.New(api),
		lifecycle: lifecycle,
		logger:    logger,
	}, nil
}

// Run connects to Slack and handles events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		for evt := range b.socket.Events {
			switch evt.Type {
			case socketmode.EventTypeConnected:
				b.logger.Info("slack socket connected")
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				b.socket.Ack(*evt.Request)
				b.handleEventsAPI(ctx, apiEvent)
			case socketmode.EventTypeInteractive:
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				b.socket.Ack(*evt.Request)
				b.handleInteractive(ctx, callback)
			}
		}
	}()

	return b.socket.RunContext(ctx)
}

func (b *Bot) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		return
	}
	b.handleMention(ctx, mention.User, mention.Channel, mention.Text)
}

// handleMention runs the request-draft flow: parse, acknowledge, draft,
// post the review blocks.
func (b *Bot) handleMention(ctx context.Context, userID, channelID, text string) {
	command, err := ParseMention(text)
	if err != nil {
		b.post(channelID, slack.MsgOptionText(fmt.Sprintf("Hi <@%s>! %s", userID, err.Error()), false))
		return
	}

	b.post(channelID, slack.MsgOptionText(fmt.Sprintf("Working on it, <@%s>...", userID), false))

	d, err := b.lifecycle.RequestDraft(ctx, draft.Request{
		UserID:        userID,
		RecipientName: command.RecipientName,
		Intent:        command.Intent,
		Tone:          draft.ToneFormal,
	})
	if err != nil {
		b.post(channelID, slack.MsgOptionText(requestErrorText(command.RecipientName, err), false))
		return
	}

	b.post(channelID,
		slack.MsgOptionBlocks(draftBlocks(d)...),
		slack.MsgOptionText("Draft ready for review", false))
}

func (b *Bot) handleInteractive(ctx context.Context, callback slack.InteractionCallback) {
	if callback.Type != slack.InteractionTypeBlockActions || len(callback.ActionCallback.BlockActions) == 0 {
		return
	}
	action := callback.ActionCallback.BlockActions[0]
	b.handleBlockAction(ctx, callback.User.ID, callback.Channel.ID, action.ActionID)
}

// handleBlockAction settles the draft on a button click.
func (b *Bot) handleBlockAction(ctx context.Context, userID, channelID, actionID string) {
	switch actionID {
	case actionSend:
		sent, err := b.lifecycle.ConfirmSend(ctx, userID)
		if err != nil {
			b.post(channelID, slack.MsgOptionText(sendErrorText(err), false))
			return
		}
		b.post(channelID, slack.MsgOptionText(
			fmt.Sprintf("Email sent successfully to %s!", sent.RecipientAddress), false))

	case actionDiscard:
		if _, err := b.lifecycle.Discard(ctx, userID); err != nil && !errors.Is(err, draft.ErrNoDraft) {
			b.logger.Warn("discard failed", zap.String("user_id", userID), zap.Error(err))
		}
		b.post(channelID, slack.MsgOptionText("Draft discarded.", false))
	}
}

func (b *Bot) post(channelID string, options ...slack.MsgOption) {
	if _, _, err := b.client.PostMessage(channelID, options...); err != nil {
		b.logger.Warn("failed to post slack message",
			zap.String("channel", channelID),
			zap.Error(err))
	}
}

// requestErrorText renders a requestDraft failure for chat.
func requestErrorText(recipientName string, err error) string {
	var genErr *draft.GenerationError
	switch {
	case errors.Is(err, draft.ErrContactNotFound):
		return fmt.Sprintf("I couldn't find %q in your contacts.", recipientName)
	case errors.As(err, &genErr):
		return "Drafting failed: " + genErr.Cause
	default:
		return "Drafting failed: " + err.Error()
	}
}

// sendErrorText renders a confirmSend failure for chat.
func sendErrorText(err error) string {
	var delErr *draft.DeliveryError
	switch {
	case errors.Is(err, draft.ErrNoDraft):
		return "Session expired. Please start a new draft."
	case errors.As(err, &delErr):
		return "Failed to send: " + delErr.Cause
	default:
		return "Failed to send: " + err.Error()
	}
}

// draftBlocks renders the review message: the draft and its action buttons.
func draftBlocks(d *draft.Draft) []slack.Block {
	header := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Draft for %s* (%s)", d.RecipientName, d.RecipientAddress), false, false),
		nil, nil)

	content := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Subject:* %s\n\n%s", d.Subject, d.Body), false, false),
		nil, nil)

	send := slack.NewButtonBlockElement(actionSend, d.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Send email", false, false))
	send.Style = slack.StylePrimary

	discard := slack.NewButtonBlockElement(actionDiscard, d.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "Discard", false, false))
	discard.Style = slack.StyleDanger

	return []slack.Block{header, content, slack.NewActionBlock("draft_actions", send, discard)}
}
