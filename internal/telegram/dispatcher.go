package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"communitybridge/common/logger"
)

const longPollTimeout = 30 // seconds

type updateSource interface {
	DeleteWebhook(ctx context.Context) error
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error)
}

type (
	CommandHandler  func(ctx context.Context, msg Message, args string) error
	CallbackHandler func(ctx context.Context, query CallbackQuery) error
	TextHandler     func(ctx context.Context, msg Message) error
)

// Dispatcher long-polls for updates and routes them to registered handlers:
// commands by name, button presses by payload prefix, and any remaining
// plain text to a single fallback handler.
type Dispatcher struct {
	client    updateSource
	commands  map[string]CommandHandler
	callbacks []callbackRoute
	text      TextHandler
}

type callbackRoute struct {
	prefix  string
	handler CallbackHandler
}

func NewDispatcher(client updateSource) *Dispatcher {
	return &Dispatcher{
		client:   client,
		commands: make(map[string]CommandHandler),
	}
}

// HandleCommand registers a handler for /name messages.
func (d *Dispatcher) HandleCommand(name string, handler CommandHandler) {
	d.commands[name] = handler
}

// HandleCallbackPrefix registers a handler for button payloads starting with
// prefix. Routes are tried in registration order; first match wins.
func (d *Dispatcher) HandleCallbackPrefix(prefix string, handler CallbackHandler) {
	d.callbacks = append(d.callbacks, callbackRoute{prefix: prefix, handler: handler})
}

// HandleText registers the fallback handler for non-command text messages.
func (d *Dispatcher) HandleText(handler TextHandler) {
	d.text = handler
}

// Run polls for updates until ctx is done. Any configured webhook is removed
// first since webhooks and long polling are mutually exclusive.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "bridge.telegram.dispatcher"})

	if err := d.client.DeleteWebhook(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "update polling started")

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := d.client.GetUpdates(ctx, offset, longPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "polling updates failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			// Handlers do their own network round-trips; don't let one slow
			// flow stall update delivery.
			go d.dispatch(ctx, update)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, update Update) {
	switch {
	case update.CallbackQuery != nil:
		d.dispatchCallback(ctx, *update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		d.dispatchMessage(ctx, *update.Message)
	}
}

func (d *Dispatcher) dispatchMessage(ctx context.Context, msg Message) {
	if name, args, ok := parseCommand(msg.Text); ok {
		handler, registered := d.commands[name]
		if !registered {
			return
		}
		if err := handler(ctx, msg, args); err != nil {
			slog.ErrorContext(ctx, "command handler failed", "command", name, "error", err)
		}
		return
	}

	if d.text == nil {
		return
	}
	if err := d.text(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "text handler failed", "error", err)
	}
}

func (d *Dispatcher) dispatchCallback(ctx context.Context, query CallbackQuery) {
	for _, route := range d.callbacks {
		if !strings.HasPrefix(query.Data, route.prefix) {
			continue
		}
		if err := route.handler(ctx, query); err != nil {
			slog.ErrorContext(ctx, "callback handler failed", "data", query.Data, "error", err)
		}
		return
	}
}

// parseCommand splits "/name@bot arg..." into the command name and its
// argument string. Reports false for non-command text.
func parseCommand(text string) (name, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(rest), true
}
