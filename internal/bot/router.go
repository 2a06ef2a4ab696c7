package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vectorious/lilbot/internal/chat"
)

// HandlerFunc handles one parsed command. rest is the raw text after the
// command keyword.
type HandlerFunc func(ctx context.Context, channelID string, msg chat.Message, rest string) error

type command struct {
	name        string
	description string
	usage       string
	handler     HandlerFunc
}

// Router matches incoming messages against a command table by prefix, in
// registration order, so subcommands ("!qtrivia add") must be registered
// before their parent ("!qtrivia").
type Router struct {
	commands []command
}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Handle(name, description, usage string, h HandlerFunc) {
	r.commands = append(r.commands, command{
		name:        name,
		description: description,
		usage:       usage,
		handler:     h,
	})
}

// Dispatch routes a message to the first matching command, if any.
func (r *Router) Dispatch(ctx context.Context, channelID string, msg chat.Message) {
	for _, c := range r.commands {
		if !strings.HasPrefix(msg.Content, c.name) {
			continue
		}

		rest := strings.TrimSpace(msg.Content[len(c.name):])
		if err := c.handler(ctx, channelID, msg, rest); err != nil {
			slog.ErrorContext(ctx, "bot: command failed",
				"command", c.name,
				"author", msg.AuthorName,
				"error", err,
			)
		}
		return
	}
}

// Help lists every command as "usage - description".
func (r *Router) Help() string {
	lines := make([]string, 0, len(r.commands))
	for _, c := range r.commands {
		usage := c.usage
		if usage == "" {
			usage = c.name
		}
		lines = append(lines, fmt.Sprintf("**%s** - *%s*", usage, c.description))
	}
	return strings.Join(lines, "\n")
}
