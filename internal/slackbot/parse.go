package slackbot

import (
	"fmt"
	"regexp"
	"strings"
)

// mentionPrefix strips the leading "<@U12345>" token Slack prepends to
// app mentions.
var mentionPrefix = regexp.MustCompile(`^\s*<@[^>]+>\s*`)

// Command is a parsed draft request from a mention: the recipient name and
// the free-text intent. Tone selection is not part of the chat grammar; the
// bot drafts with the default tone.
type Command struct {
	RecipientName string
	Intent        string
}

// ParseMention extracts a Command from a mention's text. The grammar is
// "[email] <name> <intent...>": an optional leading "email" keyword, then
// the recipient's first word, then everything else as intent. Errors are
// user-visible and explain the expected shape.
func ParseMention(text string) (Command, error) {
	clean := strings.TrimSpace(mentionPrefix.ReplaceAllString(text, ""))
	if clean == "" {
		return Command{}, fmt.Errorf("mention me with a command, e.g. `email Alice regarding the project update`")
	}

	first, rest, _ := strings.Cut(clean, " ")
	if strings.EqualFold(first, "email") {
		first, rest, _ = strings.Cut(strings.TrimSpace(rest), " ")
	}

	rest = strings.TrimSpace(rest)
	if first == "" || rest == "" {
		return Command{}, fmt.Errorf("please provide a name and some context, e.g. `email Bob I am running late`")
	}

	return Command{RecipientName: first, Intent: rest}, nil
}
