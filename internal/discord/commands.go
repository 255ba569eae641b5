package discord

import "strings"

const helpText = "**Commands**\n" +
	"!deposit <amount> [method] - record a deposit (stripe, paypal, wallet, bank)\n" +
	"!deposits - list collected deposits\n" +
	"!withdraw [method] - withdraw everything collected\n" +
	"!help - show this message"

type command struct {
	Name string
	Args []string
}

// parseCommand splits a "!name arg..." message. Anything else is not a command.
func parseCommand(content string) (command, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "!") {
		return command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, "!"))
	if len(fields) == 0 {
		return command{}, false
	}
	return command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

func parseAnswer(content string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(content)) {
	case "yes", "y", "confirm":
		return true, true
	case "no", "n", "cancel":
		return false, true
	}
	return false, false
}
