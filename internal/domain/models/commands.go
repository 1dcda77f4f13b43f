package models

import "strings"

// CommandType enumerates supported herd commands sent over WhatsApp.
type CommandType string

const (
	CommandWeigh     CommandType = "weigh"
	CommandCost      CommandType = "cost"
	CommandADG       CommandType = "adg"
	CommandBreakEven CommandType = "breakeven"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

// Command represents a parsed instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return cmd
	}

	// Only the command word is case-insensitive; ear tags keep their case.
	switch head := CommandType(strings.TrimPrefix(strings.ToLower(tokens[0]), "/")); head {
	case CommandWeigh, CommandCost, CommandADG, CommandBreakEven, CommandHelp:
		cmd.Type = head
	case "be":
		cmd.Type = CommandBreakEven
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
