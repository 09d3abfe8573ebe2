// Package cli parses cmdsock arguments and renders help text.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
)

type Command string

const (
	CommandSubmit  Command = "submit"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandSubmit:  {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// Parsed is the normalized invocation.
type Parsed struct {
	Command     Command
	PayloadPath string
	ConfigPath  string
	SocketPath  string
	Wait        bool
	ShowHelp    bool
}

// Parse interprets args. A bare positional that is not a command name is the
// payload path, so `cmdsock cmd.json` and `cmdsock submit cmd.json` agree.
// Everything after `--` is positional.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandSubmit}
	var positionals, literal []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--":
			literal = args[i+1:]
			i = len(args)
		case "-h", "--help":
			parsed.ShowHelp = true
		case "--version":
			parsed.Command = CommandVersion
		case "--wait":
			parsed.Wait = true
		case "--config", "--socket":
			i++
			if i >= len(args) || strings.TrimSpace(args[i]) == "" {
				return Parsed{}, fmt.Errorf("%s requires a path", arg)
			}
			if arg == "--config" {
				parsed.ConfigPath = args[i]
			} else {
				parsed.SocketPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			positionals = append(positionals, arg)
		}
	}

	if parsed.ShowHelp {
		parsed.Command = CommandHelp
		return parsed, nil
	}
	if parsed.Command == CommandVersion {
		return parsed, nil
	}

	if len(positionals) > 0 {
		if _, ok := validCommands[Command(positionals[0])]; ok {
			parsed.Command = Command(positionals[0])
			positionals = positionals[1:]
		}
	}
	positionals = append(positionals, literal...)

	switch parsed.Command {
	case CommandSubmit:
		if len(positionals) > 1 {
			return Parsed{}, fmt.Errorf("unexpected arguments after payload path %q", positionals[0])
		}
		if len(positionals) == 1 {
			parsed.PayloadPath = positionals[0]
		}
	case CommandHelp:
		parsed.ShowHelp = true
		if len(positionals) > 0 {
			return Parsed{}, errors.New("help takes no arguments")
		}
	default:
		if len(positionals) > 0 {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
		}
	}

	return parsed, nil
}

// HelpText renders usage for binaryName.
func HelpText(binaryName string) string {
	return heredoc.Docf(`
		Usage:
		  %[1]s [flags] <payload-file>
		  %[1]s [flags] submit <payload-file>
		  %[1]s [flags] doctor
		  %[1]s version

		Sends the payload file's bytes verbatim to the daemon's unix socket.
		A payload path of "-" reads standard input.

		Commands:
		  submit    Send a payload file (default when a path is given)
		  doctor    Check configuration and socket reachability
		  version   Print version information
		  help      Show this help

		Flags:
		  --config PATH   Config file path (default: $XDG_CONFIG_HOME/cmdsock/config.jsonc)
		  --socket PATH   Daemon socket path (overrides socket.path)
		  --wait          Wait for the daemon's {"success","message"} reply
		  -h, --help      Show help
		  --version       Show version
		  --              Treat remaining arguments as the payload path
	`, binaryName)
}
