package runner

import (
	"errors"
	"fmt"
	"strings"
)

// CommandKind names a runner command.
type CommandKind string

const (
	CmdAnswer CommandKind = "answer"
	CmdMentor CommandKind = "mentor"
	CmdBack   CommandKind = "back"
	CmdNext   CommandKind = "next"
	CmdGoto   CommandKind = "goto"
	CmdList   CommandKind = "list"
	CmdTotal  CommandKind = "total"
	CmdExport CommandKind = "export"
	CmdImport CommandKind = "import"
	CmdStatus CommandKind = "status"
	CmdHelp   CommandKind = "help"
	CmdQuit   CommandKind = "quit"
)

// ErrUnknownCommand is returned for a ":" line that names no command.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one parsed input line.
type Command struct {
	Kind CommandKind
	Arg  string
}

var argRequired = map[CommandKind]bool{
	CmdGoto:   true,
	CmdExport: true,
	CmdImport: true,
}

var noArg = map[CommandKind]bool{
	CmdMentor: true,
	CmdBack:   true,
	CmdNext:   true,
	CmdList:   true,
	CmdTotal:  true,
	CmdStatus: true,
	CmdHelp:   true,
	CmdQuit:   true,
}

// ParseCommand interprets a sanitized input line.
func ParseCommand(line string) (Command, error) {
	if strings.HasPrefix(line, "::") {
		return Command{Kind: CmdAnswer, Arg: line[1:]}, nil
	}
	if !strings.HasPrefix(line, ":") {
		return Command{Kind: CmdAnswer, Arg: line}, nil
	}

	name, arg, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
	kind := CommandKind(strings.ToLower(name))
	arg = strings.TrimSpace(arg)

	switch {
	case kind == "exit" || kind == "q":
		return Command{Kind: CmdQuit}, nil
	case argRequired[kind]:
		if arg == "" {
			return Command{}, fmt.Errorf(":%s needs an argument", kind)
		}
	case noArg[kind]:
		if arg != "" {
			return Command{}, fmt.Errorf(":%s takes no argument", kind)
		}
	default:
		return Command{}, fmt.Errorf("%w ':%s' (try :help)", ErrUnknownCommand, name)
	}
	return Command{Kind: kind, Arg: arg}, nil
}

const helpText = `Commands:
  :mentor        show the mentor answer
  :back          edit your answer again
  :next          start or go to the next case
  :goto N|KEY    jump to a node
  :list          list nodes and progress
  :total         jump to the summary
  :export PATH   export your solution
  :import PATH   import a solution
  :status        last export or import
  :quit          close the session
Any other line is your answer.`
