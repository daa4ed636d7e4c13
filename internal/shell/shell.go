// Package shell maps command lines onto VFS session operations and renders
// their results.
package shell

import (
	"fmt"
	"io"
	"strings"

	"vfsemu/internal/logging"
	"vfsemu/internal/vfs"

	"github.com/google/shlex"
	"github.com/muesli/termenv"
)

var (
	shellLogger = logging.GetLogger().WithPrefix("shell")
)

// Commands lists the supported commands in the order help shows them
var Commands = []string{"ls", "cd", "cat", "pwd", "exit"}

// Shell executes commands against a session and writes their output.
type Shell struct {
	session *vfs.Session
	out     *termenv.Output
}

// New returns a shell over session writing to w. Colours are used only when
// w is a terminal.
func New(session *vfs.Session, w io.Writer) *Shell {
	return &Shell{
		session: session,
		out:     termenv.NewOutput(w),
	}
}

// Session returns the session commands run against
func (sh *Shell) Session() *vfs.Session {
	return sh.session
}

func (sh *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(sh.out, format, args...)
}

// Execute runs one command line and reports whether it was exit. A line that
// cannot be tokenized is reported and otherwise ignored.
func (sh *Shell) Execute(line string) (exit bool) {
	args, err := shlex.Split(line)
	if err != nil {
		sh.printf("Error: cannot parse command: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	command := strings.ToLower(args[0])
	args = args[1:]
	shellLogger.Debug("Executing %s %q", command, args)

	switch command {
	case "exit":
		sh.printf("Exiting...\n")
		return true
	case "ls":
		sh.ls(args)
	case "cd":
		sh.cd(args)
	case "cat":
		sh.cat(args)
	case "pwd":
		sh.pwd(args)
	default:
		sh.printf("Error: unknown command '%s'\n", command)
	}
	return false
}

// ls prints one descriptor per child of the current directory. Arguments
// are ignored.
func (sh *Shell) ls(_ []string) {
	items := sh.session.ListCurrentDirectory()
	if len(items) == 0 {
		sh.printf("Directory is empty\n")
		return
	}

	for _, item := range items {
		desc, ok := sh.session.DescribeNode(item)
		if !ok {
			continue
		}
		if strings.HasPrefix(desc, "Directory:") {
			desc = sh.out.String(desc).Foreground(sh.out.Color("12")).Bold().String()
		}
		sh.printf("%s\n", desc)
	}
}

func (sh *Shell) cd(args []string) {
	if len(args) == 0 {
		sh.printf("Usage: cd <path>\n")
		return
	}

	path := args[0]
	if err := sh.session.ChangeDirectory(path); err != nil {
		shellLogger.Debug("cd %s: %v", path, err)
		sh.printf("Error: directory '%s' not found\n", path)
		return
	}
	sh.printf("Changed to: %s\n", sh.session.CurrentPath())
}

func (sh *Shell) cat(args []string) {
	if len(args) == 0 {
		sh.printf("Usage: cat <file>\n")
		return
	}

	name := args[0]
	content, ok := sh.session.GetFileContent(name)
	if !ok {
		sh.printf("Error: file '%s' not found or is not a file\n", name)
		return
	}
	sh.printf("Contents of '%s':\n%s\n", name, content)
}

func (sh *Shell) pwd(_ []string) {
	sh.printf("Current path: %s\n", sh.session.CurrentPath())
}
