package shell

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// Run reads commands from in until exit, end of input or ctx is done. A
// prompt with the current path is shown only when in is a terminal.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	cr, err := cancelreader.NewReader(in)
	if err != nil {
		return err
	}
	defer cr.Close()

	stop := context.AfterFunc(ctx, func() {
		cr.Cancel()
	})
	defer stop()

	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	scanner := bufio.NewScanner(cr)
	for {
		if interactive {
			sh.printf("vfs:%s$ ", sh.session.CurrentPath())
		}
		if !scanner.Scan() {
			break
		}
		if sh.Execute(scanner.Text()) {
			return nil
		}
	}

	err = scanner.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cancelreader.ErrCanceled):
		return ctx.Err()
	default:
		return err
	}
}

// Help writes the startup banner listing the commands.
func (sh *Shell) Help() {
	sh.printf("Available commands:")
	for _, command := range Commands {
		sh.printf(" %s", command)
	}
	sh.printf("\n")
}
