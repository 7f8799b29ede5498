package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/controller"
	"todo/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command (swipe to dismiss).
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"dismiss"} }
func (c *RmCmd) Synopsis() string  { return "Delete tasks by number" }
func (c *RmCmd) Usage() string     { return "todo rm <n...>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, tasks *controller.Controller, args []string, out, errOut io.Writer) int {
	return runRemove(ctx, cfg, tasks, args, out, errOut)
}

// runRemove is the shared implementation for rm and done.
// Every position is resolved to an ID against the same listing before
// anything is deleted, so earlier deletions cannot shift later targets.
func runRemove(ctx context.Context, cfg *config.Config, tasks *controller.Controller, args []string, out, errOut io.Writer) int {
	positions, err := ParseTaskRefs(args)
	if err != nil {
		if err == ErrTaskRefRequired {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	ids, err := tasks.ResolvePositions(positions...)
	if err != nil {
		if errors.Is(err, controller.ErrPositionOutOfRange) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return storageFailure(errOut, err)
	}

	for _, id := range ids {
		if err := tasks.RemoveTask(ctx, id); err != nil {
			return storageFailure(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
