package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/controller"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
// Completing a task removes it from the list; there is no archive.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Complete tasks by number" }
func (c *DoneCmd) Usage() string     { return "todo done <n...>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, tasks *controller.Controller, args []string, out, errOut io.Writer) int {
	return runRemove(ctx, cfg, tasks, args, out, errOut)
}
