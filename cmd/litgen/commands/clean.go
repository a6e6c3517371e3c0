package commands

import (
	"git.home.luguber.info/inful/litgen/internal/build"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	dir, cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	return build.NewOrchestrator(dir, cfg, nil).Workspace().Clean()
}
