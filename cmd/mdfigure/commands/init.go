package commands

import (
	"fmt"

	"github.com/inful/mdfigure/internal/config"
)

// InitCmd writes a starter configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, cli *CLI) error {
	return RunInit(cli.Config, i.Force)
}

// RunInit creates the configuration file and prints next steps.
func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Println("Configuration initialized successfully")
	fmt.Println("Edit the file to point at your documentation tree, then run: mdfigure render")
	return nil
}
