package system

import (
	"github.com/julianstephens/mindbloom/internal/cli"
)

type ValidateCmd struct {
	JSON bool `help:"Print conflicts as JSON."`
}

// Run reports conflicts without failing; they describe data, not a broken command.
func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	if !cmd.JSON {
		ctx.Println("Validating journal and mood entries...")
	}
	result, err := validateOwner(ctx, owner)
	if err != nil {
		return err
	}

	if cmd.JSON {
		return cli.WriteJSON(ctx.Out, result.Conflicts)
	}
	ctx.Println()
	ctx.Printf("%s", result.FormatReport())
	return nil
}
