package cli

import (
	"strings"

	"github.com/spf13/cobra"

	sceneio "github.com/matzehuels/sceneforest/pkg/io"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [" + strings.Join(completionShells, "|") + "]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script. Node names are completed from the
scene file given as the first argument.

  bash:        source <(sceneforest completion bash)
  zsh:         sceneforest completion zsh > "${fpath[1]}/_sceneforest"
  fish:        sceneforest completion fish | source
  powershell:  sceneforest completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeNodeArg completes the second positional argument with the node
// names of the scene file named by the first.
func (c *CLI) completeNodeArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.sceneNodes(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeNodeFlag completes a flag value with node names from the scene
// named by the first positional argument.
func (c *CLI) completeNodeFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.sceneNodes(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
}

// sceneNodes returns the nodes of the scene at path starting with prefix.
// Unreadable scenes complete to nothing.
func (c *CLI) sceneNodes(path, prefix string) []string {
	f, err := sceneio.Import(path, c.forestOptions())
	if err != nil {
		return nil
	}
	var out []string
	for _, n := range f.Nodes() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}
