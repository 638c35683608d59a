package cli

import "github.com/spf13/cobra"

// completionCommand generates shell completion scripts. Asset IDs and
// --domain values complete from the active catalog.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for lens.

  bash        source <(lens completion bash)
  zsh         lens completion zsh > "${fpath[1]}/_lens"
  fish        lens completion fish | source
  powershell  lens completion powershell | Out-String | Invoke-Expression

Asset IDs complete from the catalog selected by --catalog or $LENS_CATALOG.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
