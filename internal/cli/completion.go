package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the shell completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ghgraph. Flags such as --format
and --geo complete their accepted values.

To load completions:

Bash:
  $ source <(ghgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ ghgraph completion bash > /etc/bash_completion.d/ghgraph
  # macOS:
  $ ghgraph completion bash > $(brew --prefix)/etc/bash_completion.d/ghgraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ ghgraph completion zsh > "${fpath[1]}/_ghgraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ ghgraph completion fish | source

  # To load completions for each session, execute once:
  $ ghgraph completion fish > ~/.config/fish/completions/ghgraph.fish

PowerShell:
  PS> ghgraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> ghgraph completion powershell > ghgraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

// fixedCompletions completes a flag from a closed set of values. Comma
// lists complete their last element.
func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		done := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			done = toComplete[:i+1]
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, done+v)
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
