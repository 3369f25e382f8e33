// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for xlnotes.

Install instructions:
  Bash:       xlnotes completion bash > /etc/bash_completion.d/xlnotes
              echo 'source <(xlnotes completion bash)' >> ~/.bashrc
  Zsh:        xlnotes completion zsh > ~/.zsh/completions/_xlnotes
  Fish:       xlnotes completion fish > ~/.config/fish/completions/xlnotes.fish
  PowerShell: xlnotes completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				fmt.Fprintln(os.Stdout, "# xlnotes bash completion")
				fmt.Fprintln(os.Stdout, "# Install: xlnotes completion bash > /etc/bash_completion.d/xlnotes")
				fmt.Fprintln(os.Stdout, "# Or:      echo 'source <(xlnotes completion bash)' >> ~/.bashrc")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				fmt.Fprintln(os.Stdout, "# xlnotes zsh completion")
				fmt.Fprintln(os.Stdout, "# Install: xlnotes completion zsh > ~/.zsh/completions/_xlnotes")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				fmt.Fprintln(os.Stdout, "# xlnotes fish completion")
				fmt.Fprintln(os.Stdout, "# Install: xlnotes completion fish > ~/.config/fish/completions/xlnotes.fish")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				fmt.Fprintln(os.Stdout, "# xlnotes PowerShell completion")
				fmt.Fprintln(os.Stdout, "# Install: xlnotes completion powershell >> $PROFILE")
				fmt.Fprintln(os.Stdout)
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
