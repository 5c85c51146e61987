package modkeeper

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/modkeeper/internal/version"
	"github.com/arthur-debert/modkeeper/pkg/config"
	"github.com/arthur-debert/modkeeper/pkg/style"
)

func (a *app) newListCmd() *cobra.Command {
	var filter, factorioVersion string

	cmd := &cobra.Command{
		Use:       "list [mods|modpacks]",
		Short:     MsgListShort,
		GroupID:   "library",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"mods", "modpacks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "mods"
			if len(args) == 1 {
				what = args[0]
			}
			out := cmd.OutOrStdout()
			switch what {
			case "mods":
				a.println(out, a.renderer.RenderMods(a.lib.Filter(filter, factorioVersion)))
				a.print(out, MsgAggregateMods, a.lib.Aggregator.AllModsActive())
			case "modpacks":
				a.println(out, a.renderer.RenderModpacks(a.lib.Graph.All()))
				a.print(out, MsgAggregateModpacks, a.lib.Aggregator.AllModpacksActive())
			default:
				return fmt.Errorf(MsgErrUnknownListing, what)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", MsgFlagFilter)
	cmd.Flags().StringVar(&factorioVersion, "factorio-version", "", MsgFlagFactorio)
	return cmd
}

func (a *app) newAddCmd() *cobra.Command {
	var move bool

	cmd := &cobra.Command{
		Use:     "add <archive>...",
		Short:   MsgAddShort,
		GroupID: "library",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a.lib.Aggregator.BeginUpdateTemplates()
			defer func() {
				if endErr := a.lib.Aggregator.EndUpdateTemplates(false); err == nil {
					err = endErr
				}
			}()

			for _, path := range args {
				mod, err := a.lib.AddModFile(path, move)
				if err != nil {
					return err
				}
				a.print(cmd.OutOrStdout(), MsgModAdded, style.SuccessIndicator, mod)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&move, "move", false, MsgFlagMove)
	return cmd
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name[@version]>...",
		Short:   MsgRemoveShort,
		GroupID: "library",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := a.lib.ResolveMods(args)
			if err != nil {
				return err
			}
			if err := a.lib.DeleteMods(mods); err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), MsgModsRemoved, style.SuccessIndicator, len(mods))
			return nil
		},
	}
}

func (a *app) newEnableCmd(enable bool) *cobra.Command {
	use, short, done := "enable", MsgEnableShort, MsgModsEnabled
	if !enable {
		use, short, done = "disable", MsgDisableShort, MsgModsDisabled
	}
	return &cobra.Command{
		Use:     use + " <name[@version]>...",
		Short:   short,
		GroupID: "library",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := a.lib.ResolveMods(args)
			if err != nil {
				return err
			}
			if err := a.lib.Aggregator.SetModsActive(mods, enable); err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), done, style.SuccessIndicator, len(mods))
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       MsgConfigShort,
		GroupID:     "misc",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStandalone: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.GenerateConfigContent())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       MsgVersionShort,
		GroupID:     "misc",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStandalone: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Annotations:           map[string]string{annotationStandalone: "true"},
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

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:         "man",
		Short:       MsgManShort,
		GroupID:     "misc",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStandalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "MODKEEPER",
				Section: "1",
				Source:  "modkeeper " + version.Version,
				Manual:  "modkeeper manual",
			}
			return doc.GenManTree(cmd.Root(), header, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", MsgFlagManDir)
	return cmd
}
