package modkeeper

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/style"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

func (a *app) newModpackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "modpack",
		Short:   MsgModpackShort,
		GroupID: "library",
	}
	cmd.AddCommand(a.newModpackCreateCmd())
	cmd.AddCommand(a.newModpackRenameCmd())
	cmd.AddCommand(a.newModpackDeleteCmd())
	cmd.AddCommand(a.newModpackEditCmd(true))
	cmd.AddCommand(a.newModpackEditCmd(false))
	cmd.AddCommand(a.newModpackEnableCmd(true))
	cmd.AddCommand(a.newModpackEnableCmd(false))
	cmd.AddCommand(a.newModpackShowCmd())
	return cmd
}

func (a *app) newModpackCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: MsgModpackCreateShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pack, err := a.lib.Graph.Create(args[0])
			if err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), MsgModpackCreated, style.SuccessIndicator, pack.Name)
			return nil
		},
	}
}

func (a *app) newModpackRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: MsgModpackRenameShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			packs, err := a.lib.ResolveModpacks(args[:1])
			if err != nil {
				return err
			}
			if err := a.lib.Graph.Rename(packs[0], args[1]); err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), MsgModpackRenamed, style.SuccessIndicator, args[0], args[1])
			return nil
		},
	}
}

func (a *app) newModpackDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>...",
		Short: MsgModpackDeleteShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packs, err := a.lib.ResolveModpacks(args)
			if err != nil {
				return err
			}
			if err := a.lib.DeleteModpacks(packs); err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), MsgModpacksDeleted, style.SuccessIndicator, len(packs))
			return nil
		},
	}
}

// newModpackEditCmd builds "modpack add" and "modpack remove". Entries are
// mod specs unless --modpacks is given.
func (a *app) newModpackEditCmd(add bool) *cobra.Command {
	var nested bool

	use, short := "add", MsgModpackAddShort
	if !add {
		use, short = "remove", MsgModpackRemoveShort
	}
	cmd := &cobra.Command{
		Use:   use + " <modpack> <entry>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			packs, err := a.lib.ResolveModpacks(args[:1])
			if err != nil {
				return err
			}
			pack := packs[0]

			a.lib.Aggregator.BeginUpdateTemplates()
			defer func() {
				if endErr := a.lib.Aggregator.EndUpdateTemplates(false); err == nil {
					err = endErr
				}
			}()

			if nested {
				children, err := a.lib.ResolveModpacks(args[1:])
				if err != nil {
					return err
				}
				for _, child := range children {
					if err := a.editModpack(cmd, pack, child.Name, add, func() (bool, error) {
						if add {
							return a.lib.Graph.AddModpack(pack, child)
						}
						return true, a.lib.Graph.RemoveModpack(pack, child)
					}); err != nil {
						return err
					}
				}
				return nil
			}

			mods, err := a.lib.ResolveMods(args[1:])
			if err != nil {
				return err
			}
			for _, mod := range mods {
				if !add && pack.ModRef(mod) == nil {
					// A bare name resolves to every variant; skip the ones not in pack.
					continue
				}
				if err := a.editModpack(cmd, pack, mod.String(), add, func() (bool, error) {
					if add {
						return a.lib.Graph.AddMod(pack, mod)
					}
					return true, a.lib.Graph.RemoveMod(pack, mod)
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&nested, "modpacks", false, MsgFlagModpacks)
	return cmd
}

func (a *app) editModpack(cmd *cobra.Command, pack *types.Modpack, entry string, add bool, edit func() (bool, error)) error {
	changed, err := edit()
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrCycle) {
			return errors.Wrapf(err, errors.ErrCycle, "cannot add %q to %q", entry, pack.Name)
		}
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case !changed:
		a.print(out, MsgModpackEntryExists, style.InfoIndicator, pack.Name, entry)
	case add:
		a.print(out, MsgModpackEntryAdded, style.SuccessIndicator, entry, pack.Name)
	default:
		a.print(out, MsgModpackEntryGone, style.SuccessIndicator, entry, pack.Name)
	}
	return nil
}

func (a *app) newModpackEnableCmd(enable bool) *cobra.Command {
	use, short, done := "enable", MsgModpackEnableShort, MsgModpacksEnabled
	if !enable {
		use, short, done = "disable", MsgModpackDisableShort, MsgModpacksDisabled
	}
	return &cobra.Command{
		Use:   use + " <modpack>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packs, err := a.lib.ResolveModpacks(args)
			if err != nil {
				return err
			}
			if err := a.lib.Aggregator.SetModpacksActive(packs, enable); err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), done, style.SuccessIndicator, len(packs))
			return nil
		},
	}
}

func (a *app) newModpackShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <modpack>...",
		Short: MsgModpackShowShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packs, err := a.lib.ResolveModpacks(args)
			if err != nil {
				return err
			}
			for _, pack := range packs {
				a.println(cmd.OutOrStdout(), a.renderer.RenderModpackTree(pack))
			}
			return nil
		},
	}
}
