package modkeeper

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/modkeeper/pkg/style"
	"github.com/arthur-debert/modkeeper/pkg/updates"
)

func (a *app) newUpdateCmd() *cobra.Command {
	var yes, check bool

	cmd := &cobra.Command{
		Use:     "update",
		Short:   MsgUpdateShort,
		Long:    MsgUpdateLong,
		GroupID: "portal",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			bar := a.startProgress(cmd.ErrOrStderr(), MsgProgressScan)
			scan, err := a.lib.Updates.GetModUpdates(ctx, bar.Func())
			bar.Stop()
			if err != nil {
				return err
			}

			for _, status := range scan.Statuses {
				if status.State == updates.QueryFailed {
					a.print(out, MsgQueryFailed, style.WarningIndicator, status.Mod)
				}
			}
			if len(scan.Updates) == 0 {
				a.println(out, MsgNoUpdates)
				return nil
			}

			a.print(out, MsgUpdatesFound, len(scan.Updates))
			rows := make([][]string, 0, len(scan.Updates))
			for _, u := range scan.Updates {
				rows = append(rows, []string{
					u.Mod.Name,
					u.Mod.Version.String(),
					u.Release.Version.String(),
					u.Release.FactorioVersion,
				})
			}
			a.println(out, a.renderer.RenderTable([]string{"Name", "Installed", "Available", "Factorio"}, rows))
			if check {
				return nil
			}

			if !yes {
				ok, err := a.confirm(fmt.Sprintf(MsgConfirmUpdate, len(scan.Updates)))
				if err != nil {
					return err
				}
				if !ok {
					a.println(out, MsgUpdateAborted)
					return nil
				}
			}

			bar = a.startProgress(cmd.ErrOrStderr(), MsgProgressApply)
			result, err := a.lib.Updates.ApplyUpdates(ctx, scan.Updates, a.cfg.Credentials(), bar.Func())
			bar.Stop()
			if result != nil {
				for _, r := range result.Applied {
					a.print(out, MsgUpdateApplied, style.SuccessIndicator, r.New.Name, r.Old.Version, r.New.Version)
				}
				if len(result.Remaining) > 0 {
					a.print(out, MsgUpdatesRemaining, style.WarningIndicator, len(result.Remaining))
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVar(&check, "check", false, MsgFlagCheck)
	return cmd
}

// confirm asks a yes/no question. Without a terminal there is nobody to ask.
func (a *app) confirm(question string) (bool, error) {
	if !a.interactive {
		return false, fmt.Errorf(MsgErrNeedConfirm)
	}
	return pterm.DefaultInteractiveConfirm.WithDefaultText(question).Show()
}
