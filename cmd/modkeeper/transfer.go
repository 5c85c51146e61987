package modkeeper

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/modkeeper/pkg/manifest"
	"github.com/arthur-debert/modkeeper/pkg/style"
)

func (a *app) newImportCmd() *cobra.Command {
	var planOnly bool

	cmd := &cobra.Command{
		Use:     "import <manifest>...",
		Short:   MsgImportShort,
		Long:    MsgImportLong,
		GroupID: "portal",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				m, err := manifest.ReadFile(a.lib.FS, path)
				if err != nil {
					return err
				}
				if planOnly {
					if err := a.showPlan(cmd, path, m); err != nil {
						return err
					}
					continue
				}
				if err := a.importManifest(cmd, path, m); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&planOnly, "plan", false, MsgFlagPlan)
	return cmd
}

func (a *app) showPlan(cmd *cobra.Command, path string, m *manifest.Manifest) error {
	bar := a.startProgress(cmd.ErrOrStderr(), fmt.Sprintf(MsgProgressResolve, path))
	plan, err := a.lib.Importer.Resolve(cmd.Context(), m, bar.Func())
	bar.Stop()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	a.reportPlan(cmd, plan)
	a.print(out, MsgImportPlanSummary, path, len(plan.ToDownload), len(plan.Satisfied), len(plan.Conflicts), len(plan.NoData))
	return nil
}

func (a *app) importManifest(cmd *cobra.Command, path string, m *manifest.Manifest) error {
	out := cmd.OutOrStdout()

	bar := a.startProgress(cmd.ErrOrStderr(), fmt.Sprintf(MsgProgressImport, path))
	result, err := a.lib.Importer.Import(cmd.Context(), m, a.cfg.Credentials(), bar.Func())
	bar.Stop()

	if result != nil {
		if result.Plan != nil {
			a.reportPlan(cmd, result.Plan)
		}
		for _, mod := range result.Downloaded {
			a.print(out, MsgImportDownloaded, style.SuccessIndicator, mod)
		}
	}
	if err != nil {
		return err
	}

	merge := result.Merge
	for _, pack := range merge.Created {
		a.print(out, MsgImportCreated, style.SuccessIndicator, pack.Name)
	}
	for _, req := range merge.Missing {
		a.print(out, MsgImportMissing, style.WarningIndicator, req)
	}
	for _, r := range merge.Rejected {
		a.print(out, MsgImportRejected, style.WarningIndicator, r.Child, r.Parent, r.Err)
	}
	a.print(out, MsgImportSummary, path, len(result.Downloaded), merge.AddedMods, merge.AddedModpacks)
	return nil
}

func (a *app) reportPlan(cmd *cobra.Command, plan *manifest.Plan) {
	out := cmd.OutOrStdout()
	for _, c := range plan.Conflicts {
		a.print(out, MsgImportConflict, style.WarningIndicator, c.Requirement, c.Existing)
	}
	for _, req := range plan.NoData {
		a.print(out, MsgImportNoData, style.WarningIndicator, req)
	}
}

func (a *app) newExportCmd() *cobra.Command {
	var output string
	var withVersions bool

	cmd := &cobra.Command{
		Use:     "export <modpack>...",
		Short:   MsgExportShort,
		GroupID: "portal",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packs, err := a.lib.ResolveModpacks(args)
			if err != nil {
				return err
			}
			m := manifest.Export(a.lib.Graph, packs, withVersions)

			if output == "" {
				data, err := manifest.Encode(m, manifest.JSON)
				if err != nil {
					return err
				}
				a.println(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := manifest.WriteFile(a.lib.FS, output, m); err != nil {
				return err
			}
			a.print(cmd.OutOrStdout(), MsgExportWritten, style.SuccessIndicator, len(m.Modpacks), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	cmd.Flags().BoolVar(&withVersions, "versions", false, MsgFlagVersions)
	return cmd
}
