package modkeeper

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort           = "Manage a library of Factorio mods and modpacks"
	MsgListShort           = "List installed mods or modpacks"
	MsgAddShort            = "Install mod archives into the library"
	MsgRemoveShort         = "Delete installed mods"
	MsgEnableShort         = "Enable mods"
	MsgDisableShort        = "Disable mods"
	MsgModpackShort        = "Create and edit modpacks"
	MsgModpackCreateShort  = "Create an empty modpack"
	MsgModpackRenameShort  = "Rename a modpack"
	MsgModpackDeleteShort  = "Delete modpacks"
	MsgModpackAddShort     = "Add mods or modpacks to a modpack"
	MsgModpackRemoveShort  = "Remove mods or modpacks from a modpack"
	MsgModpackEnableShort  = "Enable every mod in modpacks"
	MsgModpackDisableShort = "Disable every mod in modpacks"
	MsgModpackShowShort    = "Show a modpack's contents"
	MsgUpdateShort         = "Check for and apply mod updates"
	MsgImportShort         = "Import modpack manifests"
	MsgExportShort         = "Export modpacks as a manifest"
	MsgConfigShort         = "Print a commented default config file"
	MsgVersionShort        = "Print version information"
	MsgCompletionShort     = "Generate shell completion script"
	MsgManShort            = "Generate man pages"

	// Status messages
	MsgModAdded           = "%s Added %s\n"
	MsgModsRemoved        = "%s Removed %d mod(s)\n"
	MsgModsEnabled        = "%s Enabled %d mod(s)\n"
	MsgModsDisabled       = "%s Disabled %d mod(s)\n"
	MsgAggregateMods      = "All mods: %s\n"
	MsgAggregateModpacks  = "All modpacks: %s\n"
	MsgModpackCreated     = "%s Created modpack %q\n"
	MsgModpackRenamed     = "%s Renamed modpack %q to %q\n"
	MsgModpacksDeleted    = "%s Deleted %d modpack(s)\n"
	MsgModpackEntryAdded  = "%s Added %s to %q\n"
	MsgModpackEntryExists = "%s %q already contains %s\n"
	MsgModpackEntryGone   = "%s Removed %s from %q\n"
	MsgModpacksEnabled    = "%s Enabled %d modpack(s)\n"
	MsgModpacksDisabled   = "%s Disabled %d modpack(s)\n"
	MsgNoUpdates          = "All mods are up to date."
	MsgUpdatesFound       = "%d update(s) available:\n"
	MsgQueryFailed        = "%s No portal data for %s\n"
	MsgUpdateApplied      = "%s Updated %s %s -> %s\n"
	MsgUpdatesRemaining   = "%s %d update(s) not applied\n"
	MsgConfirmUpdate      = "Apply %d update(s)?"
	MsgUpdateAborted      = "No updates applied."
	MsgImportDownloaded   = "%s Downloaded %s\n"
	MsgImportConflict     = "%s %s conflicts with installed %s\n"
	MsgImportNoData       = "%s No release found for %s\n"
	MsgImportCreated      = "%s Created modpack %q\n"
	MsgImportMissing      = "%s %s is not installed, left out of its modpack\n"
	MsgImportRejected     = "%s Cannot nest %q in %q: %v\n"
	MsgImportSummary      = "Imported %s: %d download(s), %d mod reference(s), %d nested modpack(s)\n"
	MsgImportPlanSummary  = "%s: %d to download, %d satisfied, %d conflict(s), %d without data\n"
	MsgExportWritten      = "%s Exported %d modpack(s) to %s\n"
	MsgVersionFormat      = "modkeeper version %s\n  commit: %s\n  built:  %s\n"

	// Progress titles
	MsgProgressScan     = "Checking for updates"
	MsgProgressApply    = "Applying updates"
	MsgProgressImport   = "Importing %s"
	MsgProgressResolve  = "Resolving %s"
	MsgProgressFinished = "Done"

	// Error messages
	MsgErrLoadConfig     = "failed to load configuration: %w"
	MsgErrOpenLibrary    = "failed to open mod library: %w"
	MsgErrNoCommand      = "no command specified"
	MsgErrNeedConfirm    = "refusing to apply updates without a terminal; pass --yes"
	MsgErrUnknownListing = "unknown listing %q, expected mods or modpacks"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default $XDG_CONFIG_HOME/modkeeper/config.toml)"
	MsgFlagMetricsFile = "Write Prometheus metrics to this file on exit"
	MsgFlagTraceFile   = "Write trace spans as JSON lines to this file"
	MsgFlagFilter      = "Only list mods whose name or title contains this text"
	MsgFlagFactorio    = "Only list mods for this Factorio version"
	MsgFlagMove        = "Move archives instead of copying them"
	MsgFlagModpacks    = "Treat entries as modpack names"
	MsgFlagYes         = "Apply updates without asking"
	MsgFlagCheck       = "Only list available updates"
	MsgFlagPlan        = "Only show what the import would do"
	MsgFlagOutput      = "Manifest file to write (.json, .yaml or .yml); stdout when empty"
	MsgFlagVersions    = "Record mod versions in the manifest"
	MsgFlagManDir      = "Directory to write man pages to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/import-long.txt
	msgImportLongRaw string
	MsgImportLong    = strings.TrimSpace(msgImportLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
