package commands

// Command descriptions
const (
	MsgRootShort = "Build and install multi-volume packaged software"
	MsgRootLong  = `instkit packages directories ("packs") into a compressed stream split
across fixed-size volumes, and installs them again. Packs and panels can be
gated by conditions: platform checks, variable comparisons, file tests and
boolean expressions over them.`

	MsgBuildShort = "Package the packs of a definition file into volumes"
	MsgBuildLong  = `Build reads a YAML pack definition file and writes every pack into one
compressed stream split into volumes named <output>, <output>.1, ... A
manifest recording each file's offset is written to <output>.manifest.yaml.`
	MsgBuildExample = `  instkit build packs.yaml -o dist/app.pak
  instkit build packs.yaml -o dist/app.pak --max-size 100MB`

	MsgInstallShort = "Install packs from a volume set"
	MsgInstallLong  = `Install reads the manifest next to <volume>, evaluates each pack's
condition and extracts the selected packs into the target directory. Naming
packs installs only those; optional packs are installed only when named.`
	MsgInstallExample = `  instkit install dist/app.pak
  instkit install dist/app.pak docs extras -t /opt/app --var EDITION=pro`

	MsgEvalShort = "Evaluate condition ids or expressions"
	MsgEvalLong  = `Eval prints whether each argument holds. Arguments are condition ids,
shorthand expressions (a+b|!c) or complex expressions (@a && b || !c).`

	MsgConditionsShort      = "Inspect condition sets"
	MsgConditionsDumpShort  = "Write the loaded conditions as XML, YAML or TOML"
	MsgConditionsTypesShort = "List the condition types a document may use"
	MsgVersionShort         = "Print version information"
)

// Flag descriptions
const (
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Config file (default $XDG_CONFIG_HOME/instkit/config.toml)"
	MsgFlagOutput     = "Base path of the first volume"
	MsgFlagMaxSize    = "Maximum volume size, e.g. 650MB (overrides config)"
	MsgFlagReserve    = "Bytes to keep free on the first volume (overrides config)"
	MsgFlagTarget     = "Directory to install into"
	MsgFlagConditions = "XML condition document to load"
	MsgFlagVar        = "Set an install variable (NAME=VALUE, repeatable)"
	MsgFlagSearchPath = "Directory to search for missing volumes (repeatable)"
	MsgFlagFormat     = "Output format: xml, yaml or toml"
	MsgFlagNoPrompt   = "Never prompt for missing volumes"
)

// Output
const (
	MsgBuildDone       = "Built %d pack(s) into %d volume(s)"
	MsgBuildSize       = "%s of data, manifest at %s"
	MsgInstallDone     = "Installed %d file(s) (%s) into %s"
	MsgPackSelected    = "  + %s"
	MsgPackSkipped     = "  - %s (%s)"
	MsgNothingSelected = "No packs selected for installation"
	MsgEvalResult      = "%s: %s"
	MsgVolumePrompt    = "Volume %s is %s. Path to a copy"
)

// Error messages
const (
	MsgErrNoCommand   = "no command specified"
	MsgErrBadVar      = "invalid variable %q, expected NAME=VALUE"
	MsgErrPromptAbort = "no path given for volume %s"
)
