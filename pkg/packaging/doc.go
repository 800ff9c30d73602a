// Package packaging builds installer volume sets from pack directories and
// installs them again.
//
// A build scans every pack directory (see Scanner for exclusion rules),
// writes the files back to back into one volume.Writer stream and records
// each file's logical offset in a YAML manifest stored next to the first
// volume. Installation loads the manifest, gates the packs through a
// rules.Engine (SelectPacks) and extracts the selected ones with an
// Extractor, which skips over the bytes of packs it does not need.
//
// Pack definition files look like:
//
//	packs:
//	  - id: core
//	    name: Core files
//	  - id: docs
//	    dir: documentation
//	    condition: "!platform.windows"
//	    optional: true
//	    exclude: ["*.tmp", "drafts/"]
//
// Optional packs are installed on request only. A default selection skips
// them whatever their condition says; when named, an optional pack is
// installed even if its condition is false. Packs that are not optional
// install by default when their condition holds and never otherwise.
package packaging
