// Package exposure implements the exposure resolution engine: the
// layered rule model deciding, per entity, whether it is exposed to the
// voice-assistant bridge.
//
// The model combines bulk rules (domain inclusion, area exclusion, glob
// pattern exclusion) with per-entity and per-device overrides. Overrides
// carry three states: unset, implied (written by propagation), and
// selected (written only by direct user action). The propagation state
// machine keeps device and entity overrides mutually consistent without
// ever overwriting a selected choice; Resolve then folds rules and
// overrides into a final exposed/excluded/unset decision per entity.
//
// Resolution is pure: it takes an immutable topology snapshot and one
// Config value and holds no state between calls. All mutation happens
// through Session edits, which run propagation synchronously so the
// working copy is consistent before the next read.
package exposure
