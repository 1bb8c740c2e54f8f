// Package artifact generates and manages the YAML file consumed by the
// voice-assistant bridge.
//
// Render is a pure transform from a decision map to the file content;
// Manager handles the disk side (timestamped backups, atomic
// temp-and-rename writes) and the optional foreign configuration file
// imported on first run.
package artifact
