// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - GeoJSON export, sensor width table, coarse decimation for long tracks
// 0.2.0 - Ground-station coverage rings, control panel TUI
// 0.1.0 - Initial release: SGP4 ground track, time labels, swath edges
