// Package cli parses the command line of lasersvg, merges it with the
// optional configuration file, and maps failures to exit codes.
package cli
