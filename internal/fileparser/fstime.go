package fileparser

import (
	"os"
	"time"
)

// creationTime approximates filesystem creation time. The stdlib
// exposes no portable birth-time field on os.FileInfo, so modification
// time is used as the closest available stand-in; this only matters
// for the rare file whose name carries no timestamp and whose platform
// also lacks full per-line timestamps.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
