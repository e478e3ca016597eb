package model

import "time"

// FileInfo describes a candidate file found in the input directory.
type FileInfo struct {
	FullPath string
	ModTime  time.Time
	Name     string
	Size     int64
}
