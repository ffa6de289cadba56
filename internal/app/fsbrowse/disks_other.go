//go:build !linux

package fsbrowse

import (
	"lanshare/internal/pkg/errs"
)

// Disks falls back to reporting the platform root as the single disk on
// systems without /proc/mounts.
func Disks() ([]Disk, *errs.CustomError) {
	root, _ := Root()

	return []Disk{
		{
			Device:      root,
			Description: root,
			MountPoint:  root,
			IsSystem:    true,
		},
	}, nil
}
