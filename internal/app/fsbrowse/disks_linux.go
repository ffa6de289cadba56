//go:build linux

package fsbrowse

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"lanshare/internal/pkg/errs"
)

// Disks enumerates mounted block-device filesystems from /proc/mounts.
// Pseudo filesystems (proc, sysfs, tmpfs and friends) are skipped; sizes come
// from statfs on each mount point. Mount points are reported with a trailing
// slash so clients can feed them straight back into the listing endpoint.
func Disks() ([]Disk, *errs.CustomError) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}
	defer f.Close()

	var disks []Disk
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		device, mountPoint := fields[0], fields[1]
		if !strings.HasPrefix(device, "/dev/") {
			continue
		}
		if _, dup := seen[device]; dup {
			continue
		}
		seen[device] = struct{}{}

		// Octal escapes in /proc/mounts cover spaces in mount points.
		mountPoint = strings.ReplaceAll(mountPoint, `\040`, " ")

		disk := Disk{
			Device:      device,
			Description: device,
			MountPoint:  mountPoint,
			IsSystem:    mountPoint == "/",
		}

		var stat unix.Statfs_t
		if err := unix.Statfs(mountPoint, &stat); err == nil {
			disk.Size = int64(stat.Blocks) * stat.Bsize
		}

		if !strings.HasSuffix(disk.MountPoint, "/") {
			disk.MountPoint += "/"
		}

		disks = append(disks, disk)
	}

	if err := scanner.Err(); err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return disks, nil
}
