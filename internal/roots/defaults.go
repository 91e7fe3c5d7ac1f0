package roots

import (
	"os"
	"path/filepath"
)

// containerMounts are the volume mount points checked when running inside
// a container.
var containerMounts = []string{
	"/mnt/documents",
	"/mnt/downloads",
	"/mnt/books",
	"/mnt/desktop",
	"/mnt/ebooks",
	"/mnt/calibre",
	"/mnt/kindle",
}

// DefaultDirectories returns the common ebook locations that exist on
// this machine: container mount points, home-relative library folders,
// and books/ebooks subdirectories of the working directory.
func DefaultDirectories() []string {
	var dirs []string

	for _, d := range containerMounts {
		if isDir(d) {
			dirs = append(dirs, d)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, d := range []string{
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Books"),
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Calibre Library"),
		} {
			if isDir(d) {
				dirs = append(dirs, d)
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		for _, d := range []string{
			cwd,
			filepath.Join(cwd, "books"),
			filepath.Join(cwd, "ebooks"),
		} {
			if isDir(d) {
				dirs = append(dirs, d)
			}
		}
	}

	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
