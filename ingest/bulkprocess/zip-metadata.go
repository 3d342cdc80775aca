package bulkprocess

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ArchiveSeparator joins a zip path and the name of a file inside it, e.g.
// "1234_20209_2_0.zip!1.3.12.2.1107.dcm".
const ArchiveSeparator = "!"

// ArchivePath names a file inside a zip archive.
func ArchivePath(zipPath, entry string) string {
	return zipPath + ArchiveSeparator + entry
}

// SplitArchivePath reverses ArchivePath. ok is false for plain file paths.
func SplitArchivePath(path string) (zipPath, entry string, ok bool) {
	idx := strings.Index(strings.ToLower(path), ".zip"+ArchiveSeparator)
	if idx < 0 {
		return path, "", false
	}
	cut := idx + len(".zip")
	return path[:cut], path[cut+len(ArchiveSeparator):], true
}

func isArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// ArchiveEntries lists the files of a zip as archive paths. Directory entries
// and the bulk download manifests are ignored.
func ArchiveEntries(zipPath string) ([]string, error) {
	rc, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer rc.Close()

	out := make([]string, 0, len(rc.File))
	for _, v := range rc.File {
		if v.FileInfo().IsDir() {
			continue
		}

		// Looking only at the dicoms
		if strings.HasPrefix(filepath.Base(v.Name), "manifest") {
			continue
		}

		out = append(out, ArchivePath(zipPath, v.Name))
	}
	sort.Strings(out)

	return out, nil
}
