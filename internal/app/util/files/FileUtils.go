package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"media2text/internal/app/errors"
	"media2text/internal/app/model"
)

// ListCandidates returns the regular, non-hidden files of dir sorted by name.
func ListCandidates(dir string) ([]model.FileInfo, error) {
	return listFiles(dir, func(string) bool { return true })
}

// ListByExtension returns the regular, non-hidden files of dir whose
// extension matches ext case-insensitively, sorted by name.
func ListByExtension(dir, ext string) ([]model.FileInfo, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return listFiles(dir, func(name string) bool {
		return strings.ToLower(filepath.Ext(name)) == ext
	})
}

func listFiles(dir string, keep func(name string) bool) ([]model.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("input directory", dir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read input directory %s", dir)
	}

	var fileInfos []model.FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !keep(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", name)
		}
		fileInfos = append(fileInfos, model.FileInfo{
			FullPath: filepath.Join(dir, name),
			ModTime:  info.ModTime(),
			Name:     name,
			Size:     info.Size(),
		})
	}

	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].Name < fileInfos[j].Name
	})
	return fileInfos, nil
}

// ReadTextFile reads the file and returns its content with surrounding
// whitespace trimmed.
func ReadTextFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}
