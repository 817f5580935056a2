package loader

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/mwiater/difr/internal/audit"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// BuildManifest lists the audit files directly inside dataDir, sorted by
// name. Other files, including manifest.json itself, are ignored.
func BuildManifest(fs afero.Fs, dataDir string) (Manifest, error) {
	entries, err := afero.ReadDir(fs, dataDir)
	if err != nil {
		return Manifest{}, eris.Wrapf(err, "unable to read data dir %s", dataDir)
	}
	manifest := Manifest{Files: []string{}}
	for _, entry := range entries {
		if entry.IsDir() || !audit.MatchesPattern(entry.Name()) {
			continue
		}
		manifest.Files = append(manifest.Files, entry.Name())
	}
	sort.Strings(manifest.Files)
	return manifest, nil
}

// WriteManifest builds the manifest for dataDir and writes it to
// dataDir/manifest.json.
func WriteManifest(fs afero.Fs, dataDir string) (Manifest, error) {
	manifest, err := BuildManifest(fs, dataDir)
	if err != nil {
		return Manifest{}, err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Manifest{}, eris.Wrap(err, "unable to marshal manifest")
	}
	data = append(data, '\n')
	target := filepath.Join(dataDir, ManifestName)
	if err := afero.WriteFile(fs, target, data, 0o644); err != nil {
		return Manifest{}, eris.Wrapf(err, "unable to write %s", target)
	}
	return manifest, nil
}

// CopyData copies every audit file directly inside srcDir on src into dstDir
// on dst, along with the manifest. When srcDir has no manifest one is
// generated from the copied files. It returns the number of audit files
// copied.
func CopyData(src afero.Fs, srcDir string, dst afero.Fs, dstDir string) (int, error) {
	listed, err := BuildManifest(src, srcDir)
	if err != nil {
		return 0, err
	}
	if err := dst.MkdirAll(dstDir, 0o755); err != nil {
		return 0, eris.Wrapf(err, "unable to create %s", dstDir)
	}
	for _, name := range listed.Files {
		if err := copyFile(src, filepath.Join(srcDir, name), dst, filepath.Join(dstDir, name)); err != nil {
			return 0, err
		}
	}

	manifestPath := filepath.Join(srcDir, ManifestName)
	exists, err := afero.Exists(src, manifestPath)
	if err != nil {
		return 0, eris.Wrapf(err, "unable to stat %s", manifestPath)
	}
	if exists {
		err = copyFile(src, manifestPath, dst, filepath.Join(dstDir, ManifestName))
	} else {
		_, err = WriteManifest(dst, dstDir)
	}
	if err != nil {
		return 0, err
	}
	return len(listed.Files), nil
}

func copyFile(src afero.Fs, from string, dst afero.Fs, to string) error {
	data, err := afero.ReadFile(src, from)
	if err != nil {
		return eris.Wrapf(err, "unable to read %s", from)
	}
	if err := afero.WriteFile(dst, to, data, 0o644); err != nil {
		return eris.Wrapf(err, "unable to write %s", to)
	}
	return nil
}
