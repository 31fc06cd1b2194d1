// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// artifactTypes maps file extensions to artifact classes. Classification
// is extension-only; file contents are never inspected.
var artifactTypes = map[string]ArtifactType{
	".png":  ArtifactScreenshot,
	".jpg":  ArtifactScreenshot,
	".jpeg": ArtifactScreenshot,
	".gif":  ArtifactScreenshot,
	".bmp":  ArtifactScreenshot,
	".webp": ArtifactScreenshot,

	".mp4":  ArtifactVideo,
	".webm": ArtifactVideo,
	".mov":  ArtifactVideo,
	".avi":  ArtifactVideo,

	".log": ArtifactLog,
	".txt": ArtifactLog,
	".out": ArtifactLog,

	".pdf":  ArtifactDocument,
	".html": ArtifactDocument,
	".md":   ArtifactDocument,
	".json": ArtifactDocument,
	".csv":  ArtifactDocument,
}

// CollectArtifacts lists the files directly under dir and classifies
// each by extension. Files with unrecognized extensions are omitted.
// Entries come back in name order, so repeated calls on an unchanged
// directory return an equal list apart from timestamps.
func CollectArtifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading artifact dir %s: %w", dir, err)
	}

	now := time.Now().UTC()
	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		kind, ok := artifactTypes[ext]
		if !ok {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Type:        kind,
			Path:        filepath.Join(dir, entry.Name()),
			Description: fmt.Sprintf("%s produced by agent run (%s)", kind, entry.Name()),
			Timestamp:   now,
		})
	}
	return artifacts, nil
}
