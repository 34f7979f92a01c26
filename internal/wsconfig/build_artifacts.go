package wsconfig

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// BuildArtifactDetector enriches a project's default ignore set with
// build-output directories inferred from language-specific manifests.
// Adapted from standardbeagle-lci/internal/config/build_artifact_detector.go,
// trimmed to two manifest formats (Rust via Cargo.toml, Python via
// pyproject.toml). package.json is not scanned, so JavaScript/TypeScript
// output directories (such as an "--outDir" in its scripts) are not
// detected.
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector returns a detector rooted at projectRoot.
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans recognized manifest files and returns glob
// patterns for detected build-output directories.
func (d *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, d.detectCargoOutputs()...)
	patterns = append(patterns, d.detectPyprojectOutputs()...)
	return dedup(patterns)
}

func (d *BuildArtifactDetector) detectCargoOutputs() []string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var cargo struct {
		Profile struct {
			Release struct {
				TargetDir string `toml:"target-dir"`
			} `toml:"release"`
		} `toml:"profile"`
	}
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}
	if cargo.Profile.Release.TargetDir == "" {
		return nil
	}
	return []string{"**/" + cargo.Profile.Release.TargetDir + "/**"}
}

func (d *BuildArtifactDetector) detectPyprojectOutputs() []string {
	data, err := os.ReadFile(filepath.Join(d.projectRoot, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var pyproject struct {
		Tool struct {
			Poetry struct {
				Build struct {
					TargetDir string `toml:"target-dir"`
				} `toml:"build"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if toml.Unmarshal(data, &pyproject) != nil {
		return nil
	}
	if pyproject.Tool.Poetry.Build.TargetDir == "" {
		return nil
	}
	return []string{"**/" + pyproject.Tool.Poetry.Build.TargetDir + "/**"}
}
