package wsconfig

import "github.com/standardbeagle/wspace/internal/langs/jsonlang"

// ModuleKind is the CommonJS/ESM classification a manifest's "type" field
// drives, used to decide whether a bare ".js" file should be treated as a
// script rather than a module.
type ModuleKind int

const (
	ModuleKindUnspecified ModuleKind = iota
	ModuleKindCommonJS
	ModuleKindESM
)

// Manifest is the subset of a package.json-shaped document the workspace
// server cares about.
type Manifest struct {
	Type ModuleKind
}

type manifestDoc struct {
	Type string `json:"type"`
}

// ParseManifest decodes a package.json-shaped document's "type" field.
func ParseManifest(content string) (Manifest, error) {
	var doc manifestDoc
	if err := jsonlang.Decode(content, &doc); err != nil {
		return Manifest{}, err
	}
	switch doc.Type {
	case "module":
		return Manifest{Type: ModuleKindESM}, nil
	case "commonjs":
		return Manifest{Type: ModuleKindCommonJS}, nil
	default:
		return Manifest{Type: ModuleKindUnspecified}, nil
	}
}
