package languages

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// ManifestFile is the Android manifest file name.
const ManifestFile = "AndroidManifest.xml"

type manifest struct {
	XMLName xml.Name `xml:"manifest"`
	Package string   `xml:"package,attr"`
}

// ReadManifestPackage returns the package attribute of an Android manifest.
// Manifests built with AGP 7+ may omit it, in which case "" is returned.
func ReadManifestPackage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ParseManifestPackage(data)
}

// ParseManifestPackage is ReadManifestPackage for in-memory content.
func ParseManifestPackage(data []byte) (string, error) {
	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("failed to parse manifest: %w", err)
	}
	return strings.TrimSpace(m.Package), nil
}
