package crashid

import "regexp"

// ExtractComponent finds "{<appPackage>/<component>" in a framework error
// message, as in "Unable to start activity ComponentInfo{pkg/pkg.Main}: ...".
func ExtractComponent(appPackage, message string) (string, bool) {
	if appPackage == "" || message == "" {
		return "", false
	}

	pattern := regexp.MustCompile(`\{` + regexp.QuoteMeta(appPackage) + `/([^}]+)`)
	matches := pattern.FindStringSubmatch(message)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}
