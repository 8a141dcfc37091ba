// Package requirements reconciles the installed-package manifest against
// scanned imports and writes the resulting requirements file.
package requirements

import (
	"sort"
	"strings"

	"github.com/Sumatoshi-tech/reqfang/pkg/piplist"
)

// Filter intersects the installed packages against the used-imports set,
// minus the exclusion set. All name comparisons are case-insensitive.
//
// A nil used set means import scanning was disabled: only the exclusion
// filter applies. A non-nil empty set means scanning ran and found nothing,
// so nothing survives. The returned slice preserves the relative order of
// installed; unknown lists used names with no installed counterpart, sorted,
// and never affects kept.
func Filter(installed []piplist.Package, exclude []string, used map[string]struct{}) (kept []piplist.Package, unknown []string) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	installedNames := make(map[string]struct{}, len(installed))

	for _, pkg := range installed {
		name := strings.ToLower(pkg.Name)
		installedNames[name] = struct{}{}

		if _, skip := excluded[name]; skip {
			continue
		}

		if used != nil {
			if _, ok := used[name]; !ok {
				continue
			}
		}

		kept = append(kept, pkg)
	}

	for name := range used {
		if _, ok := installedNames[strings.ToLower(name)]; !ok {
			unknown = append(unknown, name)
		}
	}

	sort.Strings(unknown)

	return kept, unknown
}
