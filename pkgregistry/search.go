package pkgregistry

import (
	"context"
	"strings"
)

// SearchDependency runs every registered manager's search command for
// depName, parses each manager's output format, and returns the
// de-duplicated union of matches, per spec section 4.5.
func (r *Registry) SearchDependency(depName string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	seen := make(map[string]struct{})
	var results []string
	for _, name := range r.order {
		info := r.managers[name]
		out, err := r.run(ctx, info.SearchCommand(depName))
		if err != nil {
			continue
		}
		for _, match := range parseSearchOutput(name, out) {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			results = append(results, match)
		}
	}
	return results
}

// parseSearchOutput parses one package manager's raw search output into a
// list of package names, per the per-manager formats documented in spec
// section 4.5.
func parseSearchOutput(manager, output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch manager {
		case "apt":
			// "name/stable,now 1.2.3 amd64 [installed]"
			if idx := strings.Index(line, "/"); idx > 0 {
				names = append(names, line[:idx])
			}
		case "dnf", "yum":
			// "name.arch : summary"
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if idx := strings.LastIndex(fields[0], "."); idx > 0 {
				names = append(names, fields[0][:idx])
			}
		case "pacman":
			// "repo/name version"
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if idx := strings.Index(fields[0], "/"); idx > 0 {
				names = append(names, fields[0][idx+1:])
			}
		case "brew":
			// whitespace-separated tokens, one package per token
			names = append(names, strings.Fields(line)...)
		case "choco":
			// "name version" — first token
			fields := strings.Fields(line)
			if len(fields) > 0 {
				names = append(names, fields[0])
			}
		case "scoop":
			// names appear single- or double-quoted
			name := strings.Trim(line, "'\"")
			if name != "" && name == line {
				fields := strings.Fields(line)
				if len(fields) > 0 {
					names = append(names, fields[0])
				}
			} else if name != "" {
				names = append(names, name)
			}
		case "winget":
			// table: header line, separator line, then "Name  Id  Version ..."
			if strings.HasPrefix(line, "Name") || strings.HasPrefix(line, "---") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) > 0 {
				names = append(names, fields[0])
			}
		default:
			fields := strings.Fields(line)
			if len(fields) > 0 {
				names = append(names, fields[0])
			}
		}
	}
	return names
}
