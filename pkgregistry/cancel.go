package pkgregistry

import (
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// cancelGrace is the delay between a graceful terminate and a forced kill,
// per spec section 4.5 ("graceful signal, then force after 500 ms grace").
const cancelGrace = 500 * time.Millisecond

// CancelInstallation finds every running process whose name matches one of
// managerName's known process names (e.g. apt's {apt, apt-get, dpkg}) and
// terminates them: a graceful Terminate first, then Kill if the process
// is still alive after cancelGrace.
func (r *Registry) CancelInstallation(managerName string) error {
	info, ok := r.managers[managerName]
	if !ok {
		return notFoundError(managerName)
	}
	if len(info.ProcessNames) == 0 {
		return nil
	}

	procs, err := process.Processes()
	if err != nil {
		return err
	}

	var matched []*process.Process
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if matchesAny(name, info.ProcessNames) {
			matched = append(matched, p)
		}
	}

	for _, p := range matched {
		_ = p.Terminate()
	}
	if len(matched) == 0 {
		return nil
	}

	time.Sleep(cancelGrace)

	for _, p := range matched {
		if alive, _ := p.IsRunning(); alive {
			_ = p.Kill()
		}
	}
	return nil
}

func matchesAny(name string, candidates []string) bool {
	for _, c := range candidates {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}
