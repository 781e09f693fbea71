package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// OtherInstances returns the pids of other running processes with the same
// executable name as this one. Two servers sharing a data directory can
// overwrite each other's stores.
func OtherInstances() ([]int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	return peers(procs, os.Getpid(), executableName()), nil
}

func executableName() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Base(exe)
	}
	return filepath.Base(os.Args[0])
}

func peers(procs []ps.Process, self int, name string) []int {
	var pids []int
	for _, p := range procs {
		if p.Pid() == self || p.PPid() == self {
			continue
		}
		if strings.EqualFold(p.Executable(), name) {
			pids = append(pids, p.Pid())
		}
	}
	return pids
}
