//go:build darwin

package proc

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/noteports/noteports/pkg/model"
)

func listSockets() ([]model.SocketRecord, error) {
	// lsof exits non-zero when any single lookup fails but still prints the
	// rest, so only an empty output counts as an enumeration failure.
	out, err := exec.Command("lsof", "-nP", "-iTCP", "-sTCP:LISTEN", "-iUDP").Output()
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("lsof: %w", err)
	}

	var records []model.SocketRecord
	for i, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 9 || (i == 0 && fields[0] == "COMMAND") {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		proto := fields[7]
		if proto != "TCP" && proto != "UDP" {
			continue
		}

		name := fields[8]
		if strings.Contains(name, "->") {
			// Connected socket, not a bound listener.
			continue
		}
		addr, port := parseLsofAddr(name)
		if port < 1 || port > 65535 {
			continue
		}
		if fields[4] == "IPv6" {
			proto += "6"
		}

		records = append(records, model.SocketRecord{
			Port:     port,
			Protocol: proto,
			Address:  addr,
			PID:      pid,
			Process:  fields[0],
		})
	}
	return records, nil
}

// parseLsofAddr splits "127.0.0.1:8080", "*:8080", or "[::1]:8080".
func parseLsofAddr(s string) (string, int) {
	if strings.HasPrefix(s, "[") {
		end := strings.LastIndex(s, "]")
		if end == -1 || end+2 > len(s) || s[end+1] != ':' {
			return "", 0
		}
		port, err := strconv.Atoi(s[end+2:])
		if err != nil {
			return "", 0
		}
		ip := s[1:end]
		if ip == "" {
			ip = "::"
		}
		return ip, port
	}

	idx := strings.LastIndex(s, ":")
	if idx == -1 {
		return "", 0
	}
	port, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0
	}
	addr := s[:idx]
	if addr == "*" {
		addr = "0.0.0.0"
	}
	return addr, port
}
