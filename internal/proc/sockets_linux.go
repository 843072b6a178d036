//go:build linux

package proc

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/noteports/noteports/pkg/model"
)

// Socket states from include/net/tcp_states.h. UDP reuses the same field;
// an unconnected (bound, no peer) UDP socket sits in TCP_CLOSE.
const (
	tcpListen      = "0A"
	udpUnconnected = "07"
)

// keepState filters the state column: TCP rows must be listening, UDP rows
// must be unconnected so client sockets with a peer don't read as listeners.
func keepState(tcp bool, state string) bool {
	if tcp {
		return state == tcpListen
	}
	return state == udpUnconnected
}

type socket struct {
	port     int
	address  string
	protocol string
}

func listSockets() ([]model.SocketRecord, error) {
	sockets, err := readSockets()
	if err != nil {
		return nil, err
	}

	owners := resolveOwners(sockets)

	records := make([]model.SocketRecord, 0, len(sockets))
	for inode, s := range sockets {
		rec := model.SocketRecord{
			Port:     s.port,
			Protocol: s.protocol,
			Address:  s.address,
		}
		if o, ok := owners[inode]; ok {
			rec.PID = o.pid
			rec.Process = o.name
		}
		records = append(records, rec)
	}
	return records, nil
}

// readSockets parses the four /proc/net socket tables into a map keyed by
// socket inode. TCP rows are kept only in LISTEN state; UDP rows only in the
// unconnected state, which is what a bound datagram listener looks like.
func readSockets() (map[string]socket, error) {
	sockets := make(map[string]socket)
	opened := 0

	parse := func(path, proto string, ipv6, tcp bool) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()
		opened++

		scanner := bufio.NewScanner(f)
		scanner.Scan() // skip header

		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 10 {
				continue
			}

			if !keepState(tcp, fields[3]) {
				continue
			}

			addr, port := parseAddr(fields[1], ipv6)
			if port < 1 || port > 65535 {
				continue
			}
			sockets[fields[9]] = socket{
				port:     port,
				address:  addr,
				protocol: proto,
			}
		}
	}

	parse("/proc/net/tcp", "TCP", false, true)
	parse("/proc/net/tcp6", "TCP6", true, true)
	parse("/proc/net/udp", "UDP", false, false)
	parse("/proc/net/udp6", "UDP6", true, false)

	if opened == 0 {
		return nil, fmt.Errorf("no /proc/net socket tables readable")
	}
	return sockets, nil
}

// parseAddr decodes the hex "ADDR:PORT" column of a /proc/net table.
// /proc/net/tcp6 stores IPv6 as 4 little-endian 32-bit groups.
func parseAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	port, _ := strconv.ParseInt(parts[1], 16, 32)

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	ip := strconv.Itoa(int(b[3])) + "." +
		strconv.Itoa(int(b[2])) + "." +
		strconv.Itoa(int(b[1])) + "." +
		strconv.Itoa(int(b[0]))
	return ip, int(port)
}

type owner struct {
	pid  int
	name string
}

// resolveOwners walks /proc/<pid>/fd looking for socket:[inode] links and
// maps each inode in sockets back to its process. Unreadable fd directories
// (other users' processes without root) and processes that exit mid-walk are
// skipped silently; their sockets stay owner-unknown.
func resolveOwners(sockets map[string]socket) map[string]owner {
	owners := make(map[string]owner)

	procs, err := os.ReadDir("/proc")
	if err != nil {
		return owners
	}

	for _, p := range procs {
		if !p.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(p.Name())
		if err != nil {
			continue
		}

		fdPath := fmt.Sprintf("/proc/%d/fd", pid)
		fds, err := os.ReadDir(fdPath)
		if err != nil {
			continue
		}

		name := ""
		for _, fd := range fds {
			link, err := os.Readlink(fmt.Sprintf("%s/%s", fdPath, fd.Name()))
			if err != nil {
				continue
			}
			if !strings.HasPrefix(link, "socket:[") {
				continue
			}
			inode := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
			if _, ok := sockets[inode]; !ok {
				continue
			}
			if name == "" {
				name = commName(pid)
			}
			owners[inode] = owner{pid: pid, name: name}
		}
	}
	return owners
}

func commName(pid int) string {
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}
