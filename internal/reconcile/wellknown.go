package reconcile

// wellKnownPorts labels undeclared listeners with a recognizable name. The
// hint is display-only; it never enters the catalog and never marks a port
// as declared.
var wellKnownPorts = map[int]string{
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	135:   "RPC",
	139:   "NetBIOS Session",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	1433:  "SQL Server",
	1521:  "Oracle",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	6379:  "Redis",
	8080:  "HTTP Proxy",
	8443:  "HTTPS Alt",
	9200:  "Elasticsearch",
	27017: "MongoDB",
}

// WellKnown returns the conventional service name for a port, or "" when the
// port has no conventional assignment.
func WellKnown(port int) string {
	return wellKnownPorts[port]
}
