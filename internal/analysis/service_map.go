package analysis

var commonPorts = map[string]string{
	"7000":  "master",
	"9000":  "tserver",
	"12000": "YCQL",
	"13000": "YSQL",
}

// ServiceName returns the YugabyteDB webserver listening on a default
// port, or the port itself.
func ServiceName(port string) string {
	if name, ok := commonPorts[port]; ok {
		return name
	}
	return port
}
