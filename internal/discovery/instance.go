package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Instance is a Moonraker server found on the local network.
type Instance struct {
	// Name is the advertised service instance name (e.g. "Moonraker-1a2b").
	Name string

	// Hostname is the mDNS hostname (e.g. "kobra.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the Moonraker HTTP port (7125 unless advertised otherwise)
	Port int

	// Metadata holds the TXT record as key/value pairs
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable description of the instance.
func (i *Instance) String() string {
	return fmt.Sprintf("%s (%s) at %s", i.Name, i.Hostname, net.JoinHostPort(i.IP, strconv.Itoa(i.Port)))
}

// BaseURL returns the HTTP API base URL for the instance.
func (i *Instance) BaseURL() string {
	return "http://" + net.JoinHostPort(i.IP, strconv.Itoa(i.Port))
}

// GetMetadata returns a TXT value, or "" if the key is absent.
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
