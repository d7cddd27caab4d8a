package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/valgace/acectl/internal/logging"
)

const (
	// ServiceType is the mDNS service type Moonraker advertises
	ServiceType = "_moonraker._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a scan
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is Moonraker's default HTTP port
	DefaultPort = 7125
)

// ErrNoInstance is returned by FindOne when nothing answered.
var ErrNoInstance = errors.New("no Moonraker instance found")

// ErrMultipleInstances is returned by FindOne when the choice is ambiguous.
var ErrMultipleInstances = errors.New("multiple Moonraker instances found")

// Scanner handles mDNS discovery of Moonraker servers.
type Scanner struct {
	Timeout time.Duration
}

// NewScanner creates a scanner with the default timeout.
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for Moonraker instances until the timeout or ctx ends and
// returns everything that answered, deduplicated by address.
func (s *Scanner) Scan(ctx context.Context) ([]*Instance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu        sync.Mutex
		instances []*Instance
		seen      = make(map[string]bool)
	)
	entries := make(chan *zeroconf.ServiceEntry)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				inst := parseServiceEntry(entry)
				if inst == nil {
					continue
				}
				key := inst.BaseURL()

				mu.Lock()
				if !seen[key] {
					seen[key] = true
					instances = append(instances, inst)
					logging.Debug("Discovered Moonraker instance",
						zap.String("name", inst.Name),
						zap.String("url", key),
					)
				}
				mu.Unlock()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Instance(nil), instances...), nil
}

// FindOne scans and returns the only instance on the network.
func (s *Scanner) FindOne(ctx context.Context) (*Instance, error) {
	instances, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return pickOne(instances)
}

func pickOne(instances []*Instance) (*Instance, error) {
	switch len(instances) {
	case 0:
		return nil, ErrNoInstance
	case 1:
		return instances[0], nil
	default:
		names := make([]string, 0, len(instances))
		for _, inst := range instances {
			names = append(names, inst.BaseURL())
		}
		return nil, fmt.Errorf("%w: %s", ErrMultipleInstances, strings.Join(names, ", "))
	}
}

// parseServiceEntry converts a zeroconf entry to an Instance. Entries
// without an address are skipped.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Instance {
	if entry == nil {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Instance{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
