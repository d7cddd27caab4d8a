// Package discovery finds Moonraker servers on the local network over
// mDNS.
//
// Moonraker advertises itself as "_moonraker._tcp" in the "local." domain
// when its zeroconf component is enabled. A scan listens for the full
// timeout and returns every distinct instance that answered:
//
//	instances, err := discovery.NewScanner().Scan(ctx)
//	for _, inst := range instances {
//	    fmt.Println(inst.Name, inst.BaseURL())
//	}
//
// Multicast must be allowed on the interface (UDP 5353) and the printer
// must share the network segment.
package discovery
