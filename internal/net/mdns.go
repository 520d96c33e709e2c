package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"InkBoard/internal/logging"
)

const serviceType = "_localboard._tcp"

// Advertise announces a hub on the LAN until the returned server is shut
// down.
func Advertise(name string, port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if name == "" {
		name = host
	}
	service, err := mdns.NewMDNSService(name, serviceType, "", "", port, []net.IP{firstIPv4()}, []string{"InkBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.For("mdns").Info("advertising", "name", name, "port", port)
	return server, nil
}

// Browse lists the host:port of hubs answering within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	found := make(chan []string, 1)
	go func() {
		var addrs []string
		seen := make(map[string]bool)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
			if !seen[addr] {
				seen[addr] = true
				addrs = append(addrs, addr)
			}
		}
		found <- addrs
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		params.Timeout = time.Until(deadline)
	}
	err := mdns.Query(params)
	close(entries)
	addrs := <-found
	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	return addrs, nil
}
