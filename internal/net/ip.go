package net

import (
	"fmt"
	"net"
	"strings"

	"InkBoard/internal/logging"
)

// LinkScheme prefixes share links handed to other machines.
const LinkScheme = "localboard://"

// WebSocketPath is where the hub is mounted.
const WebSocketPath = "/ws"

// OutgoingIP finds the local address other machines on the LAN can reach.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Offline networks: fall back to the first usable interface.
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the address of the first up, non-loopback interface.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logging.For("net").Warn("no LAN address found, using loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink builds the link a client opens to join a host.
func ShareLink(host string, port int) string {
	return LinkScheme + net.JoinHostPort(host, fmt.Sprint(port))
}

// IsLink reports whether s is a share link.
func IsLink(s string) bool { return strings.HasPrefix(s, LinkScheme) }

// ParseLink turns a share link into the hub websocket URL.
func ParseLink(link string) (string, error) {
	addr, ok := strings.CutPrefix(link, LinkScheme)
	if !ok {
		return "", fmt.Errorf("not a %s link: %q", LinkScheme, link)
	}
	addr = strings.TrimSuffix(addr, "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("parse link %q: %w", link, err)
	}
	return HubURL(addr), nil
}

// HubURL is the websocket URL of a hub at host:port.
func HubURL(addr string) string {
	return "ws://" + addr + WebSocketPath
}
