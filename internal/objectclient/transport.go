// transport.go builds per-interface HTTP transports so multi-interface runs
// can pin egress to a specific NIC by constructing a dedicated client per
// interface rather than juggling socket options at the application layer.
package objectclient

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// NewHTTPClient returns an *http.Client whose outbound connections originate
// from the named network interface's first usable address. An empty
// ifaceName returns a client using the default route, unmodified.
func NewHTTPClient(ifaceName string) (*http.Client, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	if ifaceName != "" {
		localAddr, err := interfaceLocalAddr(ifaceName)
		if err != nil {
			return nil, err
		}
		dialer.LocalAddr = localAddr
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}, nil
}

// interfaceLocalAddr resolves the first usable IPv4 (falling back to IPv6)
// address bound to the named interface, for use as a net.Dialer.LocalAddr.
func interfaceLocalAddr(ifaceName string) (net.Addr, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("interface %q not found: %w", ifaceName, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses for interface %q: %w", ifaceName, err)
	}

	var ipv6Fallback *net.TCPAddr
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		tcpAddr := &net.TCPAddr{IP: ipNet.IP}
		if ipNet.IP.To4() != nil {
			return tcpAddr, nil
		}
		if ipv6Fallback == nil {
			ipv6Fallback = tcpAddr
		}
	}

	if ipv6Fallback != nil {
		return ipv6Fallback, nil
	}

	return nil, fmt.Errorf("interface %q has no usable address", ifaceName)
}
