package ssrf

import "net"

var (
	// rfc1918Nets specifies the IPv4 private address blocks as defined by
	// RFC1918 (10.0.0.0/8, 172.16.0.0/12, and 192.168.0.0/16).
	rfc1918Nets = []net.IPNet{
		ipNet("10.0.0.0", 8, 32),
		ipNet("172.16.0.0", 12, 32),
		ipNet("192.168.0.0", 16, 32),
	}

	// rfc5737Nets specifies the IPv4 documentation address blocks as
	// defined by RFC5737.
	rfc5737Nets = []net.IPNet{
		ipNet("192.0.2.0", 24, 32),
		ipNet("198.51.100.0", 24, 32),
		ipNet("203.0.113.0", 24, 32),
	}

	// reservedNets collects every range an outbound federation request must
	// never reach: loopback, link-local, CGNAT, benchmarking,
	// documentation, multicast and the reserved blocks, for both address
	// families.
	reservedNets = append([]net.IPNet{
		ipNet("0.0.0.0", 8, 32),        // "this" network
		ipNet("127.0.0.0", 8, 32),      // loopback
		ipNet("169.254.0.0", 16, 32),   // link-local
		ipNet("100.64.0.0", 10, 32),    // CGNAT (RFC6598)
		ipNet("198.18.0.0", 15, 32),    // benchmarking (RFC2544)
		ipNet("224.0.0.0", 4, 32),      // multicast
		ipNet("240.0.0.0", 4, 32),      // reserved
		ipNet("::1", 128, 128),         // loopback
		ipNet("::", 128, 128),          // unspecified
		ipNet("fe80::", 10, 128),       // link-local
		ipNet("fc00::", 7, 128),        // unique local
		ipNet("2001:db8::", 32, 128),   // documentation (RFC3849)
		ipNet("ff00::", 8, 128),        // multicast
	}, append(rfc1918Nets, rfc5737Nets...)...)

	// metadataHosts are cloud metadata service hostnames that must never be
	// dereferenced regardless of what they resolve to.
	metadataHosts = map[string]bool{
		"metadata.google.internal":      true,
		"metadata.goog":                 true,
		"metadata.azure.com":            true,
		"metadata.packet.net":           true,
		"metadata.platformequinix.com":  true,
	}
)

// ipNet returns a net.IPNet struct given the passed IP address string, number
// of one bits to include at the start of the mask, and the total number of
// bits for the mask.
func ipNet(ip string, ones, bits int) net.IPNet {
	return net.IPNet{IP: net.ParseIP(ip), Mask: net.CIDRMask(ones, bits)}
}

// isReserved reports whether the address falls in any private or reserved
// range.
func isReserved(ip net.IP) bool {
	for _, n := range reservedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
