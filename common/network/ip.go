package network

import (
	"net"
	"strings"

	"github.com/Laisky/errors/v2"
)

func splitSubnets(subnets string) []string {
	var res []string
	for _, s := range strings.Split(subnets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// ParseSubnets parses a comma separated CIDR list. An empty list yields no subnets.
func ParseSubnets(subnets string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, subnet := range splitSubnets(subnets) {
		_, ipNet, err := net.ParseCIDR(subnet)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid subnet in list: %s", subnet)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// IsIpInSubnets reports whether ip belongs to any of nets.
func IsIpInSubnets(ip string, nets []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}
