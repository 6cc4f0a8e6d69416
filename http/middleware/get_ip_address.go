package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

const unknownIPAddr = "0.0.0.0"

// IANA defined IPv4 non-public ranges
var privateRanges = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"100.64.0.0/10",
		"172.16.0.0/12",
		"192.0.0.0/24",
		"192.168.0.0/16",
		"198.18.0.0/15",
	}

	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}

		nets = append(nets, n)
	}

	return nets
}()

// InjectIPAddress grabs the IP address in the *http.Request.Header
// and promotes it to *http.Request.Context under trailhead.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetIPAddress(r.Header)
			if ip == unknownIPAddr {
				ip = remoteIP(r.RemoteAddr)
			}

			h.ServeHTTP(w, r.Clone(context.WithValue(r.Context(), trailhead.IpAddrKey, ip)))
		})
	}
}

// GetIPAddress parses "X-Forwarded-For" and "X-Real-Ip" headers for the IP address
// from the request.
//
// GetIPAddress skips addresses from non-public ranges.
func GetIPAddress(hm http.Header) string {
	for _, h := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		addresses := strings.Split(hm.Get(h), ",")
		// march from right to left until we get a public address
		// that will be the address right before our proxy.
		for i := len(addresses) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(addresses[i])
			parsed := net.ParseIP(ip)
			if !parsed.IsGlobalUnicast() || isPrivateSubnet(parsed) {
				continue
			}

			return ip
		}
	}

	return unknownIPAddr
}

// isPrivateSubnet checks whether the IP address is in a private subnet.
//
// Only IPv4 subnets are checked.
func isPrivateSubnet(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}

	for _, n := range privateRanges {
		if n.Contains(v4) {
			return true
		}
	}

	return false
}

// remoteIP strips the port off of addr.
func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return unknownIPAddr
	}

	return host
}
