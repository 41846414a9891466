package validator

import (
	"net"
	"strings"
)

// IsValidIP reports whether ip parses as IPv4 or IPv6
func IsValidIP(ip string) bool {
	if ip == "" {
		return false
	}
	return net.ParseIP(ip) != nil
}

// NormalizeIP strips an IPv6 zone, e.g. fe80::1%eth0 becomes fe80::1
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		return ip[:idx]
	}
	return ip
}

// ClientKey returns the normalized address, or fallback when it is not an IP
func ClientKey(ip, fallback string) string {
	normalized := NormalizeIP(ip)
	if IsValidIP(normalized) {
		return normalized
	}
	return fallback
}
