// Package discovery centralizes in-network service addresses.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceAccessControl is the access-control gRPC service identity.
	ServiceAccessControl = "accesscontrol"
	// ServiceWeb is the web HTTP service identity.
	ServiceWeb = "web"
)

// Discover is the address value that selects the in-network default.
const Discover = "discover"

var grpcPorts = map[string]int{
	ServiceAccessControl: 8083,
}

var httpPorts = map[string]int{
	ServiceWeb: 8086,
}

// DefaultGRPCAddr returns the canonical in-network gRPC address for a service.
func DefaultGRPCAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), grpcPorts)
}

// DefaultHTTPAddr returns the canonical in-network HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), httpPorts)
}

// ResolveGRPCAddr returns value, or the service convention when value is
// Discover. An empty value stays empty.
func ResolveGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, Discover) {
		return DefaultGRPCAddr(service)
	}
	return value
}

func defaultAddr(service string, ports map[string]int) string {
	port, ok := ports[service]
	if !ok || port <= 0 {
		return ""
	}
	return service + ":" + strconv.Itoa(port)
}
