// Package discovery advertises planboard servers on the local network over
// mDNS and finds them from viewers.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service type of a planboard server.
const ServiceType = "_planboard._tcp"

// Server is a discovered planboard server.
type Server struct {
	Name string
	Host string
	Port int
	Info []string
}

// URL returns the HTTP base URL of the server.
func (s Server) URL() string {
	return "http://" + net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// Advertisement is a running mDNS responder.
type Advertisement struct {
	server *mdns.Server
}

// Shutdown stops answering queries.
func (a *Advertisement) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// Advertise announces a server listening on port. An empty name uses the
// host name.
func Advertise(name string, port int, info ...string) (*Advertisement, error) {
	if name == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("hostname: %w", err)
		}
		name = host
	}
	if len(info) == 0 {
		info = []string{"planboard"}
	}
	service, err := mdns.NewMDNSService(name, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	return &Advertisement{server: server}, nil
}

// fromEntry converts a lookup result. Entries without an address or port are
// skipped.
func fromEntry(e *mdns.ServiceEntry) (Server, bool) {
	if e == nil || e.Port == 0 {
		return Server{}, false
	}
	var host string
	switch {
	case e.AddrV4 != nil:
		host = e.AddrV4.String()
	case e.AddrV6 != nil:
		host = e.AddrV6.String()
	default:
		return Server{}, false
	}
	name := strings.TrimSuffix(e.Name, "."+ServiceType+".local.")
	return Server{Name: name, Host: host, Port: e.Port, Info: e.InfoFields}, true
}

// Browse queries the network for timeout and returns the servers found,
// sorted by name.
func Browse(ctx context.Context, timeout time.Duration) ([]Server, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	seen := map[string]Server{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if s, ok := fromEntry(e); ok {
				seen[s.URL()] = s
			}
		}
	}()
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		params.Timeout = time.Until(dl)
	}
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}
	out := make([]Server, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
