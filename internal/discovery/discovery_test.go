package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestFromEntry(t *testing.T) {
	e := &mdns.ServiceEntry{
		Name:       "office._planboard._tcp.local.",
		AddrV4:     net.IPv4(192, 168, 1, 20),
		Port:       8080,
		InfoFields: []string{"planboard"},
	}
	s, ok := fromEntry(e)
	if !ok {
		t.Fatalf("entry rejected")
	}
	if s.Name != "office" {
		t.Errorf("name = %q", s.Name)
	}
	if got := s.URL(); got != "http://192.168.1.20:8080" {
		t.Errorf("url = %q", got)
	}
}

func TestFromEntrySkipsIncomplete(t *testing.T) {
	for _, e := range []*mdns.ServiceEntry{
		nil,
		{Name: "x", AddrV4: net.IPv4(10, 0, 0, 1)},
		{Name: "x", Port: 80},
	} {
		if _, ok := fromEntry(e); ok {
			t.Errorf("accepted %+v", e)
		}
	}
}

func TestIPv6URL(t *testing.T) {
	s := Server{Host: "fe80::1", Port: 9000}
	if got := s.URL(); got != "http://[fe80::1]:9000" {
		t.Errorf("url = %q", got)
	}
}
