package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser announces a data server via mDNS. Simulated servers use it
// so the rest of the tooling discovers them like real hardware.
type Advertiser struct {
	mu     sync.Mutex
	iface  string
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser. iface restricts announcements to
// one network interface; empty means all interfaces.
func NewAdvertiser(iface string) *Advertiser {
	return &Advertiser{iface: iface}
}

// Advertise starts announcing the server. A previous announcement is
// replaced.
func (a *Advertiser) Advertise(info *ServerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	port := info.Port
	if port == 0 {
		port = DefaultPort
	}

	server, err := zeroconf.Register(
		info.InstanceName,
		ServiceTypeDataServer,
		Domain,
		port,
		TXTRecordsToStrings(EncodeServerTXT(info)),
		a.interfaces(),
	)
	if err != nil {
		return fmt.Errorf("registering data-server service: %w", err)
	}
	a.server = server
	return nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// interfaces resolves the configured interface name. Nil means all.
func (a *Advertiser) interfaces() []net.Interface {
	if a.iface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.iface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Browse searches for data servers until ctx is cancelled. Entries from
// multiple interfaces are aggregated by instance name; each server is
// emitted once, with later addresses merged into the already-emitted
// entry.
func Browse(ctx context.Context, iface string) (<-chan *DataServerService, error) {
	out := make(chan *DataServerService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if iface != "" {
		if nif, err := net.InterfaceByName(iface); err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*nif}))
		}
	}

	go func() {
		defer close(out)

		services := make(map[string]*DataServerService)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if svc == nil {
					continue
				}
				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(services, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeDataServer, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindDevice browses until a server hosting the given device ID appears.
// Returns ErrNotFound when ctx expires first.
func FindDevice(ctx context.Context, iface, deviceID string) (*DataServerService, error) {
	results, err := Browse(ctx, iface)
	if err != nil {
		return nil, err
	}
	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, fmt.Errorf("%w: device %s", ErrNotFound, deviceID)
			}
			if svc.HostsDevice(deviceID) {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: device %s", ErrNotFound, deviceID)
		}
	}
}

// entryToService converts an mDNS entry. Entries without the devices
// TXT record are not data servers and yield nil.
func entryToService(entry *zeroconf.ServiceEntry) *DataServerService {
	devices, version, apiLevel, err := DecodeServerTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	svc := &DataServerService{
		InstanceName: entry.Instance,
		HostName:     entry.HostName,
		Port:         entry.Port,
		Devices:      devices,
		Version:      version,
		APILevel:     apiLevel,
	}
	svc.Addresses = append(svc.Addresses, entry.AddrIPv4...)
	svc.Addresses = append(svc.Addresses, entry.AddrIPv6...)
	return svc
}

// mergeAddresses appends addresses not already present.
func mergeAddresses(existing, incoming []net.IP) []net.IP {
	for _, ip := range incoming {
		seen := false
		for _, have := range existing {
			if have.Equal(ip) {
				seen = true
				break
			}
		}
		if !seen {
			existing = append(existing, ip)
		}
	}
	return existing
}
