package discovery

import (
	"errors"
	"net"
	"strings"
	"time"
)

// mDNS service constants.
const (
	// ServiceTypeDataServer is the service type data servers announce.
	ServiceTypeDataServer = "_labone._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default data-server port.
	DefaultPort = 8004

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second
)

// TXT record keys published by data servers.
const (
	// TXTKeyDevices lists the device IDs the server hosts, comma-separated.
	TXTKeyDevices = "devices"

	// TXTKeyVersion is the server software version.
	TXTKeyVersion = "version"

	// TXTKeyAPILevel is the highest supported API level.
	TXTKeyAPILevel = "apilevel"
)

// Discovery errors.
var (
	ErrMissingRequired = errors.New("missing required TXT record")
	ErrNotFound        = errors.New("no matching instrument found")
)

// DataServerService describes one discovered data server.
type DataServerService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// HostName is the server's host name.
	HostName string

	// Port is the server's listen port.
	Port int

	// Addresses are the server's IP addresses, aggregated across
	// interfaces.
	Addresses []net.IP

	// Devices are the device IDs the server hosts.
	Devices []string

	// Version is the server software version, if announced.
	Version string

	// APILevel is the announced API level, if any.
	APILevel string
}

// HostsDevice reports whether the server announces the given device ID.
func (s *DataServerService) HostsDevice(deviceID string) bool {
	for _, d := range s.Devices {
		if strings.EqualFold(d, deviceID) {
			return true
		}
	}
	return false
}

// ServerInfo describes a data server for advertising.
type ServerInfo struct {
	// InstanceName is the mDNS instance name to announce.
	InstanceName string

	// Port is the listen port; zero means DefaultPort.
	Port int

	// Devices are the hosted device IDs.
	Devices []string

	// Version is the server software version.
	Version string

	// APILevel is the highest supported API level.
	APILevel string
}

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeServerTXT creates TXT records for a data-server announcement.
func EncodeServerTXT(info *ServerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)
	txt[TXTKeyDevices] = strings.Join(info.Devices, ",")
	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	if info.APILevel != "" {
		txt[TXTKeyAPILevel] = info.APILevel
	}
	return txt
}

// DecodeServerTXT parses data-server TXT records. The devices key is
// required; everything else is optional.
func DecodeServerTXT(txt TXTRecordMap) (devices []string, version, apiLevel string, err error) {
	raw, ok := txt[TXTKeyDevices]
	if !ok {
		return nil, "", "", ErrMissingRequired
	}
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			devices = append(devices, d)
		}
	}
	return devices, txt[TXTKeyVersion], txt[TXTKeyAPILevel], nil
}

// TXTRecordsToStrings converts a TXT map to "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	strs := make([]string, 0, len(txt))
	for k, v := range txt {
		strs = append(strs, k+"="+v)
	}
	return strs
}

// StringsToTXTRecords parses "key=value" strings into a TXT map.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		key, value, found := strings.Cut(s, "=")
		if !found || key == "" {
			continue
		}
		txt[key] = value
	}
	return txt
}
