package discovery

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// USBInstrument describes a directly attached instrument.
type USBInstrument struct {
	// Model is the matched model name.
	Model string

	// VendorID and ProductID identify the USB device.
	VendorID  uint16
	ProductID uint16

	// Bus and Address locate the device on the host.
	Bus     int
	Address int
}

// Label returns a user-friendly description for the instrument.
func (u USBInstrument) Label() string {
	if u.Model != "" {
		return fmt.Sprintf("%s (%04X:%04X)", u.Model, u.VendorID, u.ProductID)
	}
	return fmt.Sprintf("Instrument %04X:%04X", u.VendorID, u.ProductID)
}

// knownUSBInstrument is one entry of the VID/PID match table.
type knownUSBInstrument struct {
	VendorID  uint16
	ProductID uint16
	Model     string
}

// knownInstrumentVIDPIDs lists the instruments this module drives when
// attached over USB instead of the network.
var knownInstrumentVIDPIDs = []knownUSBInstrument{
	{VendorID: 0x0eb0, ProductID: 0x1001, Model: "HDAWG8"},
	{VendorID: 0x0eb0, ProductID: 0x1002, Model: "HDAWG4"},
	{VendorID: 0x0957, ProductID: 0x0001, Model: "B1500A"},
}

// FindUSB enumerates attached instruments matching the known VID/PID
// table. An empty result with nil error means nothing is attached.
func FindUSB(ctx context.Context) ([]USBInstrument, error) {
	var results []USBInstrument

	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if inst, ok := classifyUSBDevice(desc); ok {
			results = append(results, inst)
		}
		// Never open; enumeration only.
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, err
	}
	return results, nil
}

// classifyUSBDevice matches a descriptor against the known table.
func classifyUSBDevice(desc *gousb.DeviceDesc) (USBInstrument, bool) {
	for _, known := range knownInstrumentVIDPIDs {
		if uint16(desc.Vendor) == known.VendorID && uint16(desc.Product) == known.ProductID {
			return USBInstrument{
				Model:     known.Model,
				VendorID:  known.VendorID,
				ProductID: known.ProductID,
				Bus:       desc.Bus,
				Address:   desc.Address,
			}, true
		}
	}
	return USBInstrument{}, false
}
