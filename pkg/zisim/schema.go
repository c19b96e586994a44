package zisim

import (
	"fmt"

	"github.com/equal1/labdrivers/pkg/ziapi"
)

// HDAWG geometry: eight signal outputs driven by four AWG cores.
const (
	numOutputs  = 8
	numAWGCores = 4
)

// SeedHDAWG populates the simulator with a representative HDAWG schema:
// signal outputs, oscillators, AWG cores with waveform placeholders, the
// channel-grouping switch, and the read-only identity nodes. The subset
// covers every node kind and access combination the drivers touch.
func (s *Server) SeedHDAWG() {
	dev := "/" + s.device

	for i := 0; i < numOutputs; i++ {
		s.AddNode(ziapi.NodeInfo{
			Node:        fmt.Sprintf("%s/sigouts/%d/on", dev, i),
			Description: "Enables the signal output.",
			Properties:  "Read, Write, Setting",
			Type:        ziapi.TypeIntegerEnum,
			Unit:        "None",
			Options:     map[string]string{"0": "off", "1": "on"},
		})
		s.AddNode(ziapi.NodeInfo{
			Node:        fmt.Sprintf("%s/sigouts/%d/range", dev, i),
			Description: "Output voltage range.",
			Properties:  "Read, Write, Setting",
			Type:        ziapi.TypeDouble,
			Unit:        "V",
		})
	}

	for i := 0; i < numOutputs; i++ {
		s.AddNode(ziapi.NodeInfo{
			Node:        fmt.Sprintf("%s/oscs/%d/freq", dev, i),
			Description: "Oscillator frequency.",
			Properties:  "Read, Write, Setting",
			Type:        ziapi.TypeDouble,
			Unit:        "Hz",
		})
	}

	for i := 0; i < numAWGCores; i++ {
		s.AddNode(ziapi.NodeInfo{
			Node:        fmt.Sprintf("%s/awgs/%d/enable", dev, i),
			Description: "Runs the AWG sequencer.",
			Properties:  "Read, Write, Setting",
			Type:        ziapi.TypeIntegerEnum,
			Unit:        "None",
			Options:     map[string]string{"0": "off", "1": "on"},
		})
		s.AddNode(ziapi.NodeInfo{
			Node:        fmt.Sprintf("%s/awgs/%d/waveform/index", dev, i),
			Description: "Index of the waveform slot to replace.",
			Properties:  "Read, Write",
			Type:        ziapi.TypeInteger,
			Unit:        "None",
		})
		s.AddNode(ziapi.NodeInfo{
			Node:        fmt.Sprintf("%s/awgs/%d/waveform/data", dev, i),
			Description: "Waveform sample data for the addressed slot.",
			Properties:  "Write",
			Type:        ziapi.TypeVectorData,
			Unit:        "None",
		})
	}

	s.AddNode(ziapi.NodeInfo{
		Node:        dev + "/system/awg/channelgrouping",
		Description: "Sequencer-to-output grouping mode.",
		Properties:  "Read, Write, Setting",
		Type:        ziapi.TypeIntegerEnum,
		Unit:        "None",
		Options:     map[string]string{"0": "groups of 2", "1": "groups of 4", "2": "groups of 8"},
	})

	s.AddNode(ziapi.NodeInfo{
		Node:        dev + "/features/serial",
		Description: "Device serial number.",
		Properties:  "Read",
		Type:        ziapi.TypeString,
		Unit:        "None",
	})
	s.AddNode(ziapi.NodeInfo{
		Node:        dev + "/features/devtype",
		Description: "Device type identifier.",
		Properties:  "Read",
		Type:        ziapi.TypeString,
		Unit:        "None",
	})
}
