// Package detector converts between integer detector numbers and raft/sensor
// addresses on the focal plane.
//
// The focal plane is a 5x5 grid of rafts with the four corners unpopulated,
// leaving 21 rafts. Each raft holds a 3x3 grid of sensors, so detectors are
// numbered 0 through 188:
//
//	detector = raftIndex*9 + sensorRow*3 + sensorCol
//
// where raftIndex is the position of the raft code in the raft table.
package detector

import (
	"fmt"
	"strings"
)

const (
	// SensorsPerRaft is the number of sensors in one raft.
	SensorsPerRaft = 9

	// maxDetector is the largest detector number accepted before table lookup.
	maxDetector = 189
)

// DefaultRafts is the raft table in detector-number order.
var DefaultRafts = []string{
	"R01", "R02", "R03",
	"R10", "R11", "R12", "R13", "R14",
	"R20", "R21", "R22", "R23", "R24",
	"R30", "R31", "R32", "R33", "R34",
	"R41", "R42", "R43",
}

// Address identifies a sensor by raft and sensor code, e.g. R22/S11.
type Address struct {
	Raft   string `json:"raft"`
	Sensor string `json:"sensor"`
}

// String returns the address in file-name form, e.g. "R22_S11".
func (a Address) String() string {
	return a.Raft + "_" + a.Sensor
}

// Codec converts detector numbers using a fixed raft table.
type Codec struct {
	rafts []string
	index map[string]int
}

// NewCodec creates a Codec for the given raft table.
// An empty table selects DefaultRafts.
func NewCodec(rafts []string) *Codec {
	if len(rafts) == 0 {
		rafts = DefaultRafts
	}
	table := make([]string, len(rafts))
	copy(table, rafts)

	index := make(map[string]int, len(table))
	for i, r := range table {
		if _, dup := index[r]; !dup {
			index[r] = i
		}
	}
	return &Codec{rafts: table, index: index}
}

// Rafts returns a copy of the codec's raft table.
func (c *Codec) Rafts() []string {
	out := make([]string, len(c.rafts))
	copy(out, c.rafts)
	return out
}

// Decode converts a detector number to its raft/sensor address.
func (c *Codec) Decode(det int) (Address, error) {
	if det > maxDetector || det < 0 {
		return Address{}, &OutOfRangeError{Detector: det}
	}
	raft := det / SensorsPerRaft
	if raft >= len(c.rafts) {
		// 189 passes the bound check but has no raft.
		return Address{}, &OutOfRangeError{Detector: det}
	}
	within := det % SensorsPerRaft
	return Address{
		Raft:   c.rafts[raft],
		Sensor: fmt.Sprintf("S%d%d", within/3, within%3),
	}, nil
}

// Encode converts a raft/sensor pair back to a detector number.
func (c *Codec) Encode(raftID, sensorID string) (int, error) {
	raft, ok := c.index[raftID]
	if !ok {
		return 0, &UnknownRaftError{Raft: raftID}
	}
	row, col, err := parseSensor(sensorID)
	if err != nil {
		return 0, err
	}
	return raft*SensorsPerRaft + row*3 + col, nil
}

// EncodeAddress is Encode for an Address.
func (c *Codec) EncodeAddress(a Address) (int, error) {
	return c.Encode(a.Raft, a.Sensor)
}

// ParseAddress parses "R22_S11" (or "R22/S11", "R22,S11") into an Address.
func ParseAddress(s string) (Address, error) {
	sep := strings.IndexAny(s, "_/,")
	if sep < 0 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidSensor, s)
	}
	return Address{Raft: s[:sep], Sensor: s[sep+1:]}, nil
}

// parseSensor reads the row and column digits from the tail of a sensor code.
func parseSensor(sensorID string) (row, col int, err error) {
	if len(sensorID) != 3 || sensorID[0] != 'S' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSensor, sensorID)
	}
	row = int(sensorID[1] - '0')
	col = int(sensorID[2] - '0')
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSensor, sensorID)
	}
	return row, col, nil
}
