package capture

// Attribute keys understood by the layout resolver.
const (
	// AttrLabelList is the root attribute of a modern capture: a comma
	// separated list of labels in canonical order, each naming a group.
	AttrLabelList = "LabelList"

	// AttrConfiguration is the free-text per-group attribute of a legacy
	// capture, searched for right-side markers.
	AttrConfiguration = "Configuration"
)

// Document is the container-neutral tree of a capture file. Both on-disk
// containers decode into it and encode from it.
type Document struct {
	Attributes map[string]string `msgpack:"attributes"`
	Groups     []Group           `msgpack:"groups"`
}

// Group holds one sensor's recording.
type Group struct {
	Name       string            `msgpack:"name"`
	Attributes map[string]string `msgpack:"attributes"`
	// Time is in epoch microseconds, UTC.
	Time []int64 `msgpack:"time"`
	// Accelerometer holds x, y, z in m/s², one entry per Time entry.
	Accelerometer [][3]float64 `msgpack:"accelerometer"`
}

func (d *Document) group(name string) *Group {
	for i := range d.Groups {
		if d.Groups[i].Name == name {
			return &d.Groups[i]
		}
	}
	return nil
}
