package broadcast

// Operations carried in topic names.
const (
	OpSet    = "setItem"
	OpRemove = "removeItem"
)

// Topic returns the topic for a backend channel name and operation,
// e.g. Topic("local", OpSet) == "localStorage.setItem".
func Topic(name, op string) string {
	return name + "Storage." + op
}

// Detail is the payload of an event. Value is only meaningful when HasValue
// is true; removals carry no value.
type Detail struct {
	Key      string `json:"key"`
	Value    any    `json:"value,omitempty"`
	HasValue bool   `json:"-"`
}

// Event is a named payload delivered to listeners of its Type.
type Event struct {
	Type   string `json:"type"`
	Detail Detail `json:"detail"`
}

// SetEvent builds the event announcing that key now holds value on channel name.
func SetEvent(name, key string, value any) Event {
	return Event{
		Type:   Topic(name, OpSet),
		Detail: Detail{Key: key, Value: value, HasValue: true},
	}
}

// RemoveEvent builds the event announcing that key was removed on channel name.
func RemoveEvent(name, key string) Event {
	return Event{
		Type:   Topic(name, OpRemove),
		Detail: Detail{Key: key},
	}
}
