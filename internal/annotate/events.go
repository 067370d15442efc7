package annotate

// Stage identifies a phase of one file's annotation run.
type Stage uint8

const (
	StageRead Stage = iota + 1
	StageDetect
	StageWrite
	StageFlush
)

// Status of a stage for a given file.
type Status uint8

const (
	StatusQueued Status = iota + 1
	StatusWorking
	StatusDone
	StatusError
)

// Event is a progress notification published while streaming.
type Event struct {
	File   string
	Stage  Stage
	Status Status
	Rows   int64 // cumulative rows written for File
}

// EventSink consumes progress events. Implementations must not block
// for long; annotation stalls while Publish runs.
type EventSink interface {
	Publish(Event)
}

// ChannelSink forwards events to a channel (the UI reads the far end).
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Publish(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// nopSink drops events.
type nopSink struct{}

func (nopSink) Publish(Event) {}
