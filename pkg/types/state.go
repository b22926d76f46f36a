package types

// State is a scenario driver state. States only move forward; Failed is terminal.
type State int

const (
	StateInit State = iota
	StateBrokerUp
	StateTopicCreated
	StateSubscriberUp
	StatePublishing
	StatePublished
	StateSubscriberDone
	StateTopicDestroyed
	StateShutdown
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateInit:           "Init",
	StateBrokerUp:       "BrokerUp",
	StateTopicCreated:   "TopicCreated",
	StateSubscriberUp:   "SubscriberUp",
	StatePublishing:     "Publishing",
	StatePublished:      "Published",
	StateSubscriberDone: "SubscriberDone",
	StateTopicDestroyed: "TopicDestroyed",
	StateShutdown:       "Shutdown",
	StateDone:           "Done",
	StateFailed:         "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
