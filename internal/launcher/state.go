package launcher

// State is a visible step of the launcher workflow.
type State int

const (
	Idle State = iota
	CheckingVersion
	UpToDate
	UpdateRequired
	UpdateUnknown
	Updating
	BlockedNeedsUpdate
	LocatingExecutable
	NotFound
	ProbingProcess
	ConfirmRelaunch
	RefreshingAuxiliaryData
	SettingEnvironment
	Spawning
	Done
	Failed
)

var stateNames = [...]string{
	Idle:                    "idle",
	CheckingVersion:         "checking version",
	UpToDate:                "up to date",
	UpdateRequired:          "update required",
	UpdateUnknown:           "update status unknown",
	Updating:                "updating",
	BlockedNeedsUpdate:      "blocked: update required",
	LocatingExecutable:      "locating executable",
	NotFound:                "executable not found",
	ProbingProcess:          "checking running clients",
	ConfirmRelaunch:         "client already running",
	RefreshingAuxiliaryData: "refreshing data files",
	SettingEnvironment:      "preparing environment",
	Spawning:                "starting client",
	Done:                    "done",
	Failed:                  "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// EventKind classifies update events.
type EventKind int

const (
	EventChecking EventKind = iota
	EventUpToDate
	EventStarted
	EventProgress
	EventDone
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventChecking:
		return "checking"
	case EventUpToDate:
		return "up-to-date"
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is sent by the update worker. Percent and Name are set for
// EventProgress; Version carries the target version from EventStarted on;
// Err is set only for EventFailed.
type Event struct {
	Kind    EventKind
	Percent int
	Name    string
	Version string
	Err     error
}

// VersionStatus is the outcome of a version check.
type VersionStatus struct {
	State  State // UpToDate, UpdateRequired or UpdateUnknown
	Local  string
	Latest string // empty when UpdateUnknown
	Err    error  // oracle failure behind UpdateUnknown
}
