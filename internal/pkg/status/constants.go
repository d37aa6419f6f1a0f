package status

// Status represents pitch record lifecycle state
type Status int

const (
	// Processing - record created, generation not confirmed yet
	Processing Status = iota + 1
	// Completed - final step, pitch is viewable and exportable
	Completed
)

var (
	statusName = map[Status]string{Processing: "processing", Completed: "completed"}
	nameStatus = map[string]Status{"processing": Processing, "completed": Completed}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}
