package actions

type Phase string

const (
	PhaseFresh  Phase = "fresh"
	PhaseResume Phase = "resume"
	PhaseReplay Phase = "replay"
)

// ResumeState travels next to an action and says how the next invocation
// must treat it. The zero value is fresh.
type ResumeState struct {
	NeedResume bool
	Finished   bool
}

func Fresh() ResumeState {
	return ResumeState{}
}

// Restore marks an action loaded from a checkpoint.
func Restore(finished bool) ResumeState {
	return ResumeState{NeedResume: true, Finished: finished}
}

func (s ResumeState) Phase() Phase {
	switch {
	case s.NeedResume && s.Finished:
		return PhaseReplay
	case s.NeedResume:
		return PhaseResume
	default:
		return PhaseFresh
	}
}

func (s ResumeState) IsReplay() bool {
	return s.Phase() == PhaseReplay
}
