package indexer

// NopObserver ignores every event.
type NopObserver struct{}

// PhaseChanged implements Observer.
func (NopObserver) PhaseChanged(string, Phase) {}

// BatchStarted implements Observer.
func (NopObserver) BatchStarted(string, int) {}

// Submitted implements Observer.
func (NopObserver) Submitted(string, string, error) {}

// Finished implements Observer.
func (NopObserver) Finished(Result) {}

// Observers fans events out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) PhaseChanged(runID string, phase Phase) {
	for _, o := range m {
		o.PhaseChanged(runID, phase)
	}
}

func (m multiObserver) BatchStarted(runID string, total int) {
	for _, o := range m {
		o.BatchStarted(runID, total)
	}
}

func (m multiObserver) Submitted(runID, rawURL string, err error) {
	for _, o := range m {
		o.Submitted(runID, rawURL, err)
	}
}

func (m multiObserver) Finished(res Result) {
	for _, o := range m {
		o.Finished(res)
	}
}
