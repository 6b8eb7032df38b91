package simulation

import (
	"gridpath/atomic_float"
	"gridpath/movement_cost"
	"gridpath/unit"
)

// Stats are run counters written by the runner and read by the server.
type Stats struct {
	Turns      *atomic_float.AtomicFloat64
	Travel     *atomic_float.AtomicFloat64
	Deviations *atomic_float.AtomicFloat64
	Blocked    *atomic_float.AtomicFloat64
	Arrivals   *atomic_float.AtomicFloat64
	Stranded   *atomic_float.AtomicFloat64
}

func NewStats() *Stats {
	return &Stats{
		Turns:      atomic_float.NewAtomicFloat64(0),
		Travel:     atomic_float.NewAtomicFloat64(0),
		Deviations: atomic_float.NewAtomicFloat64(0),
		Blocked:    atomic_float.NewAtomicFloat64(0),
		Arrivals:   atomic_float.NewAtomicFloat64(0),
		Stranded:   atomic_float.NewAtomicFloat64(0),
	}
}

func (st *Stats) record(result TurnResult, cost movement_cost.Strategy) {
	st.Turns.Add(1)
	switch result.Outcome {
	case unit.Deviated:
		st.Deviations.Add(1)
	case unit.Blocked:
		st.Blocked.Add(1)
	}
	if result.From != result.To {
		st.Travel.Add(cost.Cost(result.From, result.To))
	}
}

// StatsView is a plain copy of the counters.
type StatsView struct {
	Turns      int     `json:"turns"`
	Travel     float64 `json:"travel"`
	Deviations int     `json:"deviations"`
	Blocked    int     `json:"blocked"`
	Arrivals   int     `json:"arrivals"`
	Stranded   int     `json:"stranded"`
}

func (st *Stats) View() StatsView {
	return StatsView{
		Turns:      int(st.Turns.AtomicRead()),
		Travel:     st.Travel.AtomicRead(),
		Deviations: int(st.Deviations.AtomicRead()),
		Blocked:    int(st.Blocked.AtomicRead()),
		Arrivals:   int(st.Arrivals.AtomicRead()),
		Stranded:   int(st.Stranded.AtomicRead()),
	}
}
