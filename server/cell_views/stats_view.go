package cell_views

import (
	"fmt"
	"html/template"

	"gridpath/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatsPanel shows the run counters.
type StatsPanel struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatsPanel(
	done <-chan struct{},
	boards <-chan Board,
) (sp *StatsPanel) {
	sp = &StatsPanel{id: "statspanel"}
	sp.updates = channerics.Convert(done, boards, sp.onUpdate)
	return
}

func (sp *StatsPanel) Updates() <-chan []fastview.EleUpdate {
	return sp.updates
}

func (sp *StatsPanel) Parse(t *template.Template) (name string, err error) {
	name = sp.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + sp.id + `" style="font-family: monospace; padding: 10px;">
			turn <span id="stats-turn">{{ .Turn }}</span>
			travel <span id="stats-travel">{{ printf "%.1f" .Stats.Travel }}</span>
			deviations <span id="stats-deviations">{{ .Stats.Deviations }}</span>
			blocked <span id="stats-blocked">{{ .Stats.Blocked }}</span>
			arrived <span id="stats-arrivals">{{ .Stats.Arrivals }}</span>
			stranded <span id="stats-stranded">{{ .Stats.Stranded }}</span>
		</div>
		{{ end }}`)
	return
}

func (sp *StatsPanel) onUpdate(board Board) []fastview.EleUpdate {
	text := func(id, value string) fastview.EleUpdate {
		return fastview.EleUpdate{
			EleId: id,
			Ops:   []fastview.Op{{Key: "textContent", Value: value}},
		}
	}
	return []fastview.EleUpdate{
		text("stats-turn", fmt.Sprintf("%d", board.Turn)),
		text("stats-travel", fmt.Sprintf("%.1f", board.Stats.Travel)),
		text("stats-deviations", fmt.Sprintf("%d", board.Stats.Deviations)),
		text("stats-blocked", fmt.Sprintf("%d", board.Stats.Blocked)),
		text("stats-arrivals", fmt.Sprintf("%d", board.Stats.Arrivals)),
		text("stats-stranded", fmt.Sprintf("%d", board.Stats.Stranded)),
	}
}
