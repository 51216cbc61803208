package menace

import (
	"encoding/csv"
	"os"
	"strconv"
)

// Statistics records, for each agent, its results in every epoch.
type Statistics struct {
	Creation []string
	Wins     map[string][]float32
	Losses   map[string][]float32
	Draws    map[string][]float32
}

func makeStatistics() Statistics {
	return Statistics{
		Creation: make([]string, 0, 2),
		Wins:     make(map[string][]float32),
		Losses:   make(map[string][]float32),
		Draws:    make(map[string][]float32),
	}
}

func (s *Statistics) update(a *Agent) {
	name := a.Name()
	if _, ok := s.Wins[name]; !ok {
		s.Creation = append(s.Creation, name)
	}

	wins, loss, draw := a.stats()
	s.Wins[name] = append(s.Wins[name], wins)
	s.Losses[name] = append(s.Losses[name], loss)
	s.Draws[name] = append(s.Draws[name], draw)
}

// Dump writes a CSV with one row per epoch: the agent, then its win, draw and loss rates.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"agent", "epoch", "win", "draw", "loss"}); err != nil {
		return err
	}
	var records [][]string
	for _, agent := range s.Creation {
		for epoch, win := range s.Wins[agent] {
			draw, loss := s.Draws[agent][epoch], s.Losses[agent][epoch]
			total := win + draw + loss
			if total == 0 {
				total = 1
			}
			records = append(records, []string{
				agent,
				strconv.Itoa(epoch),
				strconv.FormatFloat(float64(win/total), 'f', 3, 32),
				strconv.FormatFloat(float64(draw/total), 'f', 3, 32),
				strconv.FormatFloat(float64(loss/total), 'f', 3, 32),
			})
		}
	}
	return w.WriteAll(records)
}
