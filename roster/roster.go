package roster

import (
	"fmt"
	"go-commentary/logger"
	"go-commentary/types"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk roster layout:
//
//	players:
//	  - id: lebron-james
//	    name: LeBron James
//	    aliases: [LBJ, King James]
//	    team: Los Angeles Lakers
type File struct {
	Players []types.Player `yaml:"players"`
}

// LoadFile reads a YAML roster. Players keep the order they are listed in.
func LoadFile(path string) (*types.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*types.Roster, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	players := make([]types.Player, 0, len(f.Players))
	for i, p := range f.Players {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("roster entry %d: id and name are required", i)
		}
		aliases := p.Aliases
		p.Aliases = nil
		for _, a := range aliases {
			p.AddAlias(a)
		}
		players = append(players, p)
	}

	r := types.NewRoster(players)
	if r.Len() != len(players) {
		logger.Warn("duplicate player ids in roster, keeping first", "listed", len(players), "kept", r.Len())
	}
	logger.Info("loaded roster", "players", r.Len(), "version", r.Version())
	return r, nil
}
