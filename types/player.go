package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Player is a roster entry. Identity fields never change once registered.
type Player struct {
	ID       string   `firestore:"id" json:"id" yaml:"id"`
	Name     string   `firestore:"name" json:"name" yaml:"name"`
	Aliases  []string `firestore:"aliases" json:"aliases" yaml:"aliases"`
	Team     string   `firestore:"team" json:"team" yaml:"team"`
	Sport    string   `firestore:"sport" json:"sport" yaml:"sport"`
	Position string   `firestore:"position" json:"position" yaml:"position"`
}

// AddAlias appends alias unless it equals the name or an existing alias,
// ignoring case.
func (p *Player) AddAlias(alias string) bool {
	alias = strings.TrimSpace(alias)
	if alias == "" || strings.EqualFold(alias, p.Name) {
		return false
	}
	for _, a := range p.Aliases {
		if strings.EqualFold(a, alias) {
			return false
		}
	}
	p.Aliases = append(p.Aliases, alias)
	return true
}

func (p Player) Surname() string {
	parts := strings.Fields(p.Name)
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

// Roster is a read-only snapshot of players in registration order.
type Roster struct {
	players []Player
	index   map[string]int
	version string
}

func NewRoster(players []Player) *Roster {
	r := &Roster{
		players: make([]Player, 0, len(players)),
		index:   make(map[string]int, len(players)),
	}
	for _, p := range players {
		if p.ID == "" {
			continue
		}
		if _, dup := r.index[p.ID]; dup {
			continue
		}
		cp := p
		cp.Aliases = append([]string(nil), p.Aliases...)
		r.index[cp.ID] = len(r.players)
		r.players = append(r.players, cp)
	}
	r.version = computeRosterVersion(r.players)
	return r
}

// Players returns a copy in registration order.
func (r *Roster) Players() []Player {
	if r == nil {
		return nil
	}
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.players)
}

func (r *Roster) Get(id string) (Player, bool) {
	if r == nil {
		return Player{}, false
	}
	i, ok := r.index[id]
	if !ok {
		return Player{}, false
	}
	return r.players[i], true
}

// Order is the registration position of a player, -1 if unknown.
func (r *Roster) Order(id string) int {
	if r == nil {
		return -1
	}
	i, ok := r.index[id]
	if !ok {
		return -1
	}
	return i
}

// Version changes whenever any player record changes.
func (r *Roster) Version() string {
	if r == nil {
		return ""
	}
	return r.version
}

// Snapshot returns an independent copy safe to share between goroutines.
func (r *Roster) Snapshot() *Roster {
	if r == nil {
		return NewRoster(nil)
	}
	return NewRoster(r.players)
}

func computeRosterVersion(players []Player) string {
	sorted := make([]Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i := range sorted {
		aliases := make([]string, len(sorted[i].Aliases))
		for j, a := range sorted[i].Aliases {
			aliases[j] = strings.ToLower(a)
		}
		sort.Strings(aliases)
		sorted[i].Aliases = aliases
	}

	// registration order matters for tie-breaks, so it is part of the version too
	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
	}

	payload, _ := json.Marshal(struct {
		Players []Player `json:"players"`
		Order   []string `json:"order"`
	}{sorted, order})
	return HashString(string(payload))
}

// HashString returns the hex SHA-256 of s.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
