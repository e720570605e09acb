package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfig []byte

// CardCategory defines the type of a card using a typed enum.
type CardCategory int

const (
	CategorySuspect CardCategory = iota
	CategoryWeapon
	CategoryRoom
)

// Categories lists every category in catalog order.
var Categories = []CardCategory{CategorySuspect, CategoryWeapon, CategoryRoom}

func (cc CardCategory) String() string {
	return []string{"suspects", "weapons", "rooms"}[cc]
}

// GameConfig holds the static definitions for a session. The suspect list doubles as the
// seating order.
type GameConfig struct {
	Suspects []string `yaml:"suspects" json:"suspects"`
	Weapons  []string `yaml:"weapons" json:"weapons"`
	Rooms    []string `yaml:"rooms" json:"rooms"`
	Players  int      `yaml:"players" json:"players"`
	Seed     uint64   `yaml:"seed" json:"seed"`
	MaxTurns int      `yaml:"max_turns" json:"max_turns"`

	AllCards   []string                `yaml:"-" json:"-"`
	CardToType map[string]CardCategory `yaml:"-" json:"-"`
}

// Load reads, parses, and prepares the game configuration from a YAML or JSON file.
func Load(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the embedded six-player configuration.
func Default() *GameConfig {
	cfg, err := Parse(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("embedded config is invalid: %v", err))
	}
	return cfg
}

// Parse decodes a configuration document and builds the card index.
func Parse(data []byte) (*GameConfig, error) {
	var cfg GameConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Players == 0 {
		cfg.Players = len(cfg.Suspects)
	}
	cfg.index()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *GameConfig) index() {
	c.AllCards = nil
	c.CardToType = make(map[string]CardCategory)
	for _, cat := range Categories {
		for _, card := range c.CardListForCategory(cat) {
			c.AllCards = append(c.AllCards, card)
			c.CardToType[card] = cat
		}
	}
}

// Validate checks category sizes, duplicate names and the table size.
func (c *GameConfig) Validate() error {
	for _, cat := range Categories {
		if len(c.CardListForCategory(cat)) == 0 {
			return fmt.Errorf("config: no %s defined", cat)
		}
	}
	if len(c.CardToType) != len(c.AllCards) {
		return errors.New("config: card names must be unique across all categories")
	}
	if c.Players < 2 || c.Players > len(c.Suspects) {
		return fmt.Errorf("config: players must be between 2 and %d, got %d", len(c.Suspects), c.Players)
	}
	if c.MaxTurns < 0 {
		return fmt.Errorf("config: max_turns must not be negative, got %d", c.MaxTurns)
	}
	return nil
}

// DeepCopy creates a new GameConfig with all slices copied to prevent shared state.
func (c *GameConfig) DeepCopy() *GameConfig {
	newCfg := &GameConfig{
		Players:    c.Players,
		Seed:       c.Seed,
		MaxTurns:   c.MaxTurns,
		CardToType: make(map[string]CardCategory, len(c.CardToType)),
	}
	newCfg.Suspects = append([]string(nil), c.Suspects...)
	newCfg.Weapons = append([]string(nil), c.Weapons...)
	newCfg.Rooms = append([]string(nil), c.Rooms...)
	newCfg.AllCards = append([]string(nil), c.AllCards...)
	for k, v := range c.CardToType {
		newCfg.CardToType[k] = v
	}
	return newCfg
}

// CardListForCategory is a helper to get the correct card list from the config.
func (c *GameConfig) CardListForCategory(cat CardCategory) []string {
	switch cat {
	case CategorySuspect:
		return c.Suspects
	case CategoryWeapon:
		return c.Weapons
	case CategoryRoom:
		return c.Rooms
	default:
		return nil
	}
}

// IsCategory reports whether card exists and belongs to cat.
func (c *GameConfig) IsCategory(card string, cat CardCategory) bool {
	got, ok := c.CardToType[card]
	return ok && got == cat
}

// Seats returns the names of the seated players in seating order.
func (c *GameConfig) Seats() []string {
	return append([]string(nil), c.Suspects[:c.Players]...)
}
