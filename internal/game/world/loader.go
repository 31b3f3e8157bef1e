package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlZoneFile is the top-level YAML structure for zone files.
type yamlZoneFile struct {
	Zone yamlZone `yaml:"zone"`
}

// yamlZone is the YAML representation of a zone.
type yamlZone struct {
	ID                     string           `yaml:"id"`
	Name                   string           `yaml:"name"`
	Description            string           `yaml:"description"`
	StartRoom              string           `yaml:"start_room"`
	InitialFlags           map[string]Value `yaml:"initial_flags"`
	ScriptDir              string           `yaml:"script_dir"`
	ScriptInstructionLimit int              `yaml:"script_instruction_limit"`
	Rooms                  []yamlRoom       `yaml:"rooms"`
	Objects                []yamlObject     `yaml:"objects"`
}

// yamlRoom is the YAML representation of a room.
type yamlRoom struct {
	ID                   string            `yaml:"id"`
	Title                string            `yaml:"title"`
	Description          string            `yaml:"description"`
	LowSanityDescription string            `yaml:"low_sanity_description"`
	DarkDescription      string            `yaml:"dark_description"`
	Exits                map[string]string `yaml:"exits"`
	Items                []string          `yaml:"items"`
	GlobalItems          []string          `yaml:"global_items"`
	FlagsRequired        map[string]Value  `yaml:"flags_required"`
	SanityEffect         int               `yaml:"sanity_effect"`
	Dark                 bool              `yaml:"dark"`
	RequiresVehicle      bool              `yaml:"requires_vehicle"`
}

// yamlObject is the YAML representation of a game object.
type yamlObject struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Aliases       []string           `yaml:"aliases"`
	Description   string             `yaml:"description"`
	Kind          string             `yaml:"kind"`
	State         map[string]Value   `yaml:"state"`
	Interactions  []yamlInteraction  `yaml:"interactions"`
	Takeable      bool               `yaml:"takeable"`
	Treasure      bool               `yaml:"treasure"`
	Value         int                `yaml:"value"`
	Size          int                `yaml:"size"`
	Capacity      int                `yaml:"capacity"`
	Transparent   bool               `yaml:"transparent"`
	Contents      []string           `yaml:"contents"`
	Key           string             `yaml:"key"`
	Prerequisites *yamlPrerequisites `yaml:"prerequisites"`
	Damage        int                `yaml:"damage"`
	Armor         int                `yaml:"armor"`
	Health        int                `yaml:"health"`
	Strength      int                `yaml:"strength"`
	Drops         []string           `yaml:"drops"`
	VictoryFlag   string             `yaml:"victory_flag"`
	Wearable      bool               `yaml:"wearable"`
	Text          string             `yaml:"text"`
}

type yamlInteraction struct {
	Verb         string           `yaml:"verb"`
	Condition    map[string]Value `yaml:"condition"`
	Response     string           `yaml:"response"`
	StateChange  map[string]Value `yaml:"state_change"`
	FlagChange   map[string]Value `yaml:"flag_change"`
	SanityEffect int              `yaml:"sanity_effect"`
	CurseTrigger bool             `yaml:"curse_trigger"`
}

type yamlPrerequisites struct {
	Flags   map[string]Value `yaml:"flags"`
	Items   []string         `yaml:"items"`
	Room    string           `yaml:"room"`
	Verbs   []string         `yaml:"verbs"`
	Message string           `yaml:"message"`
	Hint    string           `yaml:"hint"`
}

// LoadZoneFromFile reads and validates a single zone YAML file.
//
// Precondition: path must point to a valid YAML zone file.
// Postcondition: Returns a validated Zone or a non-nil error.
func LoadZoneFromFile(path string) (*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zone file %s: %w", path, err)
	}
	zone, err := LoadZoneFromBytes(data)
	if err != nil {
		return nil, err
	}
	if zone.ScriptDir != "" && !filepath.IsAbs(zone.ScriptDir) {
		zone.ScriptDir = filepath.Join(filepath.Dir(path), zone.ScriptDir)
	}
	return zone, nil
}

// LoadZoneFromBytes parses and validates a zone from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the zone schema.
// Postcondition: Returns a validated Zone or a non-nil error.
func LoadZoneFromBytes(data []byte) (*Zone, error) {
	var file yamlZoneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zone YAML: %w", err)
	}

	zone := convertYAMLZone(file.Zone)
	if err := zone.Validate(); err != nil {
		return nil, fmt.Errorf("validating zone: %w", err)
	}

	return zone, nil
}

// LoadZonesFromDir loads all YAML files in a directory as zones.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated zones or the first error encountered.
func LoadZonesFromDir(dir string) ([]*Zone, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading zone directory %s: %w", dir, err)
	}

	var zones []*Zone
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		zone, err := LoadZoneFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading zone from %s: %w", name, err)
		}
		zones = append(zones, zone)
	}

	if len(zones) == 0 {
		return nil, fmt.Errorf("no zone files found in %s", dir)
	}

	return zones, nil
}

// convertYAMLZone converts the parsed YAML structures into domain types.
func convertYAMLZone(yz yamlZone) *Zone {
	zone := &Zone{
		ID:                     yz.ID,
		Name:                   yz.Name,
		Description:            strings.TrimSpace(yz.Description),
		StartRoom:              yz.StartRoom,
		InitialFlags:           yz.InitialFlags,
		ScriptDir:              yz.ScriptDir,
		ScriptInstructionLimit: yz.ScriptInstructionLimit,
		Rooms:                  make(map[string]*Room, len(yz.Rooms)),
		Objects:                make(map[string]*GameObject, len(yz.Objects)),
	}
	if zone.InitialFlags == nil {
		zone.InitialFlags = make(map[string]Value)
	}

	for _, yr := range yz.Rooms {
		room := &Room{
			ID:                   yr.ID,
			ZoneID:               yz.ID,
			Title:                yr.Title,
			Description:          strings.TrimSpace(yr.Description),
			LowSanityDescription: strings.TrimSpace(yr.LowSanityDescription),
			DarkDescription:      strings.TrimSpace(yr.DarkDescription),
			Exits:                make(map[Direction]string, len(yr.Exits)),
			Items:                yr.Items,
			GlobalItems:          yr.GlobalItems,
			FlagsRequired:        yr.FlagsRequired,
			SanityEffect:         yr.SanityEffect,
			Dark:                 yr.Dark,
			RequiresVehicle:      yr.RequiresVehicle,
		}
		for dir, target := range yr.Exits {
			d, ok := ParseDirection(strings.ToLower(dir))
			if !ok {
				d = Direction(dir)
			}
			room.Exits[d] = target
		}
		zone.Rooms[room.ID] = room
	}

	for _, yo := range yz.Objects {
		obj := &GameObject{
			ID:           yo.ID,
			ZoneID:       yz.ID,
			Name:         yo.Name,
			Aliases:      yo.Aliases,
			Description:  strings.TrimSpace(yo.Description),
			Kind:         Kind(yo.Kind),
			DefaultState: toStateMap(yo.State),
			Takeable:     yo.Takeable,
			Treasure:     yo.Treasure,
			Value:        yo.Value,
			Size:         yo.Size,
			Capacity:     yo.Capacity,
			Transparent:  yo.Transparent,
			Contents:     yo.Contents,
			Key:          yo.Key,
			Damage:       yo.Damage,
			Armor:        yo.Armor,
			Health:       yo.Health,
			Strength:     yo.Strength,
			Drops:        yo.Drops,
			VictoryFlag:  yo.VictoryFlag,
			Wearable:     yo.Wearable,
			Text:         strings.TrimSpace(yo.Text),
		}
		if obj.Kind == "" {
			obj.Kind = KindItem
		}
		for _, yi := range yo.Interactions {
			obj.Interactions = append(obj.Interactions, Interaction{
				Verb:         strings.ToLower(yi.Verb),
				Condition:    toStateMap(yi.Condition),
				Response:     strings.TrimSpace(yi.Response),
				StateChange:  toStateMap(yi.StateChange),
				FlagChange:   yi.FlagChange,
				SanityEffect: yi.SanityEffect,
				CurseTrigger: yi.CurseTrigger,
			})
		}
		if yp := yo.Prerequisites; yp != nil {
			obj.Prerequisites = &Prerequisites{
				Flags:   yp.Flags,
				Items:   yp.Items,
				Room:    yp.Room,
				Verbs:   yp.Verbs,
				Message: yp.Message,
				Hint:    yp.Hint,
			}
		}
		zone.Objects[obj.ID] = obj
	}

	return zone
}

func toStateMap(m map[string]Value) StateMap {
	if len(m) == 0 {
		return nil
	}
	out := make(StateMap, len(m))
	for k, v := range m {
		out[StateKey(k)] = v
	}
	return out
}
