package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scenario is a colony described in YAML: a map plus the entities placed on it
type Scenario struct {
	Name  string   `yaml:"name" validate:"required"`
	Ticks int      `yaml:"ticks" validate:"min=0"`
	Map   []string `yaml:"map" validate:"required,min=1,dive,required"`

	Supervisors  []SupervisorSpec  `yaml:"supervisors" validate:"required,min=1,dive"`
	Items        []ItemSpec        `yaml:"items" validate:"dive"`
	Stockpiles   []StockpileSpec   `yaml:"stockpiles" validate:"dive"`
	Mixers       []MixerSpec       `yaml:"mixers" validate:"dive"`
	Tanks        []TankSpec        `yaml:"tanks" validate:"dive"`
	Buckets      []BucketSpec      `yaml:"buckets" validate:"dive"`
	Wheelbarrows []WheelbarrowSpec `yaml:"wheelbarrows" validate:"dive"`
	Blueprints   []BlueprintSpec   `yaml:"blueprints" validate:"dive"`
	Sites        []SiteSpec        `yaml:"sites" validate:"dive"`
	Nodes        []NodeSpec        `yaml:"nodes" validate:"dive"`
	Designations []DesignationSpec `yaml:"designations" validate:"dive"`
	Requests     []RequestSpec     `yaml:"requests" validate:"dive"`
}

// Point is a cell written either as [x, y] or {x: .., y: ..}
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// UnmarshalYAML accepts the flow sequence form as well as the mapping form
func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var xy []int
		if err := node.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: a cell needs exactly two coordinates, got %d", node.Line, len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	}
	type plain Point
	return node.Decode((*plain)(p))
}

// AreaSpec bounds a supervisor's command area, both corners inclusive
type AreaSpec struct {
	Min Point `yaml:"min"`
	Max Point `yaml:"max"`
}

type SupervisorSpec struct {
	Name    string       `yaml:"name" validate:"required"`
	Cell    Point        `yaml:"cell"`
	Area    *AreaSpec    `yaml:"area"`
	Workers []WorkerSpec `yaml:"workers" validate:"dive"`
}

type WorkerSpec struct {
	Name  string  `yaml:"name"`
	Cell  Point   `yaml:"cell"`
	Speed float64 `yaml:"speed" validate:"gte=0"`
}

type ItemSpec struct {
	Name     string `yaml:"name"`
	Resource string `yaml:"resource" validate:"required,resource,ne=WATER"`
	Cell     Point  `yaml:"cell"`
	// Count spawns that many copies; only the first carries Name
	Count int `yaml:"count" validate:"min=0"`
}

type StockpileSpec struct {
	Name     string `yaml:"name"`
	Owner    string `yaml:"owner"`
	Cell     Point  `yaml:"cell"`
	Capacity int    `yaml:"capacity" validate:"min=1"`
	Accepts  string `yaml:"accepts" validate:"omitempty,resource,ne=WATER"`
	// Stored pre-fills the stockpile with items of Accepts
	Stored int `yaml:"stored" validate:"min=0,ltefield=Capacity"`
}

type MixerSpec struct {
	Name     string         `yaml:"name"`
	Owner    string         `yaml:"owner"`
	Cell     Point          `yaml:"cell"`
	Capacity map[string]int `yaml:"capacity" validate:"required,min=1,dive,keys,resource,endkeys,min=1"`
	Stored   map[string]int `yaml:"stored" validate:"dive,keys,resource,endkeys,min=0"`
}

type TankSpec struct {
	Name     string `yaml:"name"`
	Owner    string `yaml:"owner"`
	Cell     Point  `yaml:"cell"`
	Capacity int    `yaml:"capacity" validate:"min=1"`
	Water    int    `yaml:"water" validate:"min=0,ltefield=Capacity"`
}

type BucketSpec struct {
	Name     string `yaml:"name"`
	Home     string `yaml:"home" validate:"required"`
	Cell     Point  `yaml:"cell"`
	Capacity int    `yaml:"capacity" validate:"min=1"`
}

type WheelbarrowSpec struct {
	Name     string `yaml:"name"`
	Cell     Point  `yaml:"cell"`
	Capacity int    `yaml:"capacity" validate:"min=1"`
}

type BlueprintSpec struct {
	Name      string         `yaml:"name"`
	Owner     string         `yaml:"owner"`
	Cells     []Point        `yaml:"cells" validate:"required,min=1"`
	Materials map[string]int `yaml:"materials" validate:"required,min=1,dive,keys,resource,endkeys,min=1"`
}

type SiteSpec struct {
	Name  string  `yaml:"name"`
	Owner string  `yaml:"owner"`
	Kind  string  `yaml:"kind" validate:"required,oneof=FLOOR WALL"`
	Tiles []Point `yaml:"tiles" validate:"required,min=1"`
}

type NodeSpec struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind" validate:"required,oneof=TREE ROCK SAND_PILE BONE_PILE"`
	Cell      Point  `yaml:"cell"`
	Remaining int    `yaml:"remaining" validate:"min=1"`
	Yield     int    `yaml:"yield" validate:"min=0"`
}

// DesignationSpec is a player designation; Target names another entity
type DesignationSpec struct {
	Kind     string `yaml:"kind" validate:"required,work_kind"`
	Target   string `yaml:"target" validate:"required"`
	Owner    string `yaml:"owner"`
	Issuer   string `yaml:"issuer"`
	Slots    int    `yaml:"slots" validate:"min=0"`
	Priority int    `yaml:"priority"`
}

// RequestSpec opens a pinned transport request moving Source to Anchor
type RequestSpec struct {
	Source   string `yaml:"source" validate:"required"`
	Anchor   string `yaml:"anchor" validate:"required"`
	Issuer   string `yaml:"issuer" validate:"required"`
	Priority int    `yaml:"priority"`
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates scenario YAML. Unknown keys are errors.
func Parse(raw []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func validate(sc *Scenario) error {
	if err := newValidator().Struct(sc); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			messages := make([]string, 0, len(errs))
			for _, e := range errs {
				messages = append(messages, fmt.Sprintf("%s failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
			}
			return fmt.Errorf("invalid scenario:\n  %s", strings.Join(messages, "\n  "))
		}
		return err
	}

	width := len(sc.Map[0])
	for i, row := range sc.Map {
		if len(row) != width {
			return fmt.Errorf("invalid scenario: map row %d has width %d, want %d", i, len(row), width)
		}
	}

	seen := make(map[string]string)
	for _, n := range sc.names() {
		if prev, ok := seen[n.name]; ok {
			return fmt.Errorf("invalid scenario: name %q used by both a %s and a %s", n.name, prev, n.kind)
		}
		seen[n.name] = n.kind
	}
	return nil
}

type namedEntity struct {
	kind string
	name string
}

// names lists every non-empty entity name in declaration order
func (sc *Scenario) names() []namedEntity {
	var out []namedEntity
	add := func(kind, name string) {
		if name != "" {
			out = append(out, namedEntity{kind: kind, name: name})
		}
	}
	for _, s := range sc.Supervisors {
		add("supervisor", s.Name)
		for _, w := range s.Workers {
			add("worker", w.Name)
		}
	}
	for _, v := range sc.Items {
		add("item", v.Name)
	}
	for _, v := range sc.Stockpiles {
		add("stockpile", v.Name)
	}
	for _, v := range sc.Mixers {
		add("mixer", v.Name)
	}
	for _, v := range sc.Tanks {
		add("tank", v.Name)
	}
	for _, v := range sc.Buckets {
		add("bucket", v.Name)
	}
	for _, v := range sc.Wheelbarrows {
		add("wheelbarrow", v.Name)
	}
	for _, v := range sc.Blueprints {
		add("blueprint", v.Name)
	}
	for _, v := range sc.Sites {
		add("site", v.Name)
	}
	for _, v := range sc.Nodes {
		add("node", v.Name)
	}
	return out
}
