package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/instances"
)

type ShiftDef struct {
	ID    int `yaml:"id"`
	Start int `yaml:"start_min"`
	End   int `yaml:"end_min"`
}

func (s ShiftDef) ToModel() model.Shift {
	return model.Shift{ID: s.ID, Start: s.Start, End: s.End}
}

// RulesDef overrides individual contract values. Nil fields keep the
// default.
type RulesDef struct {
	MaxDriving        *int `yaml:"max_driving_min"`
	MaxNoBreakDriving *int `yaml:"max_no_break_driving_min"`
	MinBreak          *int `yaml:"min_break_min"`
	MinGap            *int `yaml:"min_gap_min"`
	MaxWorking        *int `yaml:"max_working_min"`
	MinWorking        *int `yaml:"min_working_min"`
	Setup             *int `yaml:"setup_min"`
	Cleanup           *int `yaml:"cleanup_min"`
}

func (rd RulesDef) ToModel() model.Rules {
	r := model.DefaultRules()
	if rd.MaxDriving != nil {
		r.MaxDriving = *rd.MaxDriving
	}
	if rd.MaxNoBreakDriving != nil {
		r.MaxNoBreakDriving = *rd.MaxNoBreakDriving
	}
	if rd.MinBreak != nil {
		r.MinBreak = *rd.MinBreak
	}
	if rd.MinGap != nil {
		r.MinGap = *rd.MinGap
	}
	if rd.MaxWorking != nil {
		r.MaxWorking = *rd.MaxWorking
	}
	if rd.MinWorking != nil {
		r.MinWorking = *rd.MinWorking
	}
	if rd.Setup != nil {
		r.Setup = *rd.Setup
	}
	if rd.Cleanup != nil {
		r.Cleanup = *rd.Cleanup
	}
	return r
}

type Expected struct {
	MaxDrivers int  `yaml:"max_drivers,omitempty"`
	Coverage   bool `yaml:"coverage,omitempty"`
	Acked      int  `yaml:"acked,omitempty"`
	Infeasible bool `yaml:"infeasible,omitempty"`
}

type Scenario struct {
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description,omitempty"`
	Sample       string     `yaml:"sample,omitempty"`
	InstanceFile string     `yaml:"instance_file,omitempty"`
	Shifts       []ShiftDef `yaml:"shifts,omitempty"`
	Rules        RulesDef   `yaml:"rules,omitempty"`
	Drivers      []string   `yaml:"drivers,omitempty"`
	FailDrivers  []string   `yaml:"fail_drivers,omitempty"`
	NoAckDrivers []string   `yaml:"no_ack_drivers,omitempty"`
	Expected     Expected   `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// BuildInstance resolves the scenario timetable. Inline shifts win over an
// instance file, which wins over a named sample.
func (sc *Scenario) BuildInstance() (model.Instance, error) {
	if len(sc.Shifts) > 0 {
		shifts := make([]model.Shift, len(sc.Shifts))
		for i, s := range sc.Shifts {
			shifts[i] = s.ToModel()
		}
		return model.Instance{Name: sc.Name, Shifts: shifts}.Sorted(), nil
	}
	if sc.InstanceFile != "" {
		return instances.Load(sc.InstanceFile)
	}
	if sc.Sample != "" {
		return instances.ByName(sc.Sample)
	}
	return model.Instance{}, fmt.Errorf("scenario %s has no timetable", sc.Name)
}
