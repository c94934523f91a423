package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Skill struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// UnmarshalJSON accepts every shape the frontend has produced over time:
// "Go", {"name":"Go"}, {"name":"Go","required":true} and {"skill":{"name":"Go"}}.
func (s *Skill) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*s = Skill{Name: strings.TrimSpace(name)}
		return nil
	}

	var raw struct {
		Name     *string `json:"name"`
		Required bool    `json:"required"`
		Skill    *struct {
			Name string `json:"name"`
		} `json:"skill"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("invalid skill: %s", string(b))
	}

	switch {
	case raw.Name != nil:
		*s = Skill{Name: strings.TrimSpace(*raw.Name), Required: raw.Required}
	case raw.Skill != nil:
		*s = Skill{Name: strings.TrimSpace(raw.Skill.Name), Required: raw.Required}
	default:
		return fmt.Errorf("invalid skill: %s", string(b))
	}
	return nil
}

// NormalizeSkills drops blank names and repeated names (case-insensitive).
// A repeated skill marked required keeps the required flag.
func NormalizeSkills(skills []Skill) []Skill {
	out := make([]Skill, 0, len(skills))
	index := make(map[string]int, len(skills))
	for _, sk := range skills {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			out[i].Required = out[i].Required || sk.Required
			continue
		}
		index[key] = len(out)
		out = append(out, Skill{Name: name, Required: sk.Required})
	}
	return out
}

type Stage struct {
	Name      string `json:"name"`
	Date      *Date  `json:"date"`
	Completed bool   `json:"completed"`
}
