package apitest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

// LoadPlanFile reads a plan from a .yaml, .yml or .json file. Files with another
// extension are tried as JSON first and YAML second.
func LoadPlanFile(path string) (*TestPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read plan file %s", path)
	}

	plan, err := ParsePlan(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, errors.Wrapf(err, "parse plan file %s", path)
	}
	return plan, nil
}

// ParsePlan decodes a plan in the given format ("yaml", "yml", "json" or empty to guess),
// applies defaults and validates it.
func ParsePlan(data []byte, format string) (*TestPlan, error) {
	plan := new(TestPlan)

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, plan); err != nil {
			return nil, errors.Wrap(err, "decode yaml plan")
		}
	case "json":
		if err := decodeStrictJSON(data, plan); err != nil {
			return nil, err
		}
	default:
		if err := decodeStrictJSON(data, plan); err != nil {
			plan = new(TestPlan)
			if yerr := yaml.Unmarshal(data, plan); yerr != nil {
				return nil, errors.Wrap(yerr, "plan is neither json nor yaml")
			}
		}
	}

	if err := normalizePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func decodeStrictJSON(data []byte, plan *TestPlan) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(plan); err != nil {
		return errors.Wrap(err, "decode json plan")
	}
	return nil
}
