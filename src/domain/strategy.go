package domain

import (
	"encoding/json"
	"fmt"
)

type Strategy uint

const (
	StrategyBlueGreen Strategy = iota
	StrategyCanary
	StrategyManualApproval
	StrategyRolling
)

func (self *Strategy) String() (string, error) {
	switch *self {
	case StrategyBlueGreen:
		return "blue_green", nil
	case StrategyCanary:
		return "canary", nil
	case StrategyManualApproval:
		return "manual_approval", nil
	case StrategyRolling:
		return "rolling", nil
	default:
		return "", fmt.Errorf("Unknown value %d", *self)
	}
}

func (self *Strategy) FromString(str string) error {
	switch str {
	case "blue_green":
		*self = StrategyBlueGreen
	case "canary":
		*self = StrategyCanary
	case "manual_approval":
		*self = StrategyManualApproval
	case "rolling":
		*self = StrategyRolling
	default:
		return fmt.Errorf("Unknown value %q", str)
	}
	return nil
}

func (self *Strategy) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return self.FromString(str)
}

func (self Strategy) MarshalJSON() ([]byte, error) {
	if str, err := self.String(); err != nil {
		return nil, err
	} else {
		return json.Marshal(str)
	}
}

func (self *Strategy) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return self.FromString(v)
	case []byte:
		return self.FromString(string(v))
	default:
		return fmt.Errorf("Cannot scan %T into Strategy", value)
	}
}

// StrategyRecommendation is the decision produced for one assessment.
// It is not persisted by this core.
type StrategyRecommendation struct {
	Strategy   Strategy  `json:"strategy"`
	Confidence float64   `json:"confidence"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Reasoning  []string  `json:"reasoning"`
}
