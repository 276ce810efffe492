package model

import (
	"fmt"
	"strings"
)

// PersonalityType is a behavioral money personality.
type PersonalityType string

// Personality type constants.
const (
	PersonalitySaver       PersonalityType = "saver"
	PersonalitySpender     PersonalityType = "spender"
	PersonalityPlanner     PersonalityType = "planner"
	PersonalityImpulse     PersonalityType = "impulse"
	PersonalityConvenience PersonalityType = "convenience"
)

// PersonalityTypes lists every supported personality.
func PersonalityTypes() []PersonalityType {
	return []PersonalityType{
		PersonalitySaver,
		PersonalitySpender,
		PersonalityPlanner,
		PersonalityImpulse,
		PersonalityConvenience,
	}
}

// ParsePersonalityType accepts the canonical names plus a few common spellings.
func ParsePersonalityType(s string) (PersonalityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "saver":
		return PersonalitySaver, nil
	case "spender":
		return PersonalitySpender, nil
	case "planner":
		return PersonalityPlanner, nil
	case "impulse", "impulsive":
		return PersonalityImpulse, nil
	case "convenience", "convenience_focused", "convenience-focused":
		return PersonalityConvenience, nil
	}
	return "", fmt.Errorf("unknown personality type %q", s)
}

// PersonalityProfile is produced by an external profiling process.
type PersonalityProfile struct {
	Primary            PersonalityType `json:"primary"`
	Secondary          PersonalityType `json:"secondary,omitempty"`
	RiskTolerance      string          `json:"risk_tolerance,omitempty"`
	CommunicationStyle string          `json:"communication_style,omitempty"`
}
