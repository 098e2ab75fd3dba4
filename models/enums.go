package models

import "fmt"

type ContractType string

const (
	ContractSale ContractType = "sale"
	ContractRent ContractType = "rent"
)

func (c ContractType) Valid() bool {
	switch c {
	case ContractSale, ContractRent:
		return true
	}
	return false
}

func ParseContractType(s string) (ContractType, error) {
	c := ContractType(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown contract type %q", s)
	}
	return c, nil
}

// PropertyStatus is the lifecycle state of a listing
type PropertyStatus string

const (
	StatusDraft     PropertyStatus = "draft"
	StatusAvailable PropertyStatus = "available"
	StatusOption    PropertyStatus = "option"
	StatusSold      PropertyStatus = "sold"
	StatusRented    PropertyStatus = "rented"
	StatusSuspended PropertyStatus = "suspended"
	StatusArchived  PropertyStatus = "archived"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusAvailable, StatusOption, StatusSold,
		StatusRented, StatusSuspended, StatusArchived:
		return true
	}
	return false
}

// Closed reports whether the property has left the market for good.
func (s PropertyStatus) Closed() bool {
	switch s {
	case StatusSold, StatusRented, StatusArchived:
		return true
	}
	return false
}

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	st := PropertyStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown property status %q", s)
	}
	return st, nil
}

// MatchableStatuses are the statuses the catalog offers to clients
var MatchableStatuses = []PropertyStatus{StatusAvailable, StatusDraft, StatusOption}

// PriorityLevel is the client's business tier
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
	PriorityVIP    PriorityLevel = "vip"
)

func ParsePriorityLevel(s string) (PriorityLevel, error) {
	switch p := PriorityLevel(s); p {
	case "", PriorityLow, PriorityMedium, PriorityHigh, PriorityVIP:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority level %q", s)
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(s); u {
	case "", UrgencyLow, UrgencyMedium, UrgencyHigh:
		return u, nil
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

type Furnished string

const (
	FurnishedYes     Furnished = "yes"
	FurnishedNo      Furnished = "no"
	FurnishedPartial Furnished = "partial"
)

func ParseFurnished(s string) (Furnished, error) {
	switch f := Furnished(s); f {
	case "", FurnishedYes, FurnishedNo, FurnishedPartial:
		return f, nil
	}
	return "", fmt.Errorf("unknown furnished state %q", s)
}

type Condition string

const (
	ConditionNew        Condition = "new"
	ConditionExcellent  Condition = "excellent"
	ConditionGood       Condition = "good"
	ConditionToRenovate Condition = "to_renovate"
)

func ParseCondition(s string) (Condition, error) {
	switch c := Condition(s); c {
	case "", ConditionNew, ConditionExcellent, ConditionGood, ConditionToRenovate:
		return c, nil
	}
	return "", fmt.Errorf("unknown condition %q", s)
}
