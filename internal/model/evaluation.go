package model

import (
	"errors"
	"fmt"
)

// Evaluation periods, in days.
var EvaluationPeriods = []int{7, 14, 30}

var ErrInvalidPeriod = errors.New("evaluation period must be 7, 14 or 30 days")

type EvaluationTag string

const (
	TagExcellent EvaluationTag = "excellent"
	TagGood      EvaluationTag = "good"
	TagBad       EvaluationTag = "bad"
	TagNone      EvaluationTag = ""
)

type Evaluation struct {
	UserID    string `json:"userId"`
	Excellent bool   `json:"excellent"`
	Good      bool   `json:"good"`
	Bad       bool   `json:"bad"`
	Period    int    `json:"period"`
}

// EvaluationKey is the map key used to store e.
func EvaluationKey(userID string, period int) string {
	return fmt.Sprintf("%s_%d", userID, period)
}

func ValidPeriod(period int) bool {
	for _, p := range EvaluationPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// Tag returns the single tag that is set, or TagNone.
func (e Evaluation) Tag() EvaluationTag {
	switch {
	case e.Excellent:
		return TagExcellent
	case e.Good:
		return TagGood
	case e.Bad:
		return TagBad
	}
	return TagNone
}

// WithTag sets tag and clears the other two flags.
func (e Evaluation) WithTag(tag EvaluationTag) (Evaluation, error) {
	e.Excellent, e.Good, e.Bad = false, false, false
	switch tag {
	case TagExcellent:
		e.Excellent = true
	case TagGood:
		e.Good = true
	case TagBad:
		e.Bad = true
	case TagNone:
	default:
		return e, fmt.Errorf("unknown evaluation tag %q", tag)
	}
	return e, nil
}
