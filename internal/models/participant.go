package models

import "strings"

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

func ParseGender(raw string) (Gender, bool) {
	g := Gender(strings.ToUpper(strings.TrimSpace(raw)))
	return g, g.IsValid()
}

// Participant is the record exchanged with the remote participant API.
type Participant struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Gender       Gender `json:"gender"`
	Email        string `json:"email"`
	Contact      string `json:"contact"`
	EventName    string `json:"eventName"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
}
