package repair

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
)

type Status string

const (
	StatusReceived        Status = "Received"
	StatusDiagnosing      Status = "Diagnosing"
	StatusWaitingForParts Status = "Waiting for Parts"
	StatusRepaired        Status = "Repaired"
	StatusReadyForPickup  Status = "Ready for Pickup"
	StatusFinished        Status = "Finished"
	StatusPickedUp        Status = "Picked Up"
)

func (s Status) String() string {
	return string(s)
}

// Columns is the board order. StatusPickedUp has no column.
var Columns = []Status{
	StatusReceived,
	StatusDiagnosing,
	StatusWaitingForParts,
	StatusRepaired,
	StatusReadyForPickup,
	StatusFinished,
}

var AllStatuses = append(slices.Clone(Columns), StatusPickedUp)

func (s Status) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

func (s Status) OnBoard() bool {
	return slices.Contains(Columns, s)
}

type PartType string

const (
	PartOriginal   PartType = "original"
	PartCompatible PartType = "compatible"
)

type Part struct {
	Name string   `json:"name"`
	Type PartType `json:"type"`
}

type Job struct {
	ID                  string  `json:"id"`
	CustomerName        string  `json:"customerName"`
	Phone               string  `json:"phone"`
	Device              string  `json:"device"`
	Brand               string  `json:"brand,omitempty"`
	Model               string  `json:"model,omitempty"`
	Issue               string  `json:"issue"`
	Parts               []Part  `json:"parts"`
	Status              Status  `json:"status"`
	Progress            int     `json:"progress"`
	Technician          string  `json:"technician"`
	Price               float64 `json:"price"`
	EntryDate           string  `json:"entryDate"`
	EstimatedCompletion string  `json:"estimatedCompletion,omitempty"`
	IsPublic            bool    `json:"isPublic"`
}

var (
	ErrNotFound          = errors.New("repair job not found")
	ErrInvalidTransition = errors.New("invalid repair status transition")
	ErrValidation        = errors.New("please provide the customer name, the issue and a device or its brand and model")
	ErrInvalidField      = errors.New("invalid repair job field")
	ErrDuplicateID       = errors.New("a repair job with this id already exists")
	ErrNoFreeID          = errors.New("no free repair job id")
)

var idPattern = regexp.MustCompile(`^WX-\d{4}$`)

func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

const maxIDs = 10000

func randomID() string {
	return formatID(rand.IntN(maxIDs))
}

func formatID(n int) string {
	return fmt.Sprintf("WX-%04d", n)
}

// prepare checks the form requirements and fills in derived fields. Device
// is synthesized from brand and model when missing.
func (j *Job) prepare() error {
	j.CustomerName = strings.TrimSpace(j.CustomerName)
	j.Device = strings.TrimSpace(j.Device)
	j.Brand = strings.TrimSpace(j.Brand)
	j.Model = strings.TrimSpace(j.Model)
	j.Issue = strings.TrimSpace(j.Issue)

	hasDevice := j.Device != "" || (j.Brand != "" && j.Model != "")
	if !hasDevice || j.CustomerName == "" || j.Issue == "" {
		return ErrValidation
	}

	if j.Device == "" {
		j.Device = j.Brand + " " + j.Model
	}

	if j.Status == "" {
		j.Status = StatusReceived
	}
	if !j.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidField, j.Status)
	}
	if j.Progress < 0 || j.Progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalidField)
	}
	if j.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidField)
	}
	for _, p := range j.Parts {
		if p.Type != PartOriginal && p.Type != PartCompatible {
			return fmt.Errorf("%w: part %q has unknown type %q", ErrInvalidField, p.Name, p.Type)
		}
	}
	if j.Parts == nil {
		j.Parts = []Part{}
	}

	return nil
}

// Filter narrows the board. Text matches customer name, device, id or
// phone as a case-insensitive substring; Technician must match exactly.
// Both conditions must hold.
type Filter struct {
	Text       string
	Technician string
}

func (f Filter) Matches(j Job) bool {
	if f.Technician != "" && !strings.EqualFold(f.Technician, "all") && j.Technician != f.Technician {
		return false
	}

	needle := strings.ToLower(strings.TrimSpace(f.Text))
	if needle == "" {
		return true
	}

	for _, field := range []string{j.CustomerName, j.Device, j.ID, j.Phone} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}

type Column struct {
	Status Status `json:"status"`
	Jobs   []Job  `json:"jobs"`
}

// Partition groups jobs by board column, preserving their relative order.
// Jobs without a column are left out.
func Partition(jobs []Job) []Column {
	columns := make([]Column, len(Columns))
	index := make(map[Status]int, len(Columns))
	for i, s := range Columns {
		columns[i] = Column{Status: s, Jobs: []Job{}}
		index[s] = i
	}

	for _, j := range jobs {
		if i, ok := index[j.Status]; ok {
			columns[i].Jobs = append(columns[i].Jobs, j)
		}
	}

	return columns
}
