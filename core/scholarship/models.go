package scholarship

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chuo/core"
)

// Kinds
const (
	KindScholarship = "scholarship"
	KindConcession  = "concession"
)

// Statuses
const (
	StatusApplied   = "applied"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusDisbursed = "disbursed"
)

var (
	Kinds    = []string{KindScholarship, KindConcession}
	Statuses = []string{StatusApplied, StatusApproved, StatusRejected, StatusDisbursed}
)

// Scholarship is a financial award or fee concession granted to a student.
type Scholarship struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	StudentName  string    `json:"student_name"`
	Program      string    `json:"program,omitempty"`
	Kind         string    `json:"kind"`
	Category     string    `json:"category,omitempty"` // merit, need, sports...
	Amount       int64     `json:"amount"`             // minor units
	AcademicYear string    `json:"academic_year"`      // YYYY-YY
	Status       string    `json:"status"`
	AwardedOn    *string   `json:"awarded_on,omitempty"` // YYYY-MM-DD
	Remarks      string    `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// IsAwarded reports whether the amount counts towards the awarded total.
func (s Scholarship) IsAwarded() bool {
	return s.Status == StatusApproved || s.Status == StatusDisbursed
}

// NewScholarship contains information needed to create a new Scholarship.
type NewScholarship struct {
	StudentID    string  `json:"student_id" validate:"required,max=50,alphanum_"`
	StudentName  string  `json:"student_name" validate:"required,max=200"`
	Program      string  `json:"program" validate:"max=100"`
	Kind         string  `json:"kind" validate:"required,oneof=scholarship concession"`
	Category     string  `json:"category" validate:"max=50"`
	Amount       int64   `json:"amount" validate:"gte=0"`
	AcademicYear string  `json:"academic_year" validate:"required,academicyear"`
	Status       string  `json:"status" validate:"omitempty,oneof=applied approved rejected disbursed"`
	AwardedOn    *string `json:"awarded_on" validate:"omitempty,date"`
	Remarks      string  `json:"remarks" validate:"max=2000"`
}

func (ns *NewScholarship) Clean() {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.StudentName = core.CleanString(ns.StudentName)
	ns.Program = core.CleanString(ns.Program)
	ns.Kind = core.CleanString(ns.Kind, true /* lower */)
	ns.Category = core.CleanString(ns.Category, true /* lower */)
	ns.AcademicYear = core.CleanString(ns.AcademicYear)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	ns.AwardedOn = core.CleanStringPtr(ns.AwardedOn)
	ns.Remarks = core.CleanString(ns.Remarks)

	if ns.Status == "" {
		ns.Status = StatusApplied
	}
}

func (ns *NewScholarship) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateScholarship replaces every editable field of an existing Scholarship.
type UpdateScholarship struct {
	NewScholarship
}

func (us *UpdateScholarship) Validate(validate *validator.Validate) error {
	us.Clean()
	return validate.Struct(us)
}

type QueryFilter struct {
	Search       string   `query:"search"`
	Kinds        []string `query:"kind"`
	Statuses     []string `query:"status"`
	AcademicYear string   `query:"academic_year"`
	Program      string   `query:"program"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AcademicYear = core.CleanString(qf.AcademicYear)
	qf.Program = core.CleanString(qf.Program)
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf == nil || (qf.Search == "" && len(qf.Kinds) == 0 && len(qf.Statuses) == 0 && qf.AcademicYear == "" && qf.Program == "")
}

// Match applies AND on the set filter fields.
// Search does a case-insensitive match on one of StudentID, StudentName, Program or Category.
func (qf *QueryFilter) Match(s Scholarship) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(s.StudentID), q) ||
			strings.Contains(strings.ToLower(s.StudentName), q) ||
			strings.Contains(strings.ToLower(s.Program), q) ||
			strings.Contains(strings.ToLower(s.Category), q)) {
			return false
		}
	}
	if len(qf.Kinds) > 0 && !contains(qf.Kinds, s.Kind) {
		return false
	}
	if len(qf.Statuses) > 0 && !contains(qf.Statuses, s.Status) {
		return false
	}
	if qf.AcademicYear != "" && s.AcademicYear != qf.AcademicYear {
		return false
	}
	if qf.Program != "" && s.Program != qf.Program {
		return false
	}
	return true
}

func contains(values []string, val string) bool {
	for _, v := range values {
		if v == val {
			return true
		}
	}
	return false
}

// OrderingColumns maps the fields scholarships can be ordered by to their storage columns.
var OrderingColumns = map[string]string{
	"student_id":    "student_id",
	"student_name":  "student_name",
	"program":       "program",
	"kind":          "kind",
	"amount":        "amount",
	"academic_year": "academic_year",
	"status":        "status",
	"awarded_on":    "awarded_on",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

// DefaultOrdering lists the latest records first.
var DefaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
