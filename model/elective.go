package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CBCS allocation policies
const (
	CbcsTypeAllocated = "allocated" // direct/manual: one selected course per bucket
	CbcsTypeOpt       = "opt"       // FCFS ranked-preference allocation
)

// CBCS round statuses
const (
	CbcsStatusOpen      = "open"
	CbcsStatusClosed    = "closed"
	CbcsStatusCompleted = "completed"
)

// Elective selection statuses
const (
	SelectionPending   = "pending"
	SelectionAllocated = "allocated"
)

// CbcsConfig is one elective-allocation round for a semester. Type
// selects the policy; the window bounds when students may submit.
type CbcsConfig struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	SemesterID uint           `gorm:"not null;index" json:"semester_id"`
	Type       string         `gorm:"type:varchar(20);not null" json:"type"`   // allocated, opt
	Status     string         `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	OpensAt    time.Time      `json:"opens_at"`
	ClosesAt   time.Time      `json:"closes_at"`

	// Relationships
	Semester Semester        `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"semester,omitempty"`
	Runs     []AllocationRun `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE" json:"-"`
}

// ElectiveBucket groups the elective courses a student picks one of
type ElectiveBucket struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	SemesterID uint           `gorm:"not null;uniqueIndex:idx_semester_bucket_number" json:"semester_id"`
	Number     int            `gorm:"not null;uniqueIndex:idx_semester_bucket_number" json:"number"`
	Name       string         `gorm:"not null" json:"name"`

	// Relationships
	Semester Semester       `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE" json:"semester,omitempty"`
	Courses  []BucketCourse `gorm:"foreignKey:BucketID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
}

// BucketCourse is the membership of a course in a bucket. A course may
// belong to at most one bucket per semester; the service checks that
// across buckets before inserting.
type BucketCourse struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	BucketID  uint           `gorm:"not null;uniqueIndex:idx_bucket_course" json:"bucket_id"`
	CourseID  uint           `gorm:"not null;uniqueIndex:idx_bucket_course;index" json:"course_id"`

	// Relationships
	Bucket ElectiveBucket `gorm:"foreignKey:BucketID;constraint:OnDelete:CASCADE" json:"bucket,omitempty"`
	Course Course         `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// StudentElectiveSelection records a student's chosen course for a
// bucket under the direct policy. The (student, bucket) unique index is
// the real guarantee of one selection per bucket; the application-level
// pre-check on top of it is defense in depth.
type StudentElectiveSelection struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID uint           `gorm:"not null;uniqueIndex:idx_student_bucket" json:"student_id"`
	BucketID  uint           `gorm:"not null;uniqueIndex:idx_student_bucket" json:"bucket_id"`
	CourseID  uint           `gorm:"not null" json:"course_id"`
	Status    string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, allocated

	// Relationships
	Student User           `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Bucket  ElectiveBucket `gorm:"foreignKey:BucketID;constraint:OnDelete:CASCADE" json:"bucket,omitempty"`
	Course  Course         `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// StudentCourseChoice is one ranked preference under the OPT policy
type StudentCourseChoice struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID       uint           `gorm:"not null;uniqueIndex:idx_choice_order;uniqueIndex:idx_choice_course" json:"student_id"`
	ConfigID        uint           `gorm:"not null;uniqueIndex:idx_choice_order;uniqueIndex:idx_choice_course;index" json:"config_id"`
	CourseID        uint           `gorm:"not null;uniqueIndex:idx_choice_course" json:"course_id"`
	StaffID         uint           `gorm:"not null" json:"staff_id"`
	SectionID       uint           `gorm:"not null" json:"section_id"`
	PreferenceOrder int            `gorm:"not null;uniqueIndex:idx_choice_order" json:"preference_order"`

	// Relationships
	Student User          `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Config  CbcsConfig    `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE" json:"-"`
	Course  Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Section CourseSection `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"section,omitempty"`
}

// AllocationRun is one admin-triggered FCFS batch allocation. Report
// holds the per-student outcome (allocated courses, skipped with
// reasons) so the run is auditable after the fact.
type AllocationRun struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	ConfigID    uint           `gorm:"not null;index" json:"config_id"`
	RunID       string         `gorm:"type:varchar(40);uniqueIndex" json:"run_id"`
	Status      string         `gorm:"type:varchar(20);not null" json:"status"` // started, completed, failed
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Report      datatypes.JSON `json:"report"`

	// Relationships
	Config CbcsConfig `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE" json:"-"`
}
