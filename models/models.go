package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User model. Students and administrators are both users; the finance core only
// ever uses their IDs.
type User struct {
	BaseModel
	Username  string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password  string `json:"-" gorm:"size:255;not null"`
	Email     string `json:"email" gorm:"size:255;uniqueIndex"`
	Phone     string `json:"phone" gorm:"size:20"`
	FirstName string `json:"first_name" gorm:"size:100"`
	LastName  string `json:"last_name" gorm:"size:100"`
	Role      string `json:"role" gorm:"size:50;not null;default:'student'"` // admin, staff, teacher, student
	Status    string `json:"status" gorm:"size:50;not null;default:'active'"` // active, inactive, suspended

	// LINE account of the student's guardian, when linked. Receipts and
	// arrears reminders are pushed there.
	LineUserID string `json:"line_user_id,omitempty" gorm:"size:100;index"`
}

// SchoolYear model. Exactly one row carries Current=true; SchoolYearService
// clears the others inside the same transaction when it is set.
type SchoolYear struct {
	BaseModel
	Name      string    `json:"name" gorm:"size:50;not null;uniqueIndex"` // e.g. "2025-2026"
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Current   bool      `json:"current" gorm:"default:false;index"`
}

// ClassLevel model, e.g. "6ème", "5ème"
type ClassLevel struct {
	BaseModel
	Name        string `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
}

// Class model. MaxStudents caps the number of active roster entries; the
// enrollment confirmation locks this row while checking capacity.
type Class struct {
	BaseModel
	Name          string `json:"name" gorm:"size:50;not null"`
	LevelID       uint   `json:"level_id" gorm:"not null"`
	SchoolYearID  uint   `json:"school_year_id" gorm:"not null;index"`
	MainTeacherID *uint  `json:"main_teacher_id"`
	MaxStudents   int    `json:"max_students" gorm:"not null;default:30"`

	// Relationships
	Level       ClassLevel `json:"level,omitempty" gorm:"foreignKey:LevelID"`
	SchoolYear  SchoolYear `json:"school_year,omitempty" gorm:"foreignKey:SchoolYearID"`
	MainTeacher *User      `json:"main_teacher,omitempty" gorm:"foreignKey:MainTeacherID"`
}

// Enrollment is the academic roster entry: a student's active membership in a
// class for a school year. Created exclusively by the enrollment confirmation.
type Enrollment struct {
	BaseModel
	StudentID      uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_class_year"`
	ClassID        uint      `json:"class_id" gorm:"not null;uniqueIndex:idx_enrollment_student_class_year"`
	SchoolYearID   uint      `json:"school_year_id" gorm:"not null;uniqueIndex:idx_enrollment_student_class_year"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Active         bool      `json:"active" gorm:"default:true;index"`

	// Relationships
	Student    User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Class      Class      `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	SchoolYear SchoolYear `json:"school_year,omitempty" gorm:"foreignKey:SchoolYearID"`
}

// FeeObligation defines a priced fee for a (class, school year). A registration
// fee gates enrollment confirmation and never appears in the monthly schedule;
// every other obligation follows its recurrence.
type FeeObligation struct {
	BaseModel
	Name              string          `json:"name" gorm:"size:100;not null"`
	ClassID           uint            `json:"class_id" gorm:"not null;index"`
	SchoolYearID      uint            `json:"school_year_id" gorm:"not null;index"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	IsRegistrationFee bool            `json:"is_registration_fee" gorm:"default:false"`
	Recurrence        Recurrence      `json:"recurrence" gorm:"size:20;not null"`

	// Relationships
	Class      Class      `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	SchoolYear SchoolYear `json:"school_year,omitempty" gorm:"foreignKey:SchoolYearID"`
}

// CashRegister is the till or fund that received a payment. Informational only;
// balances never depend on it.
type CashRegister struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null"`
	Code        string `json:"code" gorm:"size:20;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`
	Color       string `json:"color" gorm:"size:7;default:'#3498db'"`
}

// Payment records money received from a student against a fee obligation.
// Only VALIDATED payments count toward any balance. Month is set only for
// payments against MONTHLY obligations.
type Payment struct {
	BaseModel
	StudentID       uint            `json:"student_id" gorm:"not null;index"`
	FeeObligationID uint            `json:"fee_obligation_id" gorm:"not null;index"`
	CashRegisterID  uint            `json:"cash_register_id" gorm:"not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Month           *int            `json:"month"` // 1..12, only for MONTHLY obligations
	PaymentDate     time.Time       `json:"payment_date" gorm:"not null"`
	RecordedDate    time.Time       `json:"recorded_date" gorm:"not null;<-:create"`
	Status          PaymentStatus   `json:"status" gorm:"size:20;not null;default:'PENDING'"`
	Method          PaymentMethod   `json:"method" gorm:"size:20;not null"`
	Reference       string          `json:"reference" gorm:"size:100"`
	Notes           string          `json:"notes" gorm:"type:text"`
	RecordedByID    *uint           `json:"recorded_by_id"`

	// Relationships
	Student       User          `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	FeeObligation FeeObligation `json:"fee_obligation,omitempty" gorm:"foreignKey:FeeObligationID"`
	CashRegister  CashRegister  `json:"cash_register,omitempty" gorm:"foreignKey:CashRegisterID"`
	RecordedBy    *User         `json:"recorded_by,omitempty" gorm:"foreignKey:RecordedByID"`
}

// EnrollmentApplication is a student's request to join a class for a school
// year. AssignedClassID and ConfirmedDate are set exactly when the application
// reaches CONFIRMED.
type EnrollmentApplication struct {
	BaseModel
	StudentID        uint              `json:"student_id" gorm:"not null;uniqueIndex:idx_application_student_year"`
	SchoolYearID     uint              `json:"school_year_id" gorm:"not null;uniqueIndex:idx_application_student_year"`
	RequestedClassID uint              `json:"requested_class_id" gorm:"not null"`
	AssignedClassID  *uint             `json:"assigned_class_id"`
	ApplicationType  ApplicationType   `json:"application_type" gorm:"size:20;not null;default:'PROMOTED'"`
	Status           ApplicationStatus `json:"status" gorm:"size:20;not null;default:'PENDING'"`
	SubmittedDate    time.Time         `json:"submitted_date" gorm:"not null;<-:create"`
	ConfirmedDate    *time.Time        `json:"confirmed_date"`
	Notes            string            `json:"notes" gorm:"type:text"`

	// Relationships
	Student        User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	SchoolYear     SchoolYear `json:"school_year,omitempty" gorm:"foreignKey:SchoolYearID"`
	RequestedClass Class      `json:"requested_class,omitempty" gorm:"foreignKey:RequestedClassID"`
	AssignedClass  *Class     `json:"assigned_class,omitempty" gorm:"foreignKey:AssignedClassID"`
}

// MonthEntry is the derived month-by-month tuition view. Never persisted;
// recomputed from obligations and payments on every read.
type MonthEntry struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Label          string          `json:"label"`
	TemporalStatus TemporalStatus  `json:"temporal_status"`
	IsPaid         bool            `json:"is_paid"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Balance        decimal.Decimal `json:"balance"`
	DisplayStatus  DisplayStatus   `json:"display_status"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID  uint       `json:"user_id" gorm:"not null"`
	Title   string     `json:"title" gorm:"size:255;not null"`
	Message string     `json:"message" gorm:"type:text;not null"`
	Type    string     `json:"type" gorm:"size:50;not null"` // payment, enrollment_confirmed, arrears, or a generic info/warning
	Data    JSON       `json:"data,omitempty" gorm:"type:json"`
	Read    bool       `json:"read" gorm:"default:false"`
	ReadAt  *time.Time `json:"read_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending'"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
