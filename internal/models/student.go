package models

// Student is an enrolment record; only listed students may register
type Student struct {
	StudentID string
	FirstName string
	LastName  string
	Birthday  string // YYYY-MM-DD
	UserID    *int64 // set once an account is linked
}

// Registration is the body of POST /api/register
type Registration struct {
	Email                string `json:"email" validate:"required,email,max=255"`
	Username             string `json:"username" validate:"required,max=255"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
	StudentID            string `json:"student_id" validate:"required,max=255"`
	LastName             string `json:"last_name" validate:"required,max=255"`
	FirstName            string `json:"first_name" validate:"required,max=255"`
	Birthday             string `json:"birthday" validate:"required,datetime=2006-01-02"`
}
