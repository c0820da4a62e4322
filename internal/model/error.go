package model

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// TransitionError is returned when the requested status change is absent from
// the kind's transition table, or when the row's current status no longer
// matches the expected from-state (somebody else moved it first).
type TransitionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	From    string `json:"from"`
	To      string `json:"to"`
}

func (e *TransitionError) Error() string {
	return e.Message
}

// ConfirmationRequiredError is returned when a comment delete would cascade
// into replies and the caller has not acknowledged the confirmation step.
type ConfirmationRequiredError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ConfirmationRequiredError) Error() string {
	return e.Message
}
