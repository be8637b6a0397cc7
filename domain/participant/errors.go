package participant

import (
	"errors"
	"fmt"
)

// Banner texts shown to the user.
const (
	MsgFetchAllFailed = "Failed to fetch participants."
	MsgAdded          = "Participant added successfully."
	MsgUpdated        = "Participant updated successfully."
	MsgAddFailed      = "Error adding participant."
	MsgUpdateFailed   = "Error updating participant."
	MsgDeleteFailed   = "Error deleting participant."
	MsgNotFound       = "Participant not found."
	MsgInvalidID      = "Please enter a valid numeric id."
	MsgInvalidGender  = "Please select a valid gender."
)

func msgMissingField(field string) string {
	return fmt.Sprintf("Please fill out the %s field.", field)
}

func msgEditing(id int) string {
	return fmt.Sprintf("Editing participant with ID %d", id)
}

var (
	ErrUnknownField         = errors.New("unknown draft field")
	ErrParticipantNotCached = errors.New("participant is not in the loaded list")
)

// ValidationError names the first draft field that blocked a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
