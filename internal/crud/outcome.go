package crud

import (
	"github.com/gerhard-ee/sqlcrud/internal/database"
)

// OutcomeKind classifies how a write ended when it did not fail outright.
type OutcomeKind int

const (
	// Applied means the engine accepted the write.
	Applied OutcomeKind = iota
	// NotFound means no record has the requested id.
	NotFound
	// Rejected means a stored procedure refused the write and said why.
	Rejected
	// Cancelled means the operator declined confirmation; nothing was sent.
	Cancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case Applied:
		return "applied"
	case NotFound:
		return "not found"
	case Rejected:
		return "rejected"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the result of a write.
type Outcome struct {
	Kind         OutcomeKind
	RowsAffected int64
	ID           int64
	Message      string
}

const statusSuccess = "SUCCESS"

// ProcedureStatus is the status row a write procedure returns:
// ("SUCCESS" or an error code, message, optional new id).
type ProcedureStatus struct {
	OK      bool
	Message string
	NewID   int64
}

// DecodeStatus reads the first row of a write procedure result. Some
// procedures return the new id in place of the message, so a numeric second
// column doubles as the id when there is no third.
func DecodeStatus(rs *database.ResultSet) ProcedureStatus {
	if rs.Empty() {
		return ProcedureStatus{Message: "Error desconocido"}
	}

	row := rs.Rows[0]
	status := ProcedureStatus{
		OK:      row.String(0) == statusSuccess,
		Message: row.String(1),
	}

	if len(row) > 2 {
		if id, err := row.Int64(2); err == nil {
			status.NewID = id
		}
	} else if id, err := row.Int64(1); err == nil {
		status.NewID = id
	}
	return status
}

// Outcome converts the status into a write outcome for record id.
func (s ProcedureStatus) Outcome(id int64) Outcome {
	if !s.OK {
		return Outcome{Kind: Rejected, ID: id, Message: s.Message}
	}
	if s.NewID != 0 {
		id = s.NewID
	}
	return Outcome{Kind: Applied, RowsAffected: 1, ID: id, Message: s.Message}
}
