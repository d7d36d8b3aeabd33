package model

type Operation string

const (
	OperationCreate Operation = "create"
	OperationGet    Operation = "get"
	OperationGetAll Operation = "getAll"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationSearch Operation = "search"
)

func (o Operation) String() string { return string(o) }

type (
	// Item is one input or output record of a node run.
	Item map[string]any

	// Option is one entry of a dropdown populated from the remote API.
	Option struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
)

// DeletedItem is the output of a successful delete, whose upstream body is discarded.
func DeletedItem() Item {
	return Item{"success": true}
}

// ErrorItem is the output recorded in place of a failed item in continue-on-fail mode.
func ErrorItem(err error) Item {
	return Item{"error": err.Error()}
}

// Execution is the outcome of one node run.
type Execution struct {
	ID        string    `json:"id"`
	Node      string    `json:"node"`
	Resource  string    `json:"resource"`
	Operation Operation `json:"operation"`
	Items     []Item    `json:"items"`
}
