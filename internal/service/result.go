package service

// Result is the outcome of a workflow call.  Success is false when the
// call was refused by a state gate; Message says why.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      uint64 `json:"id,omitempty"`
}

func ok(msg string) Result { return Result{Success: true, Message: msg} }

func fail(msg string) Result { return Result{Success: false, Message: msg} }
