package pos

// Command is a terminal input decoded into a payment-flow action.
// Handlers act on commands only; raw key identifiers never reach the
// workflow.
type Command string

const (
	CommandSelectMethod   Command = "SELECT_METHOD"
	CommandConfirmAmount  Command = "CONFIRM_AMOUNT"
	CommandCancel         Command = "CANCEL"
	CommandNextMethod     Command = "NEXT_METHOD"
	CommandPrevMethod     Command = "PREV_METHOD"
	CommandToggleCurrency Command = "TOGGLE_CURRENCY"
)

// Default key bindings of the terminal. Enter doubles as select and
// confirm depending on workflow state, resolved in ApplyCommand.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyF8        = "F8"
)

// MapKey decodes a raw key identifier for the given workflow state.
// Unmapped keys return false and are ignored by callers.
func MapKey(key string, state WorkflowState) (Command, bool) {
	switch key {
	case KeyEnter:
		if state == PaymentAmountPending {
			return CommandConfirmAmount, true
		}
		return CommandSelectMethod, true
	case KeyEscape:
		return CommandCancel, true
	case KeyArrowUp:
		return CommandPrevMethod, true
	case KeyArrowDown:
		return CommandNextMethod, true
	case KeyF8:
		return CommandToggleCurrency, true
	}
	return "", false
}

// MethodCursor tracks which payment method the method list highlights.
// Navigation wraps at both ends.
type MethodCursor struct {
	index int
}

// Current returns the highlighted method
func (c *MethodCursor) Current() PaymentMethod {
	methods := PaymentMethods()
	if c.index < 0 || c.index >= len(methods) {
		c.index = 0
	}
	return methods[c.index]
}

// Next moves the highlight down the list
func (c *MethodCursor) Next() PaymentMethod {
	c.index = (c.index + 1) % len(PaymentMethods())
	return c.Current()
}

// Prev moves the highlight up the list
func (c *MethodCursor) Prev() PaymentMethod {
	n := len(PaymentMethods())
	c.index = (c.index - 1 + n) % n
	return c.Current()
}

// ApplyCommand executes a decoded command against the workflow and
// cursor. It returns the command handled so callers can report what the
// key did.
func ApplyCommand(w *PaymentWorkflow, cursor *MethodCursor, cmd Command) error {
	switch cmd {
	case CommandNextMethod:
		cursor.Next()
		return nil
	case CommandPrevMethod:
		cursor.Prev()
		return nil
	case CommandSelectMethod:
		return w.SelectMethod(cursor.Current())
	case CommandConfirmAmount:
		return w.Confirm()
	case CommandToggleCurrency:
		return w.ToggleCurrency()
	case CommandCancel:
		return w.Cancel()
	}
	return nil
}
